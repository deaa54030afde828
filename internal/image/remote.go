package image

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/cwal/internal/util/http"
)

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// cachedFilename is a stable file name for url: a hash plus the URL's extension.
func cachedFilename(url string) string {
	hash := sha256.Sum256([]byte(url))

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}

	return fmt.Sprintf("%x%s", hash[:16], strings.ToLower(ext))
}

// Download fetches a remote wallpaper into dir and returns the local path.
// A previously downloaded copy is reused, which keeps the palette cache key stable.
func Download(ctx context.Context, url, dir string) (string, error) {
	if !IsURL(url) {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	path := filepath.Join(dir, cachedFilename(url))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write downloaded image: %w", err)
	}

	return path, nil
}
