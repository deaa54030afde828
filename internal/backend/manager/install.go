package manager

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/compression"
	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/security"
	httputil "github.com/jmylchreest/cwal/internal/util/http"
)

// Install copies a local file, or downloads an HTTPS URL, into dir. Archives
// and compressed files are unpacked so dir ends up holding a single backend.
func Install(ctx context.Context, source, dir string, l hclog.Logger) (*compression.ExtractResult, error) {
	l = logger.OrNull(l)

	data, filename, err := readSource(ctx, source)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - backends directory must be readable
		return nil, fmt.Errorf("failed to create backends directory: %w", err)
	}

	res, err := compression.Extract(data, filename, dir, l)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", source, err)
	}

	l.Info("installed backend", "path", res.Path, "archive", res.WasArchive)
	return res, nil
}

func readSource(ctx context.Context, source string) ([]byte, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if err := security.ValidateHTTPURL(source); err != nil {
			return nil, "", err
		}
		u, err := url.Parse(source)
		if err != nil {
			return nil, "", fmt.Errorf("invalid URL: %w", err)
		}
		filename := path.Base(u.Path)
		if filename == "/" || filename == "." {
			return nil, "", fmt.Errorf("URL %s does not name a file", source)
		}

		// #nosec G107 -- URL is validated via security.ValidateHTTPURL above.
		data, err := httputil.Fetch(ctx, source, httputil.FetchOptions{MaxBytes: compression.MaxBackendSize})
		if err != nil {
			return nil, "", fmt.Errorf("failed to download %s: %w", source, err)
		}
		return data, filename, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, "", err
	}
	if !info.Mode().IsRegular() {
		return nil, "", fmt.Errorf("%s is not a regular file", source)
	}
	if info.Size() > compression.MaxBackendSize {
		return nil, "", fmt.Errorf("%s exceeds %d bytes", source, compression.MaxBackendSize)
	}

	data, err := os.ReadFile(source) // #nosec G304 - user supplied backend file
	if err != nil {
		return nil, "", err
	}
	return data, info.Name(), nil
}
