// Package compression unpacks backend downloads into the backends directory.
package compression

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/security"
)

// MaxBackendSize caps the decompressed size of an installed backend.
const MaxBackendSize = 100 * 1024 * 1024

// ScriptExt is the extension of Lua script backends.
const ScriptExt = ".lua"

var archiveExts = []string{".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar.bz2", ".tbz", ".tbz2", ".zip"}

// ExtractResult contains the result of an extraction operation.
type ExtractResult struct {
	// Path to the installed backend file
	Path string
	// Whether the input was an archive (true) or a direct file (false)
	WasArchive bool
}

// Extract detects the format of data from filename and writes the backend it
// holds into destDir. It handles:
//   - tar archives (.tar.gz, .tar.xz, .tar.bz2)
//   - zip archives (.zip)
//   - standalone compressed files (.gz, .xz, .bz2)
//   - raw files (.lua scripts, executables)
//
// Inside an archive the file named after the archive wins, then Lua scripts,
// then executables. A lone file is taken as is.
func Extract(data []byte, filename, destDir string, logger hclog.Logger) (*ExtractResult, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid backend file name")
	}

	archiveName := GetArchiveBaseName(filename)
	r := newReader(data)

	switch {
	case hasSuffix(filename, ".tar.gz", ".tgz"):
		return extractFromTar(r.gzip, archiveName, destDir, logger)
	case hasSuffix(filename, ".tar.xz", ".txz"):
		return extractFromTar(r.xz, archiveName, destDir, logger)
	case hasSuffix(filename, ".tar.bz2", ".tbz", ".tbz2"):
		return extractFromTar(r.bzip2, archiveName, destDir, logger)
	case hasSuffix(filename, ".zip"):
		return extractFromZip(data, archiveName, destDir, logger)
	}

	if before, ok := strings.CutSuffix(filename, ".gz"); ok {
		return decompress(r.gzip, before, destDir, logger)
	}
	if before, ok := strings.CutSuffix(filename, ".xz"); ok {
		return decompress(r.xz, before, destDir, logger)
	}
	if before, ok := strings.CutSuffix(filename, ".bz2"); ok {
		return decompress(r.bzip2, before, destDir, logger)
	}

	destPath, err := destination(filename, destDir)
	if err != nil {
		return nil, err
	}

	// #nosec G306 -- executable backends need exec permissions
	if err := os.WriteFile(destPath, data, fileMode(filename)); err != nil {
		return nil, fmt.Errorf("failed to write backend file: %w", err)
	}
	if err := os.Chmod(destPath, fileMode(filename)); err != nil {
		return nil, fmt.Errorf("failed to set backend permissions: %w", err)
	}

	logger.Debug("saved backend", "path", destPath)

	return &ExtractResult{Path: destPath}, nil
}

// GetArchiveBaseName extracts the base name from an archive filename.
// For example: "cwal-backend-octree_0.1.0_Linux_x86_64.tar.gz" -> "cwal-backend-octree".
func GetArchiveBaseName(filename string) string {
	base := filename
	for _, ext := range archiveExts {
		if before, ok := strings.CutSuffix(base, ext); ok {
			base = before
			break
		}
	}

	if idx := strings.Index(base, "_"); idx > 0 {
		return base[:idx]
	}

	return base
}

// IsArchive reports whether filename names a supported archive.
func IsArchive(filename string) bool {
	return hasSuffix(filename, archiveExts...)
}

func hasSuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// fileMode is 0644 for scripts and 0755 for everything else.
func fileMode(name string) os.FileMode {
	if strings.EqualFold(filepath.Ext(name), ScriptExt) {
		return 0o644
	}
	return 0o755
}

// destination joins the base of name onto destDir and checks it stays there.
func destination(name, destDir string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid backend file name %q", name)
	}

	destPath := filepath.Join(destDir, base)
	if err := security.ValidateBackendPath(destPath, destDir); err != nil {
		return "", err
	}
	return destPath, nil
}

// writeFile copies at most MaxBackendSize bytes of r to a new backend file.
func writeFile(r io.Reader, name, destDir string) (string, error) {
	destPath, err := destination(name, destDir)
	if err != nil {
		return "", err
	}

	out, err := os.Create(destPath) // #nosec G304 - backend destination path controlled by application
	if err != nil {
		return "", fmt.Errorf("failed to create backend file: %w", err)
	}

	_, copyErr := io.Copy(out, security.NewLimitedReader(r, MaxBackendSize))
	closeErr := out.Close()

	if copyErr != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("failed to extract backend: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to close backend file: %w", closeErr)
	}

	if err := os.Chmod(destPath, fileMode(name)); err != nil { // #nosec G302 - executable backends need execute permission
		return "", fmt.Errorf("failed to set backend permissions: %w", err)
	}

	return destPath, nil
}
