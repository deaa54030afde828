package compression

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/security"
)

const (
	priorityNamed      = 90
	priorityScript     = 80
	priorityExecutable = 70
	priorityOther      = 10
)

// priority ranks an archive member as the backend to install.
func priority(name, archiveName string, mode os.FileMode) int {
	base := path.Base(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	switch {
	case base == archiveName || stem == archiveName:
		return priorityNamed
	case strings.EqualFold(path.Ext(base), ScriptExt):
		return priorityScript
	case mode&0o111 != 0:
		return priorityExecutable
	default:
		return priorityOther
	}
}

// choose picks the member to install from the ranked candidates.
func choose(best string, bestPriority int, found []string, archiveName string) (string, error) {
	switch {
	case len(found) == 0:
		return "", fmt.Errorf("no files found in archive")
	case bestPriority > priorityOther:
		return best, nil
	case len(found) == 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("multiple files in archive but none match expected backend name '%s' (found: %v)", archiveName, found)
	}
}

// extractFromTar installs a backend from a compressed tar archive.
func extractFromTar(open opener, archiveName, destDir string, logger hclog.Logger) (*ExtractResult, error) {
	src, err := open()
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(src)

	var (
		best         string
		bestPriority int
		found        []string
	)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := security.ValidateFilePath(header.Name, destDir); err != nil {
			return nil, fmt.Errorf("unsafe archive entry %q: %w", header.Name, err)
		}

		found = append(found, header.Name)
		p := priority(header.Name, archiveName, header.FileInfo().Mode())
		if p > bestPriority {
			best, bestPriority = header.Name, p
			if p >= priorityNamed {
				break
			}
		}
	}

	target, err := choose(best, bestPriority, found, archiveName)
	if err != nil {
		return nil, err
	}

	// Reopen the stream to extract the chosen member
	src, err = open()
	if err != nil {
		return nil, err
	}
	tr = tar.NewReader(src)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file not found in archive")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}
		if header.Name != target {
			continue
		}

		destPath, err := writeFile(tr, target, destDir)
		if err != nil {
			return nil, err
		}

		logger.Debug("extracted backend", "path", destPath, "member", target)

		return &ExtractResult{Path: destPath, WasArchive: true}, nil
	}
}

// extractFromZip installs a backend from a zip archive.
func extractFromZip(data []byte, archiveName, destDir string, logger hclog.Logger) (*ExtractResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zip reader: %w", err)
	}

	var (
		best         string
		bestPriority int
		found        []string
		files        = make(map[string]*zip.File)
	)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := security.ValidateFilePath(f.Name, destDir); err != nil {
			return nil, fmt.Errorf("unsafe archive entry %q: %w", f.Name, err)
		}

		found = append(found, f.Name)
		files[f.Name] = f
		p := priority(f.Name, archiveName, f.FileInfo().Mode())
		if p > bestPriority {
			best, bestPriority = f.Name, p
		}
	}

	target, err := choose(best, bestPriority, found, archiveName)
	if err != nil {
		return nil, err
	}

	rc, err := files[target].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file in archive: %w", err)
	}
	defer rc.Close()

	destPath, err := writeFile(rc, target, destDir)
	if err != nil {
		return nil, err
	}

	logger.Debug("extracted backend", "path", destPath, "member", target)

	return &ExtractResult{Path: destPath, WasArchive: true}, nil
}
