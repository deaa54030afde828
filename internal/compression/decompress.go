package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/ulikunitz/xz"
)

// opener returns a fresh decompressing reader over the same input.
type opener func() (io.Reader, error)

type reader struct {
	data []byte
}

func newReader(data []byte) reader {
	return reader{data: data}
}

func (r reader) gzip() (io.Reader, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return gzr, nil
}

func (r reader) xz() (io.Reader, error) {
	xzr, err := xz.NewReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	return xzr, nil
}

func (r reader) bzip2() (io.Reader, error) {
	return bzip2.NewReader(bytes.NewReader(r.data)), nil
}

// decompress writes a single compressed file to destDir as filename.
func decompress(open opener, filename, destDir string, logger hclog.Logger) (*ExtractResult, error) {
	src, err := open()
	if err != nil {
		return nil, err
	}

	destPath, err := writeFile(src, filename, destDir)
	if err != nil {
		return nil, err
	}

	logger.Debug("decompressed backend", "path", destPath)

	return &ExtractResult{Path: destPath}, nil
}
