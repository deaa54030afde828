// Package scheme reads and writes the key=value colour scheme files shared by
// the cache and the theme directories.
//
// A scheme file is UTF-8 text with one key=value pair per line. Colour keys are
// color0 through color15 with an "r,g,b" value. Other keys (wallpaper, mode) are
// kept as plain strings; unknown keys are ignored by callers.
package scheme

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/colour"
)

// Extension is the file extension for scheme files.
const Extension = ".cwal"

// Record is a parsed scheme file.
type Record struct {
	// Values holds every non-colour key.
	Values map[string]string
	// Colors holds the colour keys that parsed, by index.
	Colors map[int]colour.Color
}

// Read parses a scheme from r. Malformed lines are logged and skipped.
func Read(r io.Reader, logger hclog.Logger) (*Record, error) {
	rec := &Record{
		Values: make(map[string]string),
		Colors: make(map[int]colour.Color),
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logWarn(logger, "skipping malformed scheme line", "line", lineNo)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		idx, isColour := colourIndex(key)
		if !isColour {
			rec.Values[key] = value
			continue
		}

		c, err := colour.ParseTriple(value)
		if err != nil {
			logWarn(logger, "skipping invalid colour", "key", key, "line", lineNo, "error", err)
			continue
		}
		rec.Colors[idx] = c
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scheme: %w", err)
	}

	return rec, nil
}

// Write writes the given header pairs, in order, followed by color0..color15.
func Write(w io.Writer, header [][2]string, colors [16]colour.Color) error {
	bw := bufio.NewWriter(w)
	for _, kv := range header {
		if _, err := fmt.Fprintf(bw, "%s=%s\n", kv[0], kv[1]); err != nil {
			return err
		}
	}
	for i, c := range colors {
		if _, err := fmt.Fprintf(bw, "color%d=%s\n", i, c); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// colourIndex reports whether key is colorN with N in [0,15].
func colourIndex(key string) (int, bool) {
	num, ok := strings.CutPrefix(key, "color")
	if !ok || num == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 || idx > 15 {
		return 0, false
	}
	return idx, true
}

func logWarn(logger hclog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
