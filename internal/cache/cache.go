// Package cache stores derived palettes keyed by the parameters that produced them.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/palette"
	"github.com/jmylchreest/cwal/internal/scheme"
)

// SchemesDir is the cache subdirectory holding palette records.
const SchemesDir = "schemes"

// Store saves and loads palette records under a cache directory.
type Store struct {
	dir    string
	logger hclog.Logger
}

// New returns a store rooted at cacheDir.
func New(cacheDir string, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{dir: cacheDir, logger: logger}
}

// Path returns the record path for a palette and backend. Every parameter that
// affects derivation is part of the name.
func Path(p *palette.Palette, cacheDir, backend string) string {
	name := fmt.Sprintf("%s_%s_%s_s%.2f_c%.2f_a%.2f_%s%s",
		filepath.Base(p.Wallpaper), p.Mode, p.Cols16,
		p.Saturation, p.Contrast, p.Alpha, backend, scheme.Extension)
	return filepath.Join(cacheDir, SchemesDir, name)
}

// Path returns the record path for a palette and backend.
func (s *Store) Path(p *palette.Palette, backend string) string {
	return Path(p, s.dir, backend)
}

// Save writes the palette, replacing any existing record.
func (s *Store) Save(p *palette.Palette, backend string) error {
	path := s.Path(p, backend)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- path is built from the cache dir
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}

	if err := scheme.Write(f, [][2]string{{"wallpaper", p.Wallpaper}}, p.Colors); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	s.logger.Debug("saved palette to cache", "path", path)
	return nil
}

// Load fills p.Colors from a cached record. It returns false on a miss: no
// record, or a record stored for a different image with the same basename.
func (s *Store) Load(p *palette.Palette, backend string) (bool, error) {
	path := s.Path(p, backend)

	f, err := os.Open(path) // #nosec G304 -- path is built from the cache dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cache miss", "path", path)
			return false, nil
		}
		return false, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	rec, err := scheme.Read(f, s.logger.With("path", path))
	if err != nil {
		return false, err
	}

	if rec.Values["wallpaper"] != p.Wallpaper {
		s.logger.Debug("cache entry belongs to another image", "path", path, "stored", rec.Values["wallpaper"])
		return false, nil
	}

	for idx, c := range rec.Colors {
		p.Colors[idx] = c
	}

	s.logger.Debug("cache hit", "path", path)
	return true, nil
}

// Save writes p to the cache under cacheDir.
func Save(p *palette.Palette, cacheDir, backend string) error {
	return New(cacheDir, nil).Save(p, backend)
}

// Load reads p from the cache under cacheDir.
func Load(p *palette.Palette, cacheDir, backend string) (bool, error) {
	return New(cacheDir, nil).Load(p, backend)
}
