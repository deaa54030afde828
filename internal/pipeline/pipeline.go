// Package pipeline turns an image or a theme into a palette: resolve the
// backend, consult the cache, quantize with fallback, derive and store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/cache"
	"github.com/jmylchreest/cwal/internal/colour"
	imgutil "github.com/jmylchreest/cwal/internal/image"
	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/palette"
	"github.com/jmylchreest/cwal/internal/theme"
)

// DownloadDir is the cache subdirectory for remote wallpapers.
const DownloadDir = "wallpapers"

// ErrNoSource is returned when a request names neither an image nor a theme.
var ErrNoSource = errors.New("no image or theme given")

// Request describes one palette generation.
type Request struct {
	// ImagePath is a file, a directory (a random image is picked) or an http(s) URL.
	ImagePath string

	// Theme is a theme name or random selector. It takes precedence over ImagePath.
	Theme string

	// Backend is the preferred backend name. Empty selects the default.
	Backend string

	Mode       palette.Mode
	Cols16     palette.Cols16
	Saturation float64
	Contrast   float64
	Alpha      float64
}

// Result is a generated palette and where it came from.
type Result struct {
	Palette *palette.Palette

	// Backend is the resolved backend name; empty for themes.
	Backend string

	// Cached reports a cache hit.
	Cached bool

	// Theme is set when the palette came from a theme.
	Theme *theme.Theme
}

// Generator runs requests against a registry, a cache and a theme loader.
type Generator struct {
	registry     *backend.Registry
	orchestrator *backend.Orchestrator
	store        *cache.Store
	themes       *theme.Loader
	cacheDir     string
	logger       hclog.Logger
}

// New creates a generator. cacheDir holds the palette cache and downloads.
func New(registry *backend.Registry, themes *theme.Loader, cacheDir string, l hclog.Logger) *Generator {
	l = logger.OrNull(l)
	return &Generator{
		registry:     registry,
		orchestrator: backend.NewOrchestrator(registry, l.Named("backend")),
		store:        cache.New(cacheDir, l.Named("cache")),
		themes:       themes,
		cacheDir:     cacheDir,
		logger:       l,
	}
}

// Generate produces the palette for req.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	p := palette.New()
	if req.Mode != "" {
		p.Mode = req.Mode
	}
	if req.Cols16 != "" {
		p.Cols16 = req.Cols16
	}
	p.Saturation = req.Saturation
	p.Contrast = req.Contrast
	p.Alpha = req.Alpha

	if req.Theme != "" {
		return g.fromTheme(req.Theme, p)
	}
	if req.ImagePath == "" {
		return nil, ErrNoSource
	}

	return g.fromImage(ctx, req, p)
}

// fromTheme loads colours as stored. Themes skip derivation and the cache.
func (g *Generator) fromTheme(name string, p *palette.Palette) (*Result, error) {
	if g.themes == nil {
		return nil, fmt.Errorf("%w: no theme directories configured", theme.ErrNotFound)
	}

	t, err := g.themes.Load(name)
	if err != nil {
		return nil, err
	}

	p.Colors = t.Colors
	p.Mode = t.Mode
	p.Cols16 = palette.Cols16None
	p.Wallpaper = ""

	return &Result{Palette: p, Theme: t}, nil
}

func (g *Generator) fromImage(ctx context.Context, req Request, p *palette.Palette) (*Result, error) {
	path, err := g.localImage(ctx, req.ImagePath)
	if err != nil {
		return nil, err
	}
	p.Wallpaper = path

	preferred := g.registry.Resolve(req.Backend)
	if preferred == nil {
		return nil, fmt.Errorf("%w: no default backend registered", backend.ErrAllBackendsExhausted)
	}
	if req.Backend != "" && preferred.Name() != req.Backend {
		g.logger.Warn("unknown backend, using default", "requested", req.Backend, "backend", preferred.Name())
	}
	name := preferred.Name()

	hit, err := g.store.Load(p, name)
	if err != nil {
		g.logger.Warn("ignoring unreadable cache entry", "error", err)
	}
	if hit {
		g.logger.Info("loaded palette from cache", "wallpaper", path, "backend", name)
		return &Result{Palette: p, Backend: name, Cached: true}, nil
	}

	img, err := imgutil.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	colors, err := g.orchestrator.Process(ctx, preferred, backend.Source{Path: path, Image: img})
	if err != nil {
		return nil, fmt.Errorf("image processing failed: %w", err)
	}
	if len(colors) < backend.MinColors {
		return nil, fmt.Errorf("%w: got %d, need %d", backend.ErrTooFewColors, len(colors), backend.MinColors)
	}

	var base [backend.MaxColors]colour.Color
	copy(base[:], colors)

	p.Colors = palette.Derive(base, imgutil.AverageColour(img), p.Options())

	if err := g.store.Save(p, name); err != nil {
		g.logger.Warn("failed to cache palette", "error", err)
	}

	return &Result{Palette: p, Backend: name}, nil
}

// localImage resolves directories to a random image and downloads URLs.
func (g *Generator) localImage(ctx context.Context, path string) (string, error) {
	if imgutil.IsURL(path) {
		local, err := imgutil.Download(ctx, path, filepath.Join(g.cacheDir, DownloadDir))
		if err != nil {
			return "", fmt.Errorf("failed to download image: %w", err)
		}
		g.logger.Debug("downloaded wallpaper", "url", path, "path", local)
		return local, nil
	}

	resolved, err := imgutil.ResolveImagePath(path)
	if err != nil {
		return "", err
	}
	if resolved != path {
		g.logger.Info("selected random image", "path", resolved)
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return resolved, nil
	}
	return abs, nil
}
