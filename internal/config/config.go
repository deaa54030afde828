// Package config loads and saves ~/.config/cwal/cwal.ini and prepares the
// configuration directory layout.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/ini.v1"

	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/palette"
)

const (
	// DirEnv overrides the configuration directory.
	DirEnv = "CWAL_CONFIG_DIR"

	// FileName is the configuration file inside the configuration directory.
	FileName = "cwal.ini"

	// DefaultBackend is used when neither the file nor the flags name one.
	DefaultBackend = "cwal"
)

// Subdirectories created on first load.
const (
	TemplatesDir = "templates"
	ThemesDir    = "themes"
	BackendsDir  = "backends"
)

// Config is the persisted state between runs.
type Config struct {
	// Dir is the configuration directory; not persisted.
	Dir string

	OutDir           string
	CurrentWallpaper string
	Backend          string

	Mode   palette.Mode
	Cols16 palette.Cols16
	Alpha  float64
}

// DefaultDir returns $CWAL_CONFIG_DIR, or ~/.config/cwal.
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return ExpandHome(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cwal"), nil
}

// DefaultOutDir returns ~/.cache/cwal.
func DefaultOutDir() string {
	return ExpandHome("~/.cache/cwal")
}

// Default returns the built-in configuration for dir.
func Default(dir string) *Config {
	return &Config{
		Dir:     dir,
		OutDir:  DefaultOutDir(),
		Backend: DefaultBackend,
		Mode:    palette.ModeDark,
		Cols16:  palette.Cols16Darken,
		Alpha:   1.0,
	}
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, FileName)
}

// BackendsPath returns the custom backends directory.
func (c *Config) BackendsPath() string {
	return filepath.Join(c.Dir, BackendsDir)
}

// TemplatesPath returns the user templates directory.
func (c *Config) TemplatesPath() string {
	return filepath.Join(c.Dir, TemplatesDir)
}

// ThemesPath returns the user themes directory.
func (c *Config) ThemesPath() string {
	return filepath.Join(c.Dir, ThemesDir)
}

// Load reads the configuration in dir, creating the directory layout first.
// A missing file gives the defaults; invalid values are logged and the
// default kept.
func Load(dir string, l hclog.Logger) (*Config, error) {
	l = logger.OrNull(l)
	cfg := Default(dir)

	if err := EnsureLayout(dir); err != nil {
		return nil, err
	}

	file, err := ini.Load(cfg.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Warn("config file not found, using default values", "path", cfg.Path())
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", cfg.Path(), err)
	}

	general := file.Section("general")
	if v := general.Key("out_dir").String(); v != "" {
		cfg.OutDir = ExpandHome(v)
	}
	if v := general.Key("current_wallpaper").String(); v != "" {
		cfg.CurrentWallpaper = ExpandHome(v)
	}
	if v := general.Key("backend").String(); v != "" {
		cfg.Backend = v
	}

	theme := file.Section("theme")
	if v := theme.Key("mode").String(); v != "" {
		if mode, err := palette.ParseMode(v); err == nil {
			cfg.Mode = mode
		} else {
			l.Warn("invalid mode in config, using default", "value", v)
		}
	}
	if v := theme.Key("cols16_mode").String(); v != "" {
		if c16, err := palette.ParseCols16(v); err == nil {
			cfg.Cols16 = c16
		} else {
			l.Warn("invalid cols16_mode in config, using default", "value", v)
		}
	}
	if v := theme.Key("alpha").String(); v != "" {
		if a, err := strconv.ParseFloat(v, 64); err == nil && a >= 0 && a <= 1 {
			cfg.Alpha = a
		} else {
			l.Warn("invalid alpha in config, using default", "value", v)
		}
	}

	l.Debug("loaded config", "path", cfg.Path())
	return cfg, nil
}

// EnsureLayout creates dir and its templates, themes and backends subdirectories.
func EnsureLayout(dir string) error {
	for _, sub := range []string{
		TemplatesDir,
		filepath.Join(ThemesDir, "dark"),
		filepath.Join(ThemesDir, "light"),
		BackendsDir,
	} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return nil
}

// Save writes the configuration file.
func (c *Config) Save() error {
	file := ini.Empty()

	general := file.Section("general")
	general.Key("out_dir").SetValue(c.OutDir)
	general.Key("current_wallpaper").SetValue(c.CurrentWallpaper)
	general.Key("backend").SetValue(c.Backend)

	theme := file.Section("theme")
	theme.Key("mode").SetValue(string(c.Mode))
	theme.Key("cols16_mode").SetValue(string(c.Cols16))
	theme.Key("alpha").SetValue(strconv.FormatFloat(c.Alpha, 'f', 2, 64))

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := file.SaveTo(c.Path()); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.Path(), err)
	}
	return nil
}
