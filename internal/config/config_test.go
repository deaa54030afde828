package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/palette"
)

// TestLoadMissing tests defaults and directory creation.
func TestLoadMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cwal")

	var buf bytes.Buffer
	cfg, err := Load(dir, hclog.New(&hclog.LoggerOptions{Output: &buf}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Mode != palette.ModeDark || cfg.Cols16 != palette.Cols16Darken || cfg.Alpha != 1 || cfg.Backend != DefaultBackend {
		t.Errorf("defaults = %+v", cfg)
	}
	if !strings.Contains(buf.String(), "config file not found") {
		t.Errorf("missing file not logged: %q", buf.String())
	}

	for _, sub := range []string{"templates", "themes/dark", "themes/light", "backends"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("%s not created", sub)
		}
	}
}

// TestSaveLoad tests a round trip through the file.
func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.OutDir = filepath.Join(dir, "out")
	cfg.CurrentWallpaper = "/walls/a b.png"
	cfg.Backend = "kmeans"
	cfg.Mode = palette.ModeLight
	cfg.Cols16 = palette.Cols16Lighten
	cfg.Alpha = 0.85

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[general]", "[theme]", "backend", "kmeans", "cols16_mode"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("saved file missing %q:\n%s", want, data)
		}
	}

	got, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got.Dir = cfg.Dir
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

// TestLoadInvalidValues tests that bad values keep the defaults.
func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	content := `[general]
out_dir =
backend = mediancut

[theme]
mode = sepia
cols16_mode = brighten
alpha = 7
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	cfg, err := Load(dir, hclog.New(&hclog.LoggerOptions{Output: &buf}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != "mediancut" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.OutDir != DefaultOutDir() {
		t.Errorf("empty out_dir should keep the default, got %q", cfg.OutDir)
	}
	if cfg.Mode != palette.ModeDark || cfg.Cols16 != palette.Cols16Darken || cfg.Alpha != 1 {
		t.Errorf("invalid values replaced defaults: %+v", cfg)
	}
	for _, want := range []string{"invalid mode", "invalid cols16_mode", "invalid alpha"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q", want)
		}
	}
}

// TestDefaultDir tests the environment override.
func TestDefaultDir(t *testing.T) {
	t.Setenv(DirEnv, "/tmp/cwal-test")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/cwal-test" {
		t.Errorf("DefaultDir() = %q", dir)
	}
}

// TestExpandHome tests tilde expansion.
func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := map[string]string{
		"~":        home,
		"~/x/y":    filepath.Join(home, "x", "y"),
		"/abs":     "/abs",
		"~other/x": "~other/x",
		"relative": "relative",
	}
	for in, want := range tests {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
