package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestInstallLocal tests installing a local script backend and finding it on
// the next scan.
func TestInstallLocal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "octree.lua")
	if err := os.WriteFile(src, []byte("function generate(path, n) return {} end"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "backends")

	res, err := Install(context.Background(), src, dir, nil)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.Path != filepath.Join(dir, "octree.lua") {
		t.Errorf("Install() path = %q", res.Path)
	}

	m := NewBuilder().WithBuiltins().WithBackendsDir(dir).Build()
	if _, ok := m.Registry().Get("octree"); !ok {
		t.Error("installed backend not registered")
	}
	if m.Kind("octree") != KindScript {
		t.Errorf("Kind() = %q, want %q", m.Kind("octree"), KindScript)
	}
}

// TestInstallErrors tests rejected sources.
func TestInstallErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		source string
	}{
		{"missing file", filepath.Join(dir, "nope.lua")},
		{"directory", dir},
		{"plain http", "http://example.com/octree.lua"},
		{"private host", "https://192.168.0.2/octree.lua"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Install(context.Background(), tt.source, filepath.Join(dir, "out"), nil); err == nil {
				t.Errorf("Install(%q) succeeded", tt.source)
			}
		})
	}
}
