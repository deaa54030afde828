// Package script runs Lua backends from the custom backends directory.
//
// A script defines a global function Main(image_path) that returns an array
// of colours, each either {r, g, b} or {r = .., g = .., b = ..}:
//
//	function Main(image_path)
//	  return { {12, 14, 20}, {200, 80, 60}, ... }
//	end
//
// Only the first eight colours are used.
package script

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
)

// Extension is the file extension of script backends.
const Extension = ".lua"

// maxEntries is the largest table Main may return.
const maxEntries = 16

// Backend is a Lua script backend. Each attempt gets a fresh interpreter.
type Backend struct {
	name string
	path string

	state *lua.LState
}

// New creates a backend for the script at path, named after the file.
// The extension is matched case-insensitively, so Foo.LUA is named Foo.
func New(path string) *Backend {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); strings.EqualFold(ext, Extension) {
		name = name[:len(name)-len(ext)]
	}
	return &Backend{name: name, path: path}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return b.name }

// Description implements backend.Describer.
func (b *Backend) Description() string {
	return "Lua script (" + b.path + ")"
}

// Path returns the script path.
func (b *Backend) Path() string { return b.path }

// Init opens an interpreter and loads the script.
func (b *Backend) Init(ctx context.Context) error {
	if b.state != nil {
		return nil
	}

	L := lua.NewState()
	L.SetContext(ctx)

	if err := L.DoFile(b.path); err != nil {
		L.Close()
		return fmt.Errorf("failed to load script %s: %w", b.path, err)
	}

	b.state = L
	return nil
}

// Terminate closes the interpreter.
func (b *Backend) Terminate() error {
	if b.state != nil {
		b.state.Close()
		b.state = nil
	}
	return nil
}

// Generate calls Main(image_path) and converts its result.
func (b *Backend) Generate(_ context.Context, src backend.Source) ([]colour.Color, error) {
	L := b.state
	if L == nil {
		return nil, fmt.Errorf("script %s not initialised", b.name)
	}
	if src.Path == "" {
		return nil, fmt.Errorf("script backends need an image path")
	}

	fn := L.GetGlobal("Main")
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("script %s does not define a Main function", b.name)
	}

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(src.Path)); err != nil {
		return nil, fmt.Errorf("script %s failed: %w", b.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	return toColors(ret)
}

func toColors(v lua.LValue) ([]colour.Color, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("Main returned %s, want a table", v.Type())
	}

	n := tbl.Len()
	if n == 0 || n > maxEntries {
		return nil, fmt.Errorf("Main returned %d colours, want 1 to %d", n, maxEntries)
	}

	colors := make([]colour.Color, 0, min(n, backend.MaxColors))
	for i := 1; i <= n && len(colors) < backend.MaxColors; i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("colour %d is not a table", i)
		}

		var ch [3]uint8
		for j, key := range []string{"r", "g", "b"} {
			raw := entry.RawGetInt(j + 1)
			if raw == lua.LNil {
				raw = entry.RawGetString(key)
			}
			num, ok := raw.(lua.LNumber)
			if !ok || num < 0 || num > 255 {
				return nil, fmt.Errorf("colour %d has invalid %s channel %v", i, key, raw)
			}
			ch[j] = uint8(num)
		}
		colors = append(colors, colour.Color{R: ch[0], G: ch[1], B: ch[2]})
	}

	return colors, nil
}
