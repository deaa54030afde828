// Package theme loads predefined colour schemes from the theme directories.
//
// Each theme directory holds dark/ and light/ subdirectories of <name>.cwal
// files. Directories are searched in order and dark before light.
package theme

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/palette"
	"github.com/jmylchreest/cwal/internal/scheme"
)

// SystemDir is the system-wide theme directory.
const SystemDir = "/usr/local/share/cwal/themes"

// ErrNotFound is returned when no theme matches.
var ErrNotFound = errors.New("theme not found")

// Kind is the subdirectory a theme lives in.
type Kind string

const (
	KindDark  Kind = "dark"
	KindLight Kind = "light"
)

// Random theme selectors accepted by --theme.
const (
	RandomDark  = "random_dark"
	RandomLight = "random_light"
	RandomAll   = "random_all"
)

// IsRandom reports whether name is a random selector.
func IsRandom(name string) bool {
	return name == RandomDark || name == RandomLight || name == RandomAll
}

// Theme is a loaded scheme file.
type Theme struct {
	Name string
	Kind Kind
	Path string

	// Mode is the file's mode= value, or the kind when absent.
	Mode   palette.Mode
	Colors [palette.Size]colour.Color
}

// Group lists theme names found in one directory and kind.
type Group struct {
	Dir   string
	Kind  Kind
	Names []string
}

// DefaultDirs returns the search path: the user config dir, the user data dir,
// then SystemDir.
func DefaultDirs(configDir string) []string {
	dirs := []string{filepath.Join(configDir, "themes")}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "cwal", "themes"))
	}
	return append(dirs, SystemDir)
}

// Loader finds themes across directories.
type Loader struct {
	dirs   []string
	logger hclog.Logger
}

// NewLoader creates a loader searching dirs in order.
func NewLoader(dirs []string, l hclog.Logger) *Loader {
	return &Loader{dirs: dirs, logger: logger.OrNull(l)}
}

// Dirs returns the search path.
func (l *Loader) Dirs() []string {
	return l.dirs
}

// Load finds a theme by name. A random selector picks a random theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if IsRandom(name) {
		return l.LoadRandom(name)
	}

	name = strings.TrimSuffix(name, scheme.Extension)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid theme name %q", name)
	}

	for _, dir := range l.dirs {
		for _, kind := range []Kind{KindDark, KindLight} {
			path := filepath.Join(dir, string(kind), name+scheme.Extension)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			return l.loadFile(path, name, kind)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LoadRandom picks a theme uniformly from the dark, light or all themes.
func (l *Loader) LoadRandom(selector string) (*Theme, error) {
	var kinds []Kind
	switch selector {
	case RandomDark:
		kinds = []Kind{KindDark}
	case RandomLight:
		kinds = []Kind{KindLight}
	case RandomAll:
		kinds = []Kind{KindDark, KindLight}
	default:
		return nil, fmt.Errorf("invalid random theme selector %q", selector)
	}

	type candidate struct {
		path string
		name string
		kind Kind
	}
	var candidates []candidate
	for _, g := range l.List() {
		if !slices.Contains(kinds, g.Kind) {
			continue
		}
		for _, n := range g.Names {
			candidates = append(candidates, candidate{
				path: filepath.Join(g.Dir, string(g.Kind), n+scheme.Extension),
				name: n,
				kind: g.Kind,
			})
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no themes available for %s", ErrNotFound, selector)
	}

	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
	if err != nil {
		return nil, fmt.Errorf("failed to generate random number: %w", err)
	}
	c := candidates[idx.Int64()]

	return l.loadFile(c.path, c.name, c.kind)
}

// List returns the themes in every directory, grouped by directory and kind.
// Empty groups are omitted.
func (l *Loader) List() []Group {
	var groups []Group
	for _, dir := range l.dirs {
		for _, kind := range []Kind{KindDark, KindLight} {
			entries, err := os.ReadDir(filepath.Join(dir, string(kind)))
			if err != nil {
				continue
			}

			var names []string
			for _, e := range entries {
				if !e.Type().IsRegular() || filepath.Ext(e.Name()) != scheme.Extension {
					continue
				}
				names = append(names, strings.TrimSuffix(e.Name(), scheme.Extension))
			}
			if len(names) > 0 {
				groups = append(groups, Group{Dir: dir, Kind: kind, Names: names})
			}
		}
	}
	return groups
}

func (l *Loader) loadFile(path, name string, kind Kind) (*Theme, error) {
	f, err := os.Open(path) // #nosec G304 -- path is built from the theme search path
	if err != nil {
		return nil, fmt.Errorf("failed to open theme: %w", err)
	}
	defer f.Close()

	rec, err := scheme.Read(f, l.logger.With("theme", name))
	if err != nil {
		return nil, err
	}

	t := &Theme{Name: name, Kind: kind, Path: path, Mode: palette.Mode(kind)}
	if m, ok := rec.Values["mode"]; ok {
		if mode, err := palette.ParseMode(m); err == nil {
			t.Mode = mode
		} else {
			l.logger.Warn("ignoring invalid theme mode", "theme", name, "mode", m)
		}
	}
	for idx, c := range rec.Colors {
		t.Colors[idx] = c
	}

	l.logger.Info("loaded theme", "theme", name, "path", path)
	return t, nil
}
