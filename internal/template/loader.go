// Package template renders colour templates into the output directory.
//
// Templates come from the embedded defaults and then from each template
// directory in order; a later file with the same name replaces an earlier one.
package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/palette"
)

// SequencesFile is always written alongside the rendered templates.
const SequencesFile = "sequences"

// SystemDir is the system-wide template directory.
const SystemDir = "/usr/local/share/cwal/templates"

//go:embed defaults
var defaultFS embed.FS

// Defaults returns the embedded default templates.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return sub
}

// DefaultDirs returns the template directories from lowest to highest priority.
func DefaultDirs(configDir string) []string {
	dirs := []string{SystemDir}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "cwal", "templates"))
	}
	return append(dirs, filepath.Join(configDir, "templates"))
}

// Source is where a template was found.
type Source struct {
	Name string
	// Dir is empty for embedded templates.
	Dir string
}

// Loader collects templates and renders them.
type Loader struct {
	embedded fs.FS
	dirs     []string
	logger   hclog.Logger
}

// New creates a loader over embedded (may be nil) and dirs, lowest priority first.
func New(embedded fs.FS, dirs []string, l hclog.Logger) *Loader {
	return &Loader{embedded: embedded, dirs: dirs, logger: logger.OrNull(l)}
}

// Sources returns the effective template set sorted by name.
func (l *Loader) Sources() []Source {
	byName := make(map[string]Source)

	if l.embedded != nil {
		entries, err := fs.ReadDir(l.embedded, ".")
		if err != nil {
			l.logger.Warn("failed to list embedded templates", "error", err)
		}
		for _, e := range entries {
			if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				byName[e.Name()] = Source{Name: e.Name()}
			}
		}
	}

	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			l.logger.Debug("skipping template directory", "path", dir, "error", err)
			continue
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			byName[e.Name()] = Source{Name: e.Name(), Dir: dir}
		}
	}

	sources := make([]Source, 0, len(byName))
	for _, s := range byName {
		sources = append(sources, s)
	}
	slices.SortFunc(sources, func(a, b Source) int { return strings.Compare(a.Name, b.Name) })
	return sources
}

func (l *Loader) read(s Source) ([]byte, error) {
	if s.Dir == "" {
		return fs.ReadFile(l.embedded, s.Name)
	}
	return os.ReadFile(filepath.Join(s.Dir, s.Name)) // #nosec G304 -- user template directory
}

// Process renders every template into outDir and writes the sequences file.
// A template that fails to render is logged and skipped. It returns the
// written paths.
func (l *Loader) Process(outDir string, p *palette.Palette) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, s := range l.Sources() {
		src, err := l.read(s)
		if err != nil {
			l.logger.Warn("could not read template", "template", s.Name, "error", err)
			continue
		}

		out := filepath.Join(outDir, s.Name)
		if err := os.WriteFile(out, []byte(Render(string(src), p)), 0o644); err != nil { // #nosec G306 -- shared config output
			l.logger.Warn("could not write template output", "template", s.Name, "path", out, "error", err)
			continue
		}
		l.logger.Debug("rendered template", "template", s.Name, "dir", s.Dir, "path", out)
		written = append(written, out)
	}

	seq := filepath.Join(outDir, SequencesFile)
	if err := os.WriteFile(seq, []byte(Sequences(p)), 0o644); err != nil { // #nosec G306 -- read by other terminals
		return written, fmt.Errorf("failed to write sequences: %w", err)
	}
	written = append(written, seq)

	return written, nil
}

// Dump copies the embedded templates into dir. Existing files are kept unless
// force is set. It returns the written paths.
func (l *Loader) Dump(dir string, force bool) ([]string, error) {
	if l.embedded == nil {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	entries, err := fs.ReadDir(l.embedded, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}

	var dumped []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out := filepath.Join(dir, e.Name())
		if !force {
			if _, err := os.Stat(out); err == nil {
				l.logger.Info("keeping existing template", "path", out)
				continue
			}
		}

		content, err := fs.ReadFile(l.embedded, e.Name())
		if err != nil {
			return dumped, err
		}
		if err := os.WriteFile(out, content, 0o644); err != nil { // #nosec G306 -- user template
			return dumped, fmt.Errorf("failed to write template to %q: %w", out, err)
		}
		dumped = append(dumped, out)
	}
	return dumped, nil
}
