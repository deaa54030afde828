// Package manager builds the backend registry from the built-in backends and
// the custom backends directory.
package manager

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/backend/cwal"
	"github.com/jmylchreest/cwal/internal/backend/external"
	"github.com/jmylchreest/cwal/internal/backend/genai"
	"github.com/jmylchreest/cwal/internal/backend/kmeans"
	"github.com/jmylchreest/cwal/internal/backend/mediancut"
	"github.com/jmylchreest/cwal/internal/backend/script"
	"github.com/jmylchreest/cwal/internal/logger"
)

// DisabledEnv lists backend names, comma separated, that are not registered.
const DisabledEnv = "CWAL_DISABLED_BACKENDS"

// Kind describes where a backend comes from.
type Kind string

const (
	KindBuiltin  Kind = "builtin"
	KindScript   Kind = "script"
	KindExternal Kind = "external"
)

// Builder provides a fluent interface for constructing a Manager.
type Builder struct {
	dir      string
	logger   hclog.Logger
	disabled []string
	useEnv   bool
	builtins []backend.Backend
}

// NewBuilder creates a builder that registers the built-in backends.
func NewBuilder() *Builder {
	return &Builder{logger: hclog.NewNullLogger()}
}

// WithBackendsDir sets the directory scanned for script and external backends.
func (b *Builder) WithBackendsDir(dir string) *Builder {
	b.dir = dir
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l hclog.Logger) *Builder {
	b.logger = logger.OrNull(l)
	return b
}

// WithDisabled skips backends by name.
func (b *Builder) WithDisabled(names ...string) *Builder {
	b.disabled = append(b.disabled, names...)
	return b
}

// WithEnvConfig reads disabled backends from CWAL_DISABLED_BACKENDS.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithBuiltins replaces the built-in backends (useful for testing).
func (b *Builder) WithBuiltins(builtins ...backend.Backend) *Builder {
	b.builtins = builtins
	return b
}

// Build registers the built-ins followed by the directory backends sorted by
// file name. Duplicate names are logged and skipped.
func (b *Builder) Build() *Manager {
	disabled := slices.Clone(b.disabled)
	if b.useEnv {
		disabled = append(disabled, parseList(os.Getenv(DisabledEnv))...)
	}

	m := &Manager{
		registry: backend.NewRegistry(),
		kinds:    make(map[string]Kind),
		logger:   b.logger,
		disabled: disabled,
	}

	builtins := b.builtins
	if builtins == nil {
		builtins = []backend.Backend{
			cwal.New(),
			mediancut.New(),
			kmeans.New(),
			genai.New(b.logger.Named("genai")),
		}
	}
	for _, be := range builtins {
		m.register(be, KindBuiltin)
	}

	if b.dir != "" {
		m.scan(b.dir)
	}

	return m
}

// Manager owns the backend registry.
type Manager struct {
	registry *backend.Registry
	kinds    map[string]Kind
	logger   hclog.Logger
	disabled []string
}

// Registry returns the backend registry.
func (m *Manager) Registry() *backend.Registry {
	return m.registry
}

// Kind returns the kind of a registered backend.
func (m *Manager) Kind(name string) Kind {
	return m.kinds[name]
}

func (m *Manager) register(be backend.Backend, kind Kind) {
	if slices.Contains(m.disabled, be.Name()) {
		m.logger.Debug("backend disabled", "backend", be.Name())
		return
	}
	if err := m.registry.Register(be); err != nil {
		m.logger.Warn("skipping backend", "backend", be.Name(), "error", err)
		return
	}
	m.kinds[be.Name()] = kind
}

func (m *Manager) scan(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("failed to read backends directory", "path", dir, "error", err)
		}
		return
	}

	// ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if strings.EqualFold(filepath.Ext(name), script.Extension) {
			m.register(script.New(path), KindScript)
			continue
		}

		if isExecutable(path) {
			m.register(external.New(path, external.WithLogger(m.logger.Named("backend"))), KindExternal)
			continue
		}

		m.logger.Debug("ignoring non-backend file", "path", path)
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func parseList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
