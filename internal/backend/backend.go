// Package backend defines the quantization backends that extract base colours
// from an image, the ordered registry that holds them, and the orchestrator
// that falls back from one backend to the next.
package backend

import (
	"context"
	"fmt"
	"image"

	"github.com/jmylchreest/cwal/internal/colour"
	imgutil "github.com/jmylchreest/cwal/internal/image"
)

const (
	// MaxColors is the number of base colours used from a backend.
	MaxColors = 8
	// MinColors is the fewest colours a backend may return and still succeed.
	MinColors = 7
)

// Source is the image a backend quantizes. Image is decoded once by the caller;
// Path is what script and external backends receive.
type Source struct {
	Path  string
	Image image.Image
}

// Backend extracts up to MaxColors base colours from an image.
type Backend interface {
	// Name returns the registry name (e.g., "cwal", "kmeans").
	Name() string

	// Generate returns the base colours for src.
	Generate(ctx context.Context, src Source) ([]colour.Color, error)
}

// Initializer is implemented by backends that acquire resources before Generate.
// Init must be idempotent.
type Initializer interface {
	Init(ctx context.Context) error
}

// Terminator is implemented by backends that release resources after an attempt.
// Terminate must be safe to call without a prior Init.
type Terminator interface {
	Terminate() error
}

// Describer is implemented by backends with a human readable description.
type Describer interface {
	Description() string
}

// ExplicitOnly is implemented by backends that must run only when the user
// names them, such as those sending the image to a remote service. The
// orchestrator never falls back to a backend reporting true.
type ExplicitOnly interface {
	ExplicitOnly() bool
}

// IsExplicitOnly reports whether b is excluded from fallback.
func IsExplicitOnly(b Backend) bool {
	e, ok := b.(ExplicitOnly)
	return ok && e.ExplicitOnly()
}

// Description returns the backend's description, or an empty string.
func Description(b Backend) string {
	if d, ok := b.(Describer); ok {
		return d.Description()
	}
	return ""
}

// Registry is an ordered list of backends. Order is registration order and is
// the fallback order.
type Registry struct {
	backends []Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a backend. Names must be unique.
func (r *Registry) Register(b Backend) error {
	if _, ok := r.Get(b.Name()); ok {
		return fmt.Errorf("backend %q already registered", b.Name())
	}
	r.backends = append(r.backends, b)
	return nil
}

// Get returns the named backend.
func (r *Registry) Get(name string) (Backend, bool) {
	for _, b := range r.backends {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Resolve returns the named backend, or the first registered backend that is
// not explicit-only when the name is empty or unknown. It returns nil when no
// such backend is registered.
func (r *Registry) Resolve(name string) Backend {
	if b, ok := r.Get(name); ok {
		return b
	}
	for _, b := range r.backends {
		if !IsExplicitOnly(b) {
			return b
		}
	}
	return nil
}

// All returns the backends in registration order.
func (r *Registry) All() []Backend {
	return append([]Backend(nil), r.backends...)
}

// Names returns the backend names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for _, b := range r.backends {
		names = append(names, b.Name())
	}
	return names
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.backends)
}

// Decode returns src.Image, loading it from src.Path when it has not been decoded yet.
func (s Source) Decode() (image.Image, error) {
	if s.Image != nil {
		return s.Image, nil
	}
	return imgutil.Load(s.Path)
}
