package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/colour"
)

// Stage identifies where in an attempt a backend failed.
type Stage string

const (
	StageInit     Stage = "init"
	StageGenerate Stage = "generate"
)

var (
	// ErrAllBackendsExhausted is returned when every registered backend failed.
	ErrAllBackendsExhausted = errors.New("all backends failed")

	// ErrTooFewColors is returned when a backend produced fewer than MinColors colours.
	ErrTooFewColors = errors.New("too few colours")
)

// AttemptError is a failed init or generate step of a single backend.
type AttemptError struct {
	Backend string
	Stage   Stage
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("backend %s: %s failed: %v", e.Backend, e.Stage, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// Orchestrator runs backends with fallback.
type Orchestrator struct {
	registry *Registry
	logger   hclog.Logger
}

// NewOrchestrator creates an orchestrator over registry.
func NewOrchestrator(registry *Registry, logger hclog.Logger) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Orchestrator{registry: registry, logger: logger}
}

// Process obtains base colours from preferred, falling back to every other
// registered backend in registration order, except explicit-only ones. Each backend is attempted at most
// once and is terminated after its attempt whatever the outcome. The result has
// at most MaxColors entries.
func (o *Orchestrator) Process(ctx context.Context, preferred Backend, src Source) ([]colour.Color, error) {
	candidates := make([]Backend, 0, o.registry.Len()+1)
	if preferred != nil {
		candidates = append(candidates, preferred)
	}
	for _, b := range o.registry.All() {
		if preferred != nil && b.Name() == preferred.Name() {
			continue
		}
		if IsExplicitOnly(b) {
			o.logger.Debug("not falling back to explicit-only backend", "backend", b.Name())
			continue
		}
		candidates = append(candidates, b)
	}

	var errs []error
	for i, b := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backend processing cancelled: %w", err)
		}

		if i > 0 {
			o.logger.Info("falling back to backend", "backend", b.Name())
		}

		colors, err := o.attempt(ctx, b, src)
		if err == nil {
			o.logger.Debug("backend succeeded", "backend", b.Name(), "colors", len(colors))
			return colors, nil
		}

		o.logger.Warn("backend failed", "backend", b.Name(), "error", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no backends registered", ErrAllBackendsExhausted)
	}
	return nil, fmt.Errorf("%w: %w", ErrAllBackendsExhausted, errors.Join(errs...))
}

// attempt runs init, generate and terminate for a single backend. Panics in
// init or generate are reported as failures of that stage.
func (o *Orchestrator) attempt(ctx context.Context, b Backend, src Source) (colors []colour.Color, err error) {
	stage := StageInit

	defer func() {
		if r := recover(); r != nil {
			colors = nil
			err = &AttemptError{Backend: b.Name(), Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
		o.terminate(b)
	}()

	if in, ok := b.(Initializer); ok {
		if err := in.Init(ctx); err != nil {
			return nil, &AttemptError{Backend: b.Name(), Stage: StageInit, Err: err}
		}
	}

	stage = StageGenerate
	colors, err = b.Generate(ctx, src)
	if err != nil {
		return nil, &AttemptError{Backend: b.Name(), Stage: StageGenerate, Err: err}
	}
	if len(colors) < MinColors {
		return nil, &AttemptError{
			Backend: b.Name(),
			Stage:   StageGenerate,
			Err:     fmt.Errorf("%w: got %d, need %d", ErrTooFewColors, len(colors), MinColors),
		}
	}

	if len(colors) > MaxColors {
		colors = colors[:MaxColors]
	}
	return colors, nil
}

func (o *Orchestrator) terminate(b Backend) {
	t, ok := b.(Terminator)
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("backend panicked during terminate", "backend", b.Name(), "panic", r)
		}
	}()

	if err := t.Terminate(); err != nil {
		o.logger.Warn("failed to terminate backend", "backend", b.Name(), "error", err)
	}
}
