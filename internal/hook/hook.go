// Package hook runs the user's post-generation script.
package hook

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/logger"
)

// Runner runs a hook command line.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// ShellRunner runs hooks through the system shell with output discarded.
type ShellRunner struct {
	logger hclog.Logger
}

// NewShellRunner creates a shell runner.
func NewShellRunner(l hclog.Logger) *ShellRunner {
	return &ShellRunner{logger: logger.OrNull(l)}
}

// ExitError reports a hook that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("hook %q exited with status %d", e.Command, e.Code)
}

// Run runs command and waits for it. An empty command does nothing.
func (r *ShellRunner) Run(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}

	r.logger.Info("running hook script", "command", command)

	cmd := shellCommand(ctx, command)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: command, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to execute hook script: %w", err)
	}
	return nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command) // #nosec G204 -- user configured hook
	}
	return exec.CommandContext(ctx, "sh", "-c", command) // #nosec G204 -- user configured hook
}

// RunLogged runs command with r and logs failures instead of returning them.
// A non-zero exit is a warning; a hook that could not start is an error.
func RunLogged(ctx context.Context, r Runner, l hclog.Logger, command string) {
	l = logger.OrNull(l)

	err := r.Run(ctx, command)
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		l.Warn("hook script exited with non-zero status", "command", command, "status", exitErr.Code)
		return
	}
	l.Error("hook script failed", "command", command, "error", err)
}
