// Package reload pushes a new palette to running terminals and applications.
package reload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/cwal/internal/logger"
	"github.com/jmylchreest/cwal/internal/template"
)

// Output files used by the reloaders.
const (
	XresourcesFile = "colors.Xresources"
	TTYScriptFile  = "colors-tty.sh"
)

// App reloads one application. It runs only when Command is on PATH and, if
// Process is set, a process with that executable name is running.
type App struct {
	Name    string
	Command string
	Process string

	// Args are passed to Command. Ignored when Signal is set.
	Args []string

	// Signal, if non-zero, is sent to every Process instead of running Command.
	Signal syscall.Signal

	// File, if set, must exist in the output directory and is appended to Args.
	File string
}

// DefaultApps returns the built-in reloaders in the order they run.
func DefaultApps() []App {
	return []App{
		{Name: "xrdb", Command: "xrdb", Args: []string{"-merge", "-quiet"}, File: XresourcesFile},
		{Name: "i3", Command: "i3-msg", Process: "i3", Args: []string{"reload"}},
		{Name: "bspwm", Command: "bspc", Process: "bspwm", Args: []string{"wm", "-r"}},
		{Name: "polybar", Command: "polybar", Process: "polybar", Signal: sigUSR1},
		{Name: "sway", Command: "swaymsg", Process: "sway", Args: []string{"reload"}},
		{Name: "waybar", Command: "waybar", Process: "waybar", Signal: sigUSR2},
		{Name: "mako", Command: "makoctl", Process: "mako", Args: []string{"reload"}},
		{Name: "neovim", Command: "nvim-colo-reload", Process: "nvim"},
		{Name: "termux", Command: "termux-reload-settings"},
	}
}

// Reloader applies generated output to the running system.
type Reloader struct {
	Broadcaster Broadcaster
	Apps        []App

	LookPath  func(string) (string, error)
	Processes func() ([]ps.Process, error)
	Run       func(ctx context.Context, name string, args ...string) error
	Signal    func(pid int, sig syscall.Signal) error
	Getenv    func(string) string

	logger hclog.Logger
}

// New returns a reloader for the running system.
func New(l hclog.Logger) *Reloader {
	l = logger.OrNull(l)
	return &Reloader{
		Broadcaster: NewTerminalBroadcaster(l),
		Apps:        DefaultApps(),
		LookPath:    exec.LookPath,
		Processes:   ps.Processes,
		Run:         runQuiet,
		Signal:      signalPID,
		Getenv:      os.Getenv,
		logger:      l,
	}
}

func runQuiet(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run() // #nosec G204 -- fixed reload commands
}

// Apply broadcasts outDir's sequences file, runs the TTY script on a Linux
// console and reloads every running application. Failures are logged; only a
// missing output directory is an error.
func (r *Reloader) Apply(ctx context.Context, outDir string) error {
	if _, err := os.Stat(outDir); err != nil {
		return fmt.Errorf("output directory unavailable: %w", err)
	}

	r.broadcast(outDir)

	if r.Getenv("TERM") == "linux" {
		script := filepath.Join(outDir, TTYScriptFile)
		if exists(script) {
			if err := r.Run(ctx, "sh", script); err != nil {
				r.logger.Warn("failed to apply tty colours", "error", err)
			} else {
				r.logger.Info("applied tty colours")
			}
		}
	}

	running, err := r.running()
	if err != nil {
		r.logger.Warn("failed to list processes", "error", err)
	}

	for _, app := range r.Apps {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.reload(ctx, app, outDir, running); err != nil {
			r.logger.Warn("failed to reload", "app", app.Name, "error", err)
		}
	}

	return nil
}

func (r *Reloader) broadcast(outDir string) {
	if r.Broadcaster == nil {
		return
	}

	path := filepath.Join(outDir, template.SequencesFile)
	seq, err := os.ReadFile(path) // #nosec G304 -- file in the output directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("terminal sequences file not found", "path", path)
		} else {
			r.logger.Warn("could not read terminal sequences", "path", path, "error", err)
		}
		return
	}

	n, err := r.Broadcaster.Broadcast(seq)
	if err != nil {
		r.logger.Warn("failed to broadcast sequences", "error", err)
		return
	}
	r.logger.Info("applied terminal sequences", "terminals", n)
}

// running maps executable names to pids.
func (r *Reloader) running() (map[string][]int, error) {
	procs, err := r.Processes()
	if err != nil {
		return nil, err
	}
	m := make(map[string][]int)
	for _, p := range procs {
		m[p.Executable()] = append(m[p.Executable()], p.Pid())
	}
	return m, nil
}

func (r *Reloader) reload(ctx context.Context, app App, outDir string, running map[string][]int) error {
	if _, err := r.LookPath(app.Command); err != nil {
		return nil
	}

	var pids []int
	if app.Process != "" {
		pids = running[app.Process]
		if len(pids) == 0 {
			return nil
		}
	}

	if app.Signal != 0 {
		var errs []error
		for _, pid := range pids {
			if err := r.Signal(pid, app.Signal); err != nil {
				errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
		r.logger.Info("reloaded", "app", app.Name)
		return nil
	}

	args := app.Args
	if app.File != "" {
		path := filepath.Join(outDir, app.File)
		if !exists(path) {
			return nil
		}
		args = append(append([]string(nil), args...), path)
	}

	if err := r.Run(ctx, app.Command, args...); err != nil {
		return err
	}
	r.logger.Info("reloaded", "app", app.Name)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
