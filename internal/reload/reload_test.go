package reload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/cwal/internal/template"
)

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int { return p.pid }
func (p fakeProcess) PPid() int { return 1 }
func (p fakeProcess) Executable() string { return p.name }

// recordingBroadcaster records what it was asked to send.
type recordingBroadcaster struct {
	got []byte
}

func (b *recordingBroadcaster) Broadcast(seq []byte) (int, error) {
	b.got = seq
	return 1, nil
}

type call struct {
	name string
	args []string
}

func newTestReloader(t *testing.T, onPath []string, procs []ps.Process) (*Reloader, *[]call, *[]int, *recordingBroadcaster) {
	t.Helper()

	var calls []call
	var signalled []int
	b := &recordingBroadcaster{}

	r := New(nil)
	r.Broadcaster = b
	r.LookPath = func(name string) (string, error) {
		for _, p := range onPath {
			if p == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
	r.Processes = func() ([]ps.Process, error) { return procs, nil }
	r.Run = func(_ context.Context, name string, args ...string) error {
		calls = append(calls, call{name, args})
		return nil
	}
	r.Signal = func(pid int, _ syscall.Signal) error {
		signalled = append(signalled, pid)
		return nil
	}
	r.Getenv = func(string) string { return "" }

	return r, &calls, &signalled, b
}

func writeOutput(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

// TestApply tests which reloaders run.
func TestApply(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, template.SequencesFile, "\x1b]4;0;#000000\x1b\\")
	writeOutput(t, out, XresourcesFile, "*color0: #000000\n")

	r, calls, signalled, b := newTestReloader(t,
		[]string{"xrdb", "i3-msg", "swaymsg", "waybar", "polybar", "termux-reload-settings"},
		[]ps.Process{
			fakeProcess{10, "i3"},
			fakeProcess{20, "waybar"},
			fakeProcess{21, "waybar"},
			fakeProcess{30, "bspwm"},
		},
	)

	if err := r.Apply(context.Background(), out); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if string(b.got) != "\x1b]4;0;#000000\x1b\\" {
		t.Errorf("broadcast %q", b.got)
	}

	var names []string
	for _, c := range *calls {
		names = append(names, c.name)
	}
	if got := strings.Join(names, ","); got != "xrdb,i3-msg,termux-reload-settings" {
		t.Errorf("commands = %s", got)
	}
	if args := (*calls)[0].args; len(args) != 3 || args[2] != filepath.Join(out, XresourcesFile) {
		t.Errorf("xrdb args = %v", args)
	}

	if len(*signalled) != 2 || (*signalled)[0] != 20 || (*signalled)[1] != 21 {
		t.Errorf("signalled = %v, want waybar pids", *signalled)
	}
}

// TestApplyMissingFiles tests that absent outputs skip their reloaders.
func TestApplyMissingFiles(t *testing.T) {
	out := t.TempDir()
	r, calls, _, b := newTestReloader(t, []string{"xrdb"}, nil)

	if err := r.Apply(context.Background(), out); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if b.got != nil {
		t.Error("nothing should be broadcast without a sequences file")
	}
	if len(*calls) != 0 {
		t.Errorf("calls = %v", *calls)
	}

	if err := r.Apply(context.Background(), filepath.Join(out, "missing")); err == nil {
		t.Error("Apply() should fail for a missing output directory")
	}
}

// TestApplyTTY tests the linux console script.
func TestApplyTTY(t *testing.T) {
	out := t.TempDir()
	writeOutput(t, out, TTYScriptFile, "#!/bin/sh\n")

	r, calls, _, _ := newTestReloader(t, nil, nil)
	r.Getenv = func(k string) string {
		if k == "TERM" {
			return "linux"
		}
		return ""
	}

	if err := r.Apply(context.Background(), out); err != nil {
		t.Fatal(err)
	}
	if len(*calls) != 1 || (*calls)[0].name != "sh" || (*calls)[0].args[0] != filepath.Join(out, TTYScriptFile) {
		t.Errorf("calls = %v", *calls)
	}
}

// TestTerminalBroadcaster tests writing to devices and stdout.
func TestTerminalBroadcaster(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1", "2"} {
		writeOutput(t, dir, name, "")
	}

	var stdout bytes.Buffer
	isTTY := true
	b := &TerminalBroadcaster{
		Patterns:   []string{filepath.Join(dir, "[0-9]*")},
		Stdout:     &stdout,
		IsTerminal: func() bool { return isTTY },
	}

	n, err := b.Broadcast([]byte("seq"))
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Broadcast() = %d, want 2", n)
	}
	for _, name := range []string{"1", "2"} {
		data, _ := os.ReadFile(filepath.Join(dir, name))
		if string(data) != "seq" {
			t.Errorf("device %s = %q", name, data)
		}
	}
	if stdout.String() != "seq" {
		t.Errorf("stdout = %q", stdout.String())
	}

	stdout.Reset()
	isTTY = false
	if _, err := b.Broadcast([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 0 {
		t.Error("stdout written when not a terminal")
	}
}

// TestDevicePatterns tests the per-OS device globs.
func TestDevicePatterns(t *testing.T) {
	if p := DevicePatterns("linux"); len(p) != 1 || p[0] != "/dev/pts/[0-9]*" {
		t.Errorf("linux = %v", p)
	}
	if p := DevicePatterns("darwin"); len(p) != 1 || p[0] != "/dev/ttys00[0-9]*" {
		t.Errorf("darwin = %v", p)
	}
	if p := DevicePatterns("windows"); p != nil {
		t.Errorf("windows = %v", p)
	}
}
