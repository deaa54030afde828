package hook

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

// TestShellRunner tests exit status handling.
func TestShellRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")

	r := NewShellRunner(nil)
	ctx := context.Background()

	if err := r.Run(ctx, ""); err != nil {
		t.Errorf("empty command error = %v", err)
	}

	if err := r.Run(ctx, "echo hello; touch "+marker); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("hook did not run")
	}

	err := r.Run(ctx, "exit 3")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("Run(exit 3) error = %v", err)
	}
}

// TestShellRunnerCancelled tests that a cancelled context stops the hook.
func TestShellRunnerCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewShellRunner(nil).Run(ctx, "sleep 5"); err == nil {
		t.Error("Run() should fail with a cancelled context")
	}
}

type fakeRunner struct{ err error }

func (f fakeRunner) Run(context.Context, string) error { return f.err }

// TestRunLogged tests how failures are reported.
func TestRunLogged(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, ""},
		{"non-zero", &ExitError{Command: "x", Code: 1}, "[WARN]"},
		{"start failure", errors.New("no shell"), "[ERROR]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})

			RunLogged(context.Background(), fakeRunner{tt.err}, l, "x")

			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("unexpected log %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}
