package logger

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewLevels tests the level chosen for each flag combination.
func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{"default", Options{}, false, true},
		{"verbose", Options{Verbose: true}, true, true},
		{"quiet", Options{Quiet: true}, false, false},
		{"quiet wins", Options{Quiet: true, Verbose: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Output = &buf
			l := New(tt.opts)

			l.Debug("debug-line")
			l.Info("info-line")
			l.Error("error-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.wantDebug {
				t.Errorf("debug output = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info-line"); got != tt.wantInfo {
				t.Errorf("info output = %v, want %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "error-line") {
				t.Error("errors should always be logged")
			}
			if !strings.Contains(out, Name) {
				t.Errorf("output missing logger name: %q", out)
			}
		})
	}
}

// TestOrNull tests the nil fallback.
func TestOrNull(t *testing.T) {
	if OrNull(nil) == nil {
		t.Fatal("OrNull(nil) returned nil")
	}
	l := New(Options{Output: &bytes.Buffer{}})
	if OrNull(l) != l {
		t.Error("OrNull should return a non-nil logger unchanged")
	}
}
