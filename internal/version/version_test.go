package version

import (
	"strings"
	"testing"
)

// TestString tests the version line with and without build metadata.
func TestString(t *testing.T) {
	origCommit, origDate := Commit, Date
	t.Cleanup(func() { Commit, Date = origCommit, origDate })

	Commit, Date = "unknown", "unknown"
	if got := String(); !strings.HasPrefix(got, "cwal version "+Version+" (") {
		t.Errorf("String() = %q", got)
	}

	Commit, Date = "0123456789abcdef", "2025-01-01T00:00:00Z"
	got := String()
	if !strings.Contains(got, "commit: 01234567,") || !strings.Contains(got, "built: 2025-01-01T00:00:00Z") {
		t.Errorf("String() = %q", got)
	}

	Commit = "abc"
	if got := String(); !strings.Contains(got, "commit: abc,") {
		t.Errorf("String() with short commit = %q", got)
	}
}

// TestUserAgent tests the outgoing User-Agent.
func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "cwal/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
