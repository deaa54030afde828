package security

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

// TestValidateHTTPURL tests download URL validation.
func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/backend.tar.gz", false},
		{"http://example.com/backend.tar.gz", true},
		{"https://localhost/x", true},
		{"https://127.0.0.2/x", true},
		{"https://192.168.1.4/x", true},
		{"https://172.20.0.1/x", true},
		{"https://172.32.0.1/x", false},
		{"https:///x", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateHTTPURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

// TestValidatePaths tests traversal checks.
func TestValidatePaths(t *testing.T) {
	base := t.TempDir()

	if err := ValidateBackendPath(filepath.Join(base, "octree.lua"), base); err != nil {
		t.Errorf("ValidateBackendPath() inside base: %v", err)
	}
	if err := ValidateBackendPath(filepath.Join(base, "..", "octree.lua"), base); err == nil {
		t.Error("ValidateBackendPath() accepted a path outside base")
	}
	if err := ValidateBackendPath(base, base); err == nil {
		t.Error("ValidateBackendPath() accepted the base directory itself")
	}

	for _, p := range []string{"", "../x", "a/../../x", "/etc/passwd"} {
		if err := ValidateFilePath(p, base); err == nil {
			t.Errorf("ValidateFilePath(%q) succeeded", p)
		}
	}
	if err := ValidateFilePath("dist/octree", base); err != nil {
		t.Errorf("ValidateFilePath() error = %v", err)
	}
}

// TestLimitedReader tests the size cap.
func TestLimitedReader(t *testing.T) {
	data, err := io.ReadAll(NewLimitedReader(strings.NewReader("12345"), 5))
	if err != nil || string(data) != "12345" {
		t.Errorf("ReadAll() at the limit = %q, %v", data, err)
	}

	_, err = io.ReadAll(NewLimitedReader(strings.NewReader("123456"), 5))
	if !errors.Is(err, ErrSizeLimit) {
		t.Errorf("ReadAll() over the limit error = %v, want ErrSizeLimit", err)
	}
}
