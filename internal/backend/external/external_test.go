package external

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
	sdk "github.com/jmylchreest/cwal/pkg/backend"
)

const jsonInfo = `{"name":"mock","version":"1.0.0","protocol_version":"0.1.0","description":"mock backend","backend_protocol":"json-stdio"}`

const eightColours = `[{"r":1,"g":2,"b":3},{"r":10,"g":20,"b":30},{"r":40,"g":40,"b":40},{"r":80,"g":10,"b":10},
{"r":10,"g":80,"b":10},{"r":10,"g":10,"b":80},{"r":120,"g":120,"b":0},{"r":200,"g":200,"b":200}]`

// TestNew tests naming from the file path.
func TestNew(t *testing.T) {
	b := New("/home/u/.config/cwal/backends/vibrant.sh")
	if b.Name() != "vibrant" {
		t.Errorf("Name() = %q, want vibrant", b.Name())
	}
	if !strings.Contains(b.Description(), "vibrant.sh") {
		t.Errorf("Description() = %q", b.Description())
	}
}

// TestDetect tests protocol detection from --backend-info output.
func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    sdk.Protocol
		wantErr bool
	}{
		{"json", jsonInfo, sdk.ProtocolJSON, false},
		{"empty protocol defaults to json", `{"name":"x"}`, sdk.ProtocolJSON, false},
		{"go-plugin", `{"name":"x","protocol_version":"0.1.3","backend_protocol":"go-plugin"}`, sdk.ProtocolGoPlugin, false},
		{"unknown protocol", `{"name":"x","backend_protocol":"grpc"}`, "", true},
		{"incompatible version", `{"name":"x","protocol_version":"2.0.0"}`, "", true},
		{"invalid json", `not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewScriptedRunner(tt.output, "")
			info, err := Detect(context.Background(), runner, "/bin/x")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Detect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && info.BackendProtocol != tt.want {
				t.Errorf("protocol = %q, want %q", info.BackendProtocol, tt.want)
			}
			if len(runner.Calls) != 1 || len(runner.Calls[0]) != 1 || runner.Calls[0][0] != sdk.InfoFlag {
				t.Errorf("runner calls = %v", runner.Calls)
			}
		})
	}
}

// TestDetectFailure tests a backend that exits non-zero.
func TestDetectFailure(t *testing.T) {
	_, err := Detect(context.Background(), NewErrorMockProcessRunner("segfault"), "/bin/x")
	if err == nil || !strings.Contains(err.Error(), "segfault") {
		t.Errorf("Detect() error = %v, want stderr included", err)
	}
}

// TestDetectTimeout tests that a hanging backend is abandoned.
func TestDetectTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &MockProcessRunner{ShouldTimeout: true}
	if _, err := Detect(ctx, runner, "/bin/x"); err == nil {
		t.Error("Detect() should fail when the context ends")
	}
}

// TestGenerateJSON tests a json-stdio exchange through the runner.
func TestGenerateJSON(t *testing.T) {
	runner := NewScriptedRunner(jsonInfo, eightColours)
	b := New("/backends/mock", WithRunner(runner))

	if _, err := b.Generate(context.Background(), backend.Source{Path: "/a.png"}); err == nil {
		t.Error("Generate() before Init() should fail")
	}

	ctx := context.Background()
	if err := b.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer b.Terminate()

	if b.Description() != "mock backend" {
		t.Errorf("Description() = %q", b.Description())
	}

	got, err := b.Generate(ctx, backend.Source{Path: "/a.png"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 8 || got[0] != (colour.Color{R: 1, G: 2, B: 3}) {
		t.Errorf("Generate() = %v", got)
	}

	var req sdk.Request
	if err := json.Unmarshal(runner.LastStdin, &req); err != nil {
		t.Fatalf("stdin was not a request: %v", err)
	}
	if req.ImagePath != "/a.png" || req.MaxColors != backend.MaxColors {
		t.Errorf("request = %+v", req)
	}
}

// TestGenerateJSONErrors tests bad output and process failure.
func TestGenerateJSONErrors(t *testing.T) {
	tests := []struct {
		name   string
		runner *MockProcessRunner
	}{
		{"bad output", NewScriptedRunner(jsonInfo, "oops")},
		{"channel out of range", NewScriptedRunner(jsonInfo, `[{"r":300,"g":0,"b":0}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("/backends/mock", WithRunner(tt.runner))
			if err := b.Init(context.Background()); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if _, err := b.Generate(context.Background(), backend.Source{Path: "/a.png"}); err == nil {
				t.Error("Generate() should fail")
			}
		})
	}

	b := New("/backends/mock", WithRunner(NewScriptedRunner(jsonInfo, eightColours)))
	if err := b.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Generate(context.Background(), backend.Source{}); err == nil {
		t.Error("Generate() without a path should fail")
	}
}

// TestRealProcess tests a shell script backend end to end.
func TestRealProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"--backend-info\" ]; then\n" +
		"  echo '" + jsonInfo + "'\n" +
		"  exit 0\n" +
		"fi\n" +
		"cat > /dev/null\n" +
		"echo '[{\"r\":9,\"g\":8,\"b\":7},{\"r\":1,\"g\":1,\"b\":1}]'\n"

	path := filepath.Join(t.TempDir(), "shell.sh")
	if err := os.WriteFile(path, []byte(script), 0o700); err != nil {
		t.Fatal(err)
	}

	b := New(path)
	ctx := context.Background()
	if err := b.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer b.Terminate()

	got, err := b.Generate(ctx, backend.Source{Path: "/a.png"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 2 || got[0] != (colour.Color{R: 9, G: 8, B: 7}) {
		t.Errorf("Generate() = %v", got)
	}
}

// TestTerminateIdle tests terminate without a running process.
func TestTerminateIdle(t *testing.T) {
	if err := New("/x").Terminate(); err != nil {
		t.Errorf("Terminate() error = %v", err)
	}
}
