package scheme

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cwal/internal/colour"
)

// TestRead tests parsing of values, colours and malformed lines.
func TestRead(t *testing.T) {
	input := strings.Join([]string{
		"wallpaper=/tmp/a b.png",
		"mode = light",
		"",
		"color0=1,2,3",
		"color15=255,255,255",
		"color3=not,a,colour",
		"color16=1,1,1",
		"garbage line",
		"colorX=4,5,6",
	}, "\n")

	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Warn})

	rec, err := Read(strings.NewReader(input), logger)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if rec.Values["wallpaper"] != "/tmp/a b.png" {
		t.Errorf("wallpaper = %q", rec.Values["wallpaper"])
	}
	if rec.Values["mode"] != "light" {
		t.Errorf("mode = %q", rec.Values["mode"])
	}
	if len(rec.Colors) != 2 {
		t.Errorf("parsed %d colours, want 2", len(rec.Colors))
	}
	if rec.Colors[0] != (colour.Color{R: 1, G: 2, B: 3}) {
		t.Errorf("color0 = %v", rec.Colors[0])
	}
	if _, ok := rec.Colors[3]; ok {
		t.Error("invalid color3 should be skipped")
	}

	// Out of range colour keys are treated as plain values.
	if rec.Values["color16"] != "1,1,1" {
		t.Errorf("color16 = %q", rec.Values["color16"])
	}

	out := logs.String()
	if !strings.Contains(out, "malformed") || !strings.Contains(out, "invalid colour") {
		t.Errorf("expected warnings, got %q", out)
	}
}

// TestWriteRead tests that written schemes read back.
func TestWriteRead(t *testing.T) {
	var colors [16]colour.Color
	for i := range colors {
		colors[i] = colour.Color{R: uint8(i), G: uint8(i * 10), B: uint8(255 - i)}
	}

	var buf bytes.Buffer
	if err := Write(&buf, [][2]string{{"wallpaper", "/w.png"}}, colors); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "wallpaper=/w.png\ncolor0=0,0,255\n") {
		t.Errorf("unexpected output %q", buf.String())
	}

	rec, err := Read(&buf, nil)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	for i, c := range colors {
		if rec.Colors[i] != c {
			t.Errorf("color%d = %v, want %v", i, rec.Colors[i], c)
		}
	}
}
