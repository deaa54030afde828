package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/palette"
)

func samplePalette() *palette.Palette {
	p := palette.New()
	for i := range p.Colors {
		p.Colors[i] = colour.Color{R: uint8(i * 16), G: uint8(i * 16), B: uint8(i * 16)}
	}
	return p
}

// TestSwatches tests layout and labels.
func TestSwatches(t *testing.T) {
	var buf bytes.Buffer
	out := Swatches(lipgloss.NewRenderer(&buf), samplePalette().Colors)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d rows, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "#000000") || !strings.Contains(lines[0], "#707070") {
		t.Errorf("first row missing colours 0-7: %q", lines[0])
	}
	if !strings.Contains(lines[1], "#808080") || !strings.Contains(lines[1], "#f0f0f0") {
		t.Errorf("second row missing colours 8-15: %q", lines[1])
	}
}

// TestANSI tests the terminal palette rows.
func TestANSI(t *testing.T) {
	var buf bytes.Buffer
	out := ANSI(lipgloss.NewRenderer(&buf))

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d rows, want 2", len(lines))
	}
	if !strings.Contains(lines[0], " 7") || !strings.Contains(lines[1], "15") {
		t.Errorf("unexpected rows:\n%s", out)
	}
}

// TestPrinter tests that nothing is printed off a terminal.
func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	tty := false
	p := &Printer{Out: &buf, IsTerminal: func() bool { return tty }}

	p.Palette(samplePalette())
	p.Terminal()
	if buf.Len() != 0 {
		t.Errorf("printed %q when not a terminal", buf.String())
	}

	tty = true
	p.Palette(samplePalette())
	if !strings.Contains(buf.String(), "#f0f0f0") {
		t.Errorf("palette not printed: %q", buf.String())
	}
}
