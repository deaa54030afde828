// Package preview prints palette swatches to the terminal.
package preview

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/palette"
)

const rowSize = 8

// Printer renders swatches to Out when Out is a terminal.
type Printer struct {
	Out        io.Writer
	IsTerminal func() bool
}

// NewPrinter returns a printer for stdout.
func NewPrinter() *Printer {
	return &Printer{
		Out:        os.Stdout,
		IsTerminal: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }, // #nosec G115 -- fd fits in int
	}
}

func (p *Printer) enabled() bool {
	return p.Out != nil && (p.IsTerminal == nil || p.IsTerminal())
}

// Palette prints the palette's colours with hex labels.
func (p *Printer) Palette(pal *palette.Palette) {
	if !p.enabled() {
		return
	}
	fmt.Fprintln(p.Out, Swatches(lipgloss.NewRenderer(p.Out), pal.Colors))
}

// Terminal prints ANSI colours 0-15, showing the terminal's current palette.
func (p *Printer) Terminal() {
	if !p.enabled() {
		return
	}
	fmt.Fprintln(p.Out, ANSI(lipgloss.NewRenderer(p.Out)))
}

// Swatches renders two rows of eight labelled swatches.
func Swatches(r *lipgloss.Renderer, colors [palette.Size]colour.Color) string {
	cells := make([]string, len(colors))
	for i, c := range colors {
		fg := "#ffffff"
		if colour.Luminance(c) > 0.4 {
			fg = "#000000"
		}
		cells[i] = r.NewStyle().
			Background(lipgloss.Color(c.Hex())).
			Foreground(lipgloss.Color(fg)).
			Padding(0, 1).
			Render(c.Hex())
	}
	return rows(cells)
}

// ANSI renders two rows of swatches using terminal colour indices.
func ANSI(r *lipgloss.Renderer) string {
	cells := make([]string, palette.Size)
	for i := range cells {
		cells[i] = r.NewStyle().
			Background(lipgloss.Color(strconv.Itoa(i))).
			Width(6).
			Align(lipgloss.Center).
			Render(fmt.Sprintf("%2d", i))
	}
	return rows(cells)
}

func rows(cells []string) string {
	var lines []string
	for start := 0; start < len(cells); start += rowSize {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells[start:min(start+rowSize, len(cells))]...))
	}
	return strings.Join(lines, "\n")
}
