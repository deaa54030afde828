// Package palette derives 16-colour terminal palettes from quantized base colours.
package palette

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/cwal/internal/colour"
)

// Size is the number of entries in every palette.
const Size = 16

// Mode selects a dark or light palette.
type Mode string

const (
	// ModeDark produces a dark background with light foreground.
	ModeDark Mode = "dark"
	// ModeLight produces a light background with dark foreground.
	ModeLight Mode = "light"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDark:
		return ModeDark, nil
	case ModeLight:
		return ModeLight, nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be dark or light)", s)
	}
}

// Cols16 selects how bright accents (9-14) are produced in light mode.
type Cols16 string

const (
	Cols16Darken  Cols16 = "darken"
	Cols16Lighten Cols16 = "lighten"
	Cols16None    Cols16 = "none"
)

// ParseCols16 parses a cols16 mode name.
func ParseCols16(s string) (Cols16, error) {
	switch Cols16(strings.ToLower(strings.TrimSpace(s))) {
	case Cols16Darken:
		return Cols16Darken, nil
	case Cols16Lighten:
		return Cols16Lighten, nil
	case Cols16None:
		return Cols16None, nil
	default:
		return "", fmt.Errorf("invalid cols16 mode %q (must be darken, lighten or none)", s)
	}
}

// Palette is a derived 16-colour palette and the parameters that produced it.
type Palette struct {
	Colors [Size]colour.Color

	// Wallpaper is the source image path. Empty when the palette came from a theme.
	Wallpaper string

	Mode       Mode
	Cols16     Cols16
	Saturation float64
	Contrast   float64

	// Alpha is only used when rendering templates.
	Alpha float64
}

// New returns an empty palette with default parameters.
func New() *Palette {
	return &Palette{
		Mode:     ModeDark,
		Cols16:   Cols16Darken,
		Contrast: 1.0,
		Alpha:    1.0,
	}
}

// Background returns colour 0.
func (p *Palette) Background() colour.Color {
	return p.Colors[0]
}

// Foreground returns colour 15.
func (p *Palette) Foreground() colour.Color {
	return p.Colors[15]
}

// Options returns the derivation options matching the palette parameters.
func (p *Palette) Options() Options {
	return Options{
		Mode:       p.Mode,
		Cols16:     p.Cols16,
		Saturation: p.Saturation,
		Contrast:   p.Contrast,
	}
}
