package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a colour in hue (degrees, [0,360)), saturation and value ([0,1]).
type HSV struct {
	H, S, V float64
}

// HSL is a colour in hue (degrees, [0,360)), saturation and lightness ([0,1]).
type HSL struct {
	H, S, L float64
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c Color) float64 {
	rf := gammaCorrect(float64(c.R) / 255.0)
	gf := gammaCorrect(float64(c.G) / 255.0)
	bf := gammaCorrect(float64(c.B) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect linearises an sRGB channel.
func gammaCorrect(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21.
func ContrastRatio(c1, c2 Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// ToHSV converts a colour to HSV.
func ToHSV(c Color) HSV {
	h, s, v := toColorful(c).Hsv()
	return HSV{H: h, S: s, V: v}
}

// Color converts an HSV value back to an RGB colour, rounding each channel.
func (hsv HSV) Color() Color {
	return fromColorful(colorful.Hsv(hsv.H, clamp01(hsv.S), clamp01(hsv.V)))
}

// ToHSL converts a colour to HSL.
func ToHSL(c Color) HSL {
	h, s, l := toColorful(c).Hsl()
	return HSL{H: h, S: s, L: l}
}

// Color converts an HSL value back to an RGB colour, rounding each channel.
func (hsl HSL) Color() Color {
	return fromColorful(colorful.Hsl(hsl.H, clamp01(hsl.S), clamp01(hsl.L)))
}

// Lighten moves each channel towards white by amount (clamped to [0,1]).
func Lighten(c Color, amount float64) Color {
	amount = clamp01(amount)
	lighten := func(v uint8) uint8 {
		f := float64(v)
		return ClampByte(f + (255.0-f)*amount)
	}
	return Color{R: lighten(c.R), G: lighten(c.G), B: lighten(c.B)}
}

// Darken scales each channel towards black by amount (clamped to [0,1]).
func Darken(c Color, amount float64) Color {
	amount = clamp01(amount)
	darken := func(v uint8) uint8 {
		return ClampByte(float64(v) * (1.0 - amount))
	}
	return Color{R: darken(c.R), G: darken(c.G), B: darken(c.B)}
}

// Saturate raises HSL saturation by amount (clamped to [0,1]); the result saturates at 1.
func Saturate(c Color, amount float64) Color {
	hsl := ToHSL(c)
	hsl.S = clamp01(hsl.S + clamp01(amount))
	return hsl.Color()
}

// SearchLuminance bisects HSV value, holding hue and saturation fixed, towards
// a colour whose luminance is target. It always runs exactly iterations steps
// and returns the midpoint of the final bracket whether or not target was reached.
func SearchLuminance(target float64, hsv HSV, iterations int) Color {
	vMin, vMax := 0.0, 1.0
	probe := HSV{H: hsv.H, S: hsv.S}

	for range iterations {
		probe.V = (vMin + vMax) / 2
		if Luminance(probe.Color()) >= target {
			vMax = probe.V
		} else {
			vMin = probe.V
		}
	}

	probe.V = (vMin + vMax) / 2
	return probe.Color()
}

// ClampByte rounds v to the nearest integer and clamps it to [0,255].
func ClampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func toColorful(c Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}
