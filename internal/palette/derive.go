package palette

import (
	"slices"

	"github.com/jmylchreest/cwal/internal/colour"
)

const (
	// Dark-mode accent boost.
	minAccentValue      = 0.25
	minAccentSaturation = 0.20
	valueBoost          = 0.30
	saturationBoost     = 0.40

	// Background normalisation.
	lightBackgroundFloor  = 0.85
	lightBackgroundTarget = 0.95
	maxLightenPasses      = 16
	darkChannelThreshold  = 16
	darkBackgroundDarken  = 0.70
	darkBackgroundLighten = 0.03
	darkBackgroundSat     = 0.40

	// LightContrastFloor is the minimum contrast ratio enforced in light mode.
	LightContrastFloor = 4.5
	// DarkContrastFloor is the minimum contrast ratio enforced in dark mode.
	DarkContrastFloor = 5.5

	contrastSearchIterations = 10
)

// DefaultSaturationExclude lists the indices skipped by the global saturation pass.
var DefaultSaturationExclude = []int{7, 15}

// luminanceSearch is replaced in tests to observe the contrast search.
var luminanceSearch = colour.SearchLuminance

// Options controls palette derivation.
type Options struct {
	Mode   Mode
	Cols16 Cols16

	// Saturation is added to HSL saturation of every non-excluded index. Zero disables it.
	Saturation float64

	// Contrast is the requested minimum contrast ratio against colour 0.
	// Zero or one disables contrast enforcement.
	Contrast float64

	// SaturationExclude lists indices the saturation pass skips.
	// Nil means DefaultSaturationExclude; an empty non-nil slice excludes nothing.
	SaturationExclude []int
}

// Derive expands base colours (indices 1-6 used) into a 16-colour palette.
// average is the whole-image average colour and seeds the background.
// Derive is pure and deterministic.
func Derive(base [8]colour.Color, average colour.Color, opts Options) [Size]colour.Color {
	var colors [Size]colour.Color
	copy(colors[:8], base[:])

	light := opts.Mode == ModeLight

	if !light {
		boostDarkAccents(&colors)
	}

	colors[0] = normaliseBackground(average, light)

	deriveShades(&colors, light)
	deriveBrightAccents(&colors, light, opts.Cols16)

	if opts.Saturation != 0 {
		exclude := opts.SaturationExclude
		if exclude == nil {
			exclude = DefaultSaturationExclude
		}
		for i := range colors {
			if slices.Contains(exclude, i) {
				continue
			}
			colors[i] = colour.Saturate(colors[i], opts.Saturation)
		}
	}

	enforceContrast(&colors, opts.Contrast, light)

	return colors
}

// boostDarkAccents lifts accents that are too dark or too grey for a dark background.
func boostDarkAccents(colors *[Size]colour.Color) {
	for i := 1; i <= 6; i++ {
		hsv := colour.ToHSV(colors[i])
		boosted := false

		if hsv.V < minAccentValue {
			hsv.V += valueBoost * (1 - hsv.V)
			boosted = true
		}
		if hsv.S < minAccentSaturation {
			hsv.S += saturationBoost * (1 - hsv.S)
			boosted = true
		}

		if boosted {
			colors[i] = hsv.Color()
		}
	}
}

func normaliseBackground(bg colour.Color, light bool) colour.Color {
	if light {
		for range maxLightenPasses {
			lum := colour.Luminance(bg)
			if lum >= lightBackgroundFloor {
				break
			}
			bg = colour.Lighten(bg, lightBackgroundTarget-lum)
		}
		return bg
	}

	// Channel check happens before any adjustment.
	nearBlack := bg.R < darkChannelThreshold || bg.G < darkChannelThreshold || bg.B < darkChannelThreshold

	if bg.R >= darkChannelThreshold {
		bg = colour.Darken(bg, darkBackgroundDarken)
	}
	if nearBlack {
		bg = colour.Lighten(bg, darkBackgroundLighten)
		bg = colour.Saturate(bg, darkBackgroundSat)
	}

	return bg
}

func deriveShades(colors *[Size]colour.Color, light bool) {
	bg := colors[0]

	if light {
		colors[7] = colour.Darken(bg, 0.60)
		colors[8] = colour.Darken(bg, 0.30)
		colors[15] = colour.Darken(bg, 0.90)
		return
	}

	colors[7] = colour.Saturate(colour.Lighten(bg, 0.60), 0.05)
	colors[8] = colour.Saturate(colour.Lighten(bg, 0.40), 0.10)
	colors[15] = colour.Lighten(bg, 0.80)
}

func deriveBrightAccents(colors *[Size]colour.Color, light bool, cols16 Cols16) {
	for i := 1; i <= 6; i++ {
		switch {
		case !light:
			colors[i+8] = colour.Saturate(colour.Lighten(colors[i], 0.25), 0.30)
		case cols16 == Cols16Lighten:
			colors[i+8] = colour.Lighten(colors[i], 0.15)
		default:
			colors[i+8] = colour.Darken(colors[i], 0.15)
		}
	}
}

// RequiredContrast returns the contrast ratio enforced for the requested value,
// or zero when enforcement is disabled.
func RequiredContrast(contrast float64, light bool) float64 {
	if contrast == 0 || contrast == 1 {
		return 0
	}
	floor := DarkContrastFloor
	if light {
		floor = LightContrastFloor
	}
	return max(contrast, floor)
}

// enforceContrast moves indices 1-14 that fall below the required ratio
// against colour 0 towards a luminance that meets it.
func enforceContrast(colors *[Size]colour.Color, contrast float64, light bool) {
	required := RequiredContrast(contrast, light)
	if required == 0 {
		return
	}

	bgLum := colour.Luminance(colors[0])

	var target float64
	if bgLum > 0.5 {
		target = max(0, (bgLum+0.05)/required-0.05)
	} else {
		target = min(1, (bgLum+0.05)*required-0.05)
	}

	for i := 1; i <= 14; i++ {
		if colour.ContrastRatio(colors[i], colors[0]) >= required {
			continue
		}
		colors[i] = luminanceSearch(target, colour.ToHSV(colors[i]), contrastSearchIterations)
	}
}
