// Package mediancut extracts base colours with median-cut quantization.
package mediancut

import (
	"context"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
	cwquantize "github.com/jmylchreest/cwal/internal/quantize"
)

// Name is the registry name of the backend.
const Name = "mediancut"

// maxDimension bounds the thumbnail that is quantized.
const maxDimension = 256

// Backend quantizes with github.com/ericpauley/go-quantize.
type Backend struct {
	quantizer quantize.MedianCutQuantizer
}

// New creates the backend.
func New() *Backend {
	return &Backend{quantizer: quantize.MedianCutQuantizer{}}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Description implements backend.Describer.
func (b *Backend) Description() string {
	return "Median cut quantization"
}

// Generate implements backend.Backend.
func (b *Backend) Generate(_ context.Context, src backend.Source) ([]colour.Color, error) {
	img, err := src.Decode()
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	pal := b.quantizer.Quantize(make(color.Palette, 0, backend.MaxColors), thumb)
	if len(pal) == 0 {
		return nil, fmt.Errorf("median cut produced no colours")
	}

	seen := make(map[colour.Color]bool, len(pal))
	colors := make([]colour.Color, 0, len(pal))
	for _, c := range pal {
		cc := colour.FromColor(c)
		if !seen[cc] {
			seen[cc] = true
			colors = append(colors, cc)
		}
	}

	cwquantize.SortByLuminance(colors)
	return colors, nil
}
