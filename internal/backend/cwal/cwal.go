// Package cwal is the default backend: it downsamples the image and clusters
// it in L*a*b* space.
package cwal

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/quantize"
)

// Name is the registry name of the backend.
const Name = "cwal"

// scale is the fraction of each dimension kept before clustering.
const scale = 0.20

// Backend clusters a 20% thumbnail in Lab space with a content-derived seed.
type Backend struct {
	kmeans *quantize.KMeans
}

// New creates the backend.
func New() *Backend {
	return &Backend{kmeans: quantize.NewKMeans(quantize.SpaceLab)}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Description implements backend.Describer.
func (b *Backend) Description() string {
	return "Lab k-means on a 20% thumbnail (default)"
}

// Generate implements backend.Backend.
func (b *Backend) Generate(ctx context.Context, src backend.Source) ([]colour.Color, error) {
	img, err := src.Decode()
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w := max(int(float64(bounds.Dx())*scale), 1)
	h := max(int(float64(bounds.Dy())*scale), 1)
	thumb := imaging.Resize(img, w, h, imaging.Lanczos)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clusters, err := b.kmeans.Quantize(thumb, backend.MaxColors, quantize.ContentSeed(img))
	if err != nil {
		return nil, fmt.Errorf("failed to quantize image: %w", err)
	}

	colors := quantize.Colors(clusters)
	quantize.SortByLuminance(colors)
	return colors, nil
}
