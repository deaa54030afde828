// Package kmeans extracts base colours with RGB k-means clustering.
package kmeans

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/quantize"
)

// Name is the registry name of the backend.
const Name = "kmeans"

const maxDimension = 400

// Backend runs seeded RGB k-means over a bounded thumbnail.
type Backend struct {
	kmeans *quantize.KMeans
}

// New creates the backend.
func New() *Backend {
	return &Backend{kmeans: quantize.NewKMeans(quantize.SpaceRGB)}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Description implements backend.Describer.
func (b *Backend) Description() string {
	return "RGB k-means clustering"
}

// Generate implements backend.Backend.
func (b *Backend) Generate(_ context.Context, src backend.Source) ([]colour.Color, error) {
	img, err := src.Decode()
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, maxDimension, maxDimension, imaging.Box)
	clusters, err := b.kmeans.Quantize(thumb, backend.MaxColors, quantize.ContentSeed(img))
	if err != nil {
		return nil, fmt.Errorf("failed to quantize image: %w", err)
	}

	colors := quantize.Colors(clusters)
	quantize.SortByLuminance(colors)
	return colors, nil
}
