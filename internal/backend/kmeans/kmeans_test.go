package kmeans

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
)

// TestGenerate tests RGB k-means on a smooth gradient.
func TestGenerate(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8(255 - x*2), A: 255})
		}
	}

	got, err := New().Generate(context.Background(), backend.Source{Image: img})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != backend.MaxColors {
		t.Fatalf("got %d colours, want %d", len(got), backend.MaxColors)
	}
	for i := 1; i < len(got); i++ {
		if colour.Luminance(got[i-1]) > colour.Luminance(got[i]) {
			t.Fatalf("colours not sorted: %v", got)
		}
	}
}
