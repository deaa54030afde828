package mediancut

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
)

func gradient() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8(255 - x*2), A: 255})
		}
	}
	return img
}

func assertSorted(t *testing.T, colors []colour.Color) {
	t.Helper()
	for i := 1; i < len(colors); i++ {
		if colour.Luminance(colors[i-1]) > colour.Luminance(colors[i]) {
			t.Errorf("colours not sorted: %v", colors)
			return
		}
	}
}

// TestGenerate tests median cut on a smooth gradient.
func TestGenerate(t *testing.T) {
	got, err := New().Generate(context.Background(), backend.Source{Image: gradient()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) == 0 || len(got) > backend.MaxColors {
		t.Fatalf("got %d colours, want 1..%d", len(got), backend.MaxColors)
	}
	assertSorted(t, got)

	seen := map[colour.Color]bool{}
	for _, c := range got {
		if seen[c] {
			t.Errorf("duplicate colour %v", c)
		}
		seen[c] = true
	}
}
