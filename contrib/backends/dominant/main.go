// dominant - Most common colours backend for cwal (json-stdio protocol)
//
// Buckets every pixel to 4 bits per channel and returns the averages of the
// most populated buckets. A json-stdio backend is just a program: it reads
// one request from stdin and writes the colours to stdout.
//
// Build:
//
//	go build -o ~/.config/cwal/backends/dominant ./contrib/backends/dominant
//
// Usage:
//
//	cwal --img wall.jpg --backend dominant
//
// Author: cwal Contributors
// License: MIT
package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"slices"

	_ "golang.org/x/image/webp"

	"github.com/jmylchreest/cwal/pkg/backend"
)

// DominantBackend implements backend.Quantizer.
type DominantBackend struct{}

type bucket struct {
	r, g, b, n int
}

// Generate returns the colours of the most populated buckets, most common first.
func (DominantBackend) Generate(_ context.Context, req backend.Request) ([]backend.RGB, error) {
	f, err := os.Open(req.ImagePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buckets [4096]bucket
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			r, g, b = r>>8, g>>8, b>>8
			bk := &buckets[(r>>4)<<8|(g>>4)<<4|b>>4]
			bk.r += int(r)
			bk.g += int(g)
			bk.b += int(b)
			bk.n++
		}
	}

	used := slices.DeleteFunc(buckets[:], func(b bucket) bool { return b.n == 0 })
	slices.SortStableFunc(used, func(a, b bucket) int { return b.n - a.n })

	colors := make([]backend.RGB, 0, req.MaxColors)
	for _, bk := range used {
		if len(colors) == req.MaxColors {
			break
		}
		colors = append(colors, backend.RGB{
			// #nosec G115 -- channel averages are within 0-255
			R: uint8(bk.r / bk.n),
			// #nosec G115 -- channel averages are within 0-255
			G: uint8(bk.g / bk.n),
			// #nosec G115 -- channel averages are within 0-255
			B: uint8(bk.b / bk.n),
		})
	}
	return colors, nil
}

// Info returns backend metadata.
func (DominantBackend) Info() backend.Info {
	return backend.Info{
		Name:        "dominant",
		Version:     "0.1.0",
		Description: "Most common colours, bucketed at 4 bits per channel",
	}
}

func main() {
	backend.ServeJSON(DominantBackend{})
}
