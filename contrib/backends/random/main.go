// random - Random colour backend for cwal (go-plugin protocol)
//
// Returns random base colours seeded from the image path, so the same
// wallpaper always gives the same palette. Mostly useful as a starting point
// for go-plugin backends and for exercising the fallback chain.
//
// Build:
//
//	go build -o ~/.config/cwal/backends/random ./contrib/backends/random
//
// Usage:
//
//	cwal --img wall.jpg --backend random
//
// Author: cwal Contributors
// License: MIT
package main

import (
	"context"
	"hash/fnv"
	mathrand "math/rand/v2"

	"github.com/jmylchreest/cwal/pkg/backend"
)

// RandomBackend implements backend.Quantizer.
type RandomBackend struct{}

// Generate returns req.MaxColors random colours.
func (RandomBackend) Generate(_ context.Context, req backend.Request) ([]backend.RGB, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(req.ImagePath))

	// #nosec G404 -- deterministic colours, not cryptography
	rng := mathrand.New(mathrand.NewPCG(h.Sum64(), 0x63776c))

	colors := make([]backend.RGB, req.MaxColors)
	for i := range colors {
		colors[i] = backend.RGB{
			// #nosec G115 -- rng.IntN(256) returns 0-255, safe for uint8
			R: uint8(rng.IntN(256)),
			// #nosec G115 -- rng.IntN(256) returns 0-255, safe for uint8
			G: uint8(rng.IntN(256)),
			// #nosec G115 -- rng.IntN(256) returns 0-255, safe for uint8
			B: uint8(rng.IntN(256)),
		}
	}
	return colors, nil
}

// Info returns backend metadata.
func (RandomBackend) Info() backend.Info {
	return backend.Info{
		Name:        "random",
		Version:     "0.1.0",
		Description: "Random colours seeded from the image path",
	}
}

func main() {
	backend.Serve(RandomBackend{})
}
