package quantize

import (
	"crypto/sha256"
	"encoding/binary"
	"image"
)

// ContentSeed derives a clustering seed from image dimensions and a grid of
// pixels, so the same picture gives the same palette wherever it lives.
func ContentSeed(img image.Image) int64 {
	bounds := img.Bounds()
	hasher := sha256.New()

	dims := make([]byte, 8)
	binary.LittleEndian.PutUint32(dims[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are non-negative
	binary.LittleEndian.PutUint32(dims[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are non-negative
	hasher.Write(dims)

	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	px := make([]byte, 4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			px[0], px[1], px[2], px[3] = byte(r>>8), byte(g>>8), byte(b>>8), byte(a>>8)
			hasher.Write(px)
		}
	}

	sum := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 -- any bit pattern is a valid seed
}
