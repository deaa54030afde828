// Package quantize reduces an image to a handful of representative colours.
package quantize

import (
	"cmp"
	"fmt"
	"image"
	"math"
	"math/rand"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/cwal/internal/colour"
)

// Space is the colour space clustering runs in.
type Space int

const (
	// SpaceRGB clusters on raw sRGB channels.
	SpaceRGB Space = iota
	// SpaceLab clusters in CIE L*a*b*, which groups perceptually similar colours.
	SpaceLab
)

// Cluster is a centroid colour and the share of sampled pixels assigned to it.
type Cluster struct {
	Color  colour.Color
	Weight float64
}

// KMeans clusters image pixels with k-means++ seeding.
type KMeans struct {
	Space         Space
	MaxIterations int
	MaxSamples    int
	// Convergence is the mean centroid movement, in Space units, below which iteration stops.
	Convergence float64
}

// NewKMeans returns a KMeans with defaults suited to space.
func NewKMeans(space Space) *KMeans {
	k := &KMeans{
		Space:         space,
		MaxIterations: 20,
		MaxSamples:    2000,
		Convergence:   2.0,
	}
	if space == SpaceLab {
		k.Convergence = 0.005
	}
	return k
}

// point is a pixel in the clustering space.
type point [3]float64

func (p point) distance(o point) float64 {
	d0, d1, d2 := p[0]-o[0], p[1]-o[1], p[2]-o[2]
	return math.Sqrt(d0*d0 + d1*d1 + d2*d2)
}

// Quantize returns up to count clusters. The same image and seed always give
// the same result. When the image has count or fewer distinct sampled colours
// those colours are returned as-is.
func (k *KMeans) Quantize(img image.Image, count int, seed int64) ([]Cluster, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 || count > 256 {
		return nil, fmt.Errorf("colour count must be between 1 and 256, got %d", count)
	}

	pixels := samplePixels(img, k.MaxSamples)
	if len(pixels) == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	counts := make(map[colour.Color]int)
	unique := make([]colour.Color, 0, count+1)
	for _, p := range pixels {
		if _, ok := counts[p]; !ok {
			unique = append(unique, p)
		}
		counts[p]++
	}
	if len(unique) <= count {
		clusters := make([]Cluster, len(unique))
		for i, c := range unique {
			clusters[i] = Cluster{Color: c, Weight: float64(counts[c]) / float64(len(pixels))}
		}
		return clusters, nil
	}

	points := make([]point, len(pixels))
	for i, p := range pixels {
		points[i] = k.toPoint(p)
	}

	// #nosec G404 -- clustering only needs a reproducible sequence
	rng := rand.New(rand.NewSource(seed))
	centroids, weights := k.cluster(points, count, rng)

	clusters := make([]Cluster, len(centroids))
	for i, c := range centroids {
		clusters[i] = Cluster{Color: k.fromPoint(c), Weight: weights[i]}
	}
	return clusters, nil
}

func (k *KMeans) toPoint(c colour.Color) point {
	if k.Space == SpaceLab {
		l, a, b := colorful.Color{
			R: float64(c.R) / 255.0,
			G: float64(c.G) / 255.0,
			B: float64(c.B) / 255.0,
		}.Lab()
		return point{l, a, b}
	}
	return point{float64(c.R), float64(c.G), float64(c.B)}
}

func (k *KMeans) fromPoint(p point) colour.Color {
	if k.Space == SpaceLab {
		r, g, b := colorful.Lab(p[0], p[1], p[2]).Clamped().RGB255()
		return colour.Color{R: r, G: g, B: b}
	}
	return colour.Color{R: colour.ClampByte(p[0]), G: colour.ClampByte(p[1]), B: colour.ClampByte(p[2])}
}

// samplePixels returns every pixel of small images and a grid sample of large ones.
func samplePixels(img image.Image, maxSamples int) []colour.Color {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()

	step := 1
	if total > maxSamples {
		step = max(int(math.Sqrt(float64(total)/float64(maxSamples))), 1)
	}

	pixels := make([]colour.Color, 0, min(total, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			pixels = append(pixels, colour.FromColor(img.At(x, y)))
			if len(pixels) >= maxSamples {
				return pixels
			}
		}
	}
	return pixels
}

func (k *KMeans) cluster(points []point, count int, rng *rand.Rand) ([]point, []float64) {
	centroids := seedCentroids(points, count, rng)
	assignments := make([]int, len(points))

	for range k.MaxIterations {
		changed := 0
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Fewer than 1% of points moved.
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := recalculate(points, assignments, count, rng)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next

		if movement/float64(count) < k.Convergence {
			break
		}
	}

	weights := make([]float64, count)
	for _, a := range assignments {
		weights[a]++
	}
	for i := range weights {
		weights[i] /= float64(len(points))
	}

	return centroids, weights
}

// seedCentroids picks initial centroids with k-means++.
func seedCentroids(points []point, count int, rng *rand.Rand) []point {
	centroids := make([]point, 0, count)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < count {
		total := 0.0
		for i, p := range points {
			d := p.distance(centroids[nearestCentroid(p, centroids)])
			distances[i] = d * d
			total += distances[i]
		}

		if total == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point{last[0] + 0.1, last[1] + 0.1, last[2] + 0.1})
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

func nearestCentroid(p point, centroids []point) int {
	best, nearest := math.MaxFloat64, 0
	for i, c := range centroids {
		if d := p.distance(c); d < best {
			best, nearest = d, i
		}
	}
	return nearest
}

func recalculate(points []point, assignments []int, count int, rng *rand.Rand) []point {
	sums := make([]point, count)
	counts := make([]int, count)
	for i, p := range points {
		c := assignments[i]
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		sums[c][2] += p[2]
		counts[c]++
	}

	centroids := make([]point, count)
	for i := range count {
		if counts[i] == 0 {
			// Empty cluster, reseed from a random point.
			centroids[i] = points[rng.Intn(len(points))]
			continue
		}
		n := float64(counts[i])
		centroids[i] = point{sums[i][0] / n, sums[i][1] / n, sums[i][2] / n}
	}
	return centroids
}

// Colors returns the cluster colours.
func Colors(clusters []Cluster) []colour.Color {
	out := make([]colour.Color, len(clusters))
	for i, c := range clusters {
		out[i] = c.Color
	}
	return out
}

// SortByLuminance orders colours from darkest to lightest.
func SortByLuminance(colors []colour.Color) {
	slices.SortStableFunc(colors, func(a, b colour.Color) int {
		return cmp.Compare(colour.Luminance(a), colour.Luminance(b))
	})
}
