package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0

	// 2D gradient noise peaks near ±1/√2; stretch it to fill [-1,1].
	perlinStretch = math.Sqrt2
)

// NoiseField is a seeded 2D coherent noise sampler. Sample is a pure function
// of (x, z) and safe for concurrent use once constructed.
type NoiseField struct {
	seed int64
	p    *perlin.Perlin
}

// NewNoiseField builds a single-octave Perlin field; fractal sums are layered
// on top by the callers that need them.
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{
		seed: seed,
		p:    perlin.NewPerlin(perlinAlpha, perlinBeta, 1, seed),
	}
}

// Seed returns the seed the field was built from.
func (n *NoiseField) Seed() int64 { return n.seed }

// Sample returns the noise value at (x, z) in [-1, 1].
func (n *NoiseField) Sample(x, z float64) float64 {
	return clamp(n.p.Noise2D(x, z)*perlinStretch, -1, 1)
}

// Fractal sums octaves of the field. Amplitude starts at 1 and is multiplied
// by persistence each octave; frequency is multiplied by lacunarity.
func (n *NoiseField) Fractal(x, z float64, octaves int, persistence, lacunarity float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	for range octaves {
		sum += n.Sample(x*frequency, z*frequency) * amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	return sum
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
