package terrain

import (
	"math"
	"sort"

	"voxelstream/internal/world"
)

const (
	// DefaultBiomeScale is the horizontal size of the biome-selector field.
	DefaultBiomeScale = 400.0
	// DefaultBiomeBias is subtracted from the selector to favor the first biome.
	DefaultBiomeBias = 0.15

	biomeEpsilon = 1e-6
)

// BiomeSample is the biome pair at one position and how far the position
// sits between them.
type BiomeSample struct {
	Primary   int
	Secondary int
	Blend     float64 // in [0,1)
}

// Dominant is the biome used for block selection: a hard switch at 0.5.
func (s BiomeSample) Dominant() int {
	if s.Blend < 0.5 {
		return s.Primary
	}
	return s.Secondary
}

// BiomeBlender picks biomes from a dedicated selector field and blends their
// surface heights.
type BiomeBlender struct {
	model    *BiomeModel
	selector *NoiseField
	scale    float64
	bias     float64
}

// NewBiomeBlender creates a blender. Non-positive scale selects the default.
func NewBiomeBlender(model *BiomeModel, seed int64, scale, bias float64) *BiomeBlender {
	if scale <= 0 {
		scale = DefaultBiomeScale
	}
	return &BiomeBlender{
		model:    model,
		selector: NewNoiseField(seed ^ 0x5DEECE66D),
		scale:    scale,
		bias:     bias,
	}
}

// Model returns the underlying biome model.
func (bb *BiomeBlender) Model() *BiomeModel { return bb.model }

// Sample returns the biome pair and blend factor at world (x, z).
func (bb *BiomeBlender) Sample(x, z float64) BiomeSample {
	n := bb.selector.Sample(x/bb.scale, z/bb.scale)
	n = clamp(n-bb.bias, -1, 1)
	norm := (n + 1) / 2

	count := bb.model.Len()
	idx := norm * (float64(count) - biomeEpsilon)
	primary := int(math.Floor(idx))
	if primary > count-1 {
		primary = count - 1
	}
	secondary := min(primary+1, count-1)
	return BiomeSample{
		Primary:   primary,
		Secondary: secondary,
		Blend:     idx - float64(primary),
	}
}

// SurfaceHeight returns the blended, floored and clamped surface height at
// world (x, z) together with the biome sample that produced it.
func (bb *BiomeBlender) SurfaceHeight(x, z float64) (int, BiomeSample) {
	s := bb.Sample(x, z)
	h := bb.model.Height(s.Primary, x, z)
	if s.Secondary != s.Primary {
		h = lerp(h, bb.model.Height(s.Secondary, x, z), s.Blend)
	}
	height := int(math.Floor(h))
	if height < 0 {
		height = 0
	}
	if height > world.ChunkHeight-1 {
		height = world.ChunkHeight - 1
	}
	return height, s
}

// Contributions returns each catalog biome's share at world (x, z) as whole
// percentages summing to exactly 100.
func (bb *BiomeBlender) Contributions(x, z float64) []int {
	s := bb.Sample(x, z)
	weights := make([]float64, bb.model.Len())
	weights[s.Primary] += 1 - s.Blend
	weights[s.Secondary] += s.Blend
	return largestRemainder(weights, 100)
}

// largestRemainder apportions total across weights (which sum to 1) so the
// integer parts sum to total exactly.
func largestRemainder(weights []float64, total int) []int {
	out := make([]int, len(weights))
	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, 0, len(weights))
	assigned := 0
	for i, w := range weights {
		exact := w * float64(total)
		whole := int(math.Floor(exact))
		out[i] = whole
		assigned += whole
		rems = append(rems, rem{i: i, frac: exact - float64(whole)})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; assigned < total && len(rems) > 0; k = (k + 1) % len(rems) {
		out[rems[k].i]++
		assigned++
	}
	// float rounding can push the floors one over
	for k := len(rems) - 1; assigned > total && k >= 0; k-- {
		if out[rems[k].i] > 0 {
			out[rems[k].i]--
			assigned--
		}
	}
	return out
}
