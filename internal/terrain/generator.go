package terrain

import (
	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
	"voxelstream/internal/world"
)

// Options configures a Generator.
type Options struct {
	Seed       int64
	Biomes     []Biome // nil selects DefaultBiomes
	BiomeScale float64
	BiomeBias  float64
	SeaLevel   int
	SnowLine   int
}

// DefaultOptions returns the built-in generation settings for seed.
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:       seed,
		Biomes:     DefaultBiomes(),
		BiomeScale: DefaultBiomeScale,
		BiomeBias:  DefaultBiomeBias,
		SeaLevel:   62,
		SnowLine:   118,
	}
}

// Generator fills chunk voxel buffers from biome-blended noise. It holds no
// mutable state and may be shared by all workers.
type Generator struct {
	seed     int64
	blender  *BiomeBlender
	model    *BiomeModel
	water    world.BlockType
	seaLevel int
}

// NewGenerator resolves the biome rules and the liquid block through reg.
func NewGenerator(opts Options, reg *registry.Registry) (*Generator, error) {
	biomes := opts.Biomes
	if biomes == nil {
		biomes = DefaultBiomes()
	}
	model, err := NewBiomeModel(opts.Seed, biomes, reg, opts.SeaLevel, opts.SnowLine)
	if err != nil {
		return nil, err
	}
	water, err := reg.Resolve("water")
	if err != nil {
		return nil, err
	}
	seaLevel := min(opts.SeaLevel, world.ChunkHeight-1)
	return &Generator{
		seed:     opts.Seed,
		blender:  NewBiomeBlender(model, opts.Seed, opts.BiomeScale, opts.BiomeBias),
		model:    model,
		water:    water,
		seaLevel: seaLevel,
	}, nil
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

// Blender exposes the biome blender for biome queries outside generation.
func (g *Generator) Blender() *BiomeBlender { return g.blender }

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	h, _ := g.blender.SurfaceHeight(float64(worldX), float64(worldZ))
	return h
}

// Generate builds the voxel buffer for coord. Terrain is filled first, then
// every still-empty cell at or below sea level becomes water; the order
// matters so water never replaces terrain.
func (g *Generator) Generate(coord world.ChunkCoord) []world.BlockType {
	defer profiling.Track("terrain.Generate")()
	voxels := make([]world.BlockType, world.ChunkVolume)
	ox, oz := coord.Origin()

	for lz := range world.ChunkDepth {
		for lx := range world.ChunkWidth {
			height, sample := g.blender.SurfaceHeight(float64(ox+lx), float64(oz+lz))
			biome := sample.Dominant()
			surfaceY := height - 1
			for y := 0; y < height; y++ {
				voxels[world.Index(lx, y, lz)] = g.model.BlockAt(biome, surfaceY-y, surfaceY)
			}
		}
	}

	for lz := range world.ChunkDepth {
		for lx := range world.ChunkWidth {
			for y := g.seaLevel; y >= 0; y-- {
				i := world.Index(lx, y, lz)
				if voxels[i] == world.BlockTypeAir {
					voxels[i] = g.water
				}
			}
		}
	}
	return voxels
}

// PopulateChunk generates coord's terrain and installs it into c.
func (g *Generator) PopulateChunk(c *world.Chunk) error {
	return c.InstallVoxels(g.Generate(c.Coord()))
}
