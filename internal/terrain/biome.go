package terrain

import (
	"errors"
	"fmt"

	"voxelstream/internal/registry"
	"voxelstream/internal/world"
)

// Biome describes how one terrain type shapes the surface and which blocks
// make up its columns. Catalog order is significant: blending interpolates
// between neighbouring entries.
type Biome struct {
	ID              int     `yaml:"id"`
	Name            string  `yaml:"name"`
	BaseHeight      float64 `yaml:"base_height"`
	HeightVariation float64 `yaml:"height_variation"`
	Octaves         int     `yaml:"octaves"`
	Persistence     float64 `yaml:"persistence"`
	Lacunarity      float64 `yaml:"lacunarity"`
	Scale           float64 `yaml:"scale"`
	// Flat biomes always sit exactly at BaseHeight.
	Flat bool `yaml:"flat"`

	TopBlock    string `yaml:"top_block"`
	FillerBlock string `yaml:"filler_block"`
	FillerDepth int    `yaml:"filler_depth"`
	DeepBlock   string `yaml:"deep_block"`
	SnowBlock   string `yaml:"snow_block"`
	ShoreBlock  string `yaml:"shore_block"`
}

var ErrInvalidBiome = errors.New("invalid biome")

// Validate checks the numeric parameters of the descriptor.
func (b Biome) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: id %d has no name", ErrInvalidBiome, b.ID)
	}
	if b.Flat {
		return nil
	}
	switch {
	case b.Octaves <= 0:
		return fmt.Errorf("%w: %s: octaves must be positive", ErrInvalidBiome, b.Name)
	case b.Scale <= 0:
		return fmt.Errorf("%w: %s: scale must be positive", ErrInvalidBiome, b.Name)
	case b.Persistence <= 0 || b.Lacunarity <= 0:
		return fmt.Errorf("%w: %s: persistence and lacunarity must be positive", ErrInvalidBiome, b.Name)
	}
	return nil
}

const (
	BiomeLowland   = 0
	BiomeMountains = 1
)

// DefaultBiomes returns the built-in catalog: dead-flat lowland followed by
// mountains.
func DefaultBiomes() []Biome {
	return []Biome{
		{
			ID:          BiomeLowland,
			Name:        "lowland",
			BaseHeight:  64,
			Flat:        true,
			TopBlock:    "grass",
			FillerBlock: "dirt",
			FillerDepth: 3,
			DeepBlock:   "stone",
			ShoreBlock:  "sand",
		},
		{
			ID:              BiomeMountains,
			Name:            "mountains",
			BaseHeight:      72,
			HeightVariation: 56,
			Octaves:         5,
			Persistence:     0.5,
			Lacunarity:      2.0,
			Scale:           180,
			TopBlock:        "grass",
			FillerBlock:     "dirt",
			FillerDepth:     3,
			DeepBlock:       "stone",
			SnowBlock:       "snow",
			ShoreBlock:      "sand",
		},
	}
}

// columnRule is a biome's depth rule with block names resolved.
type columnRule struct {
	top, filler, deep, snow, shore world.BlockType
	fillerDepth                    int
}

// BiomeModel computes per-biome surface heights and column blocks.
type BiomeModel struct {
	biomes   []Biome
	fields   []*NoiseField
	rules    []columnRule
	seaLevel int
	snowLine int
}

// NewBiomeModel resolves every biome's block names through reg. Each biome
// samples its own noise field derived from seed.
func NewBiomeModel(seed int64, biomes []Biome, reg *registry.Registry, seaLevel, snowLine int) (*BiomeModel, error) {
	if len(biomes) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", ErrInvalidBiome)
	}
	m := &BiomeModel{
		biomes:   make([]Biome, len(biomes)),
		fields:   make([]*NoiseField, len(biomes)),
		rules:    make([]columnRule, len(biomes)),
		seaLevel: seaLevel,
		snowLine: snowLine,
	}
	copy(m.biomes, biomes)
	for i, b := range biomes {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		rule, err := resolveRule(b, reg)
		if err != nil {
			return nil, fmt.Errorf("biome %s: %w", b.Name, err)
		}
		m.rules[i] = rule
		m.fields[i] = NewNoiseField(seed + int64(i+1)*7919)
	}
	return m, nil
}

func resolveRule(b Biome, reg *registry.Registry) (columnRule, error) {
	resolve := func(name string, required bool) (world.BlockType, error) {
		if name == "" {
			if required {
				return world.BlockTypeAir, fmt.Errorf("%w: missing required block", ErrInvalidBiome)
			}
			return world.BlockTypeAir, nil
		}
		return reg.Resolve(name)
	}
	var (
		r   = columnRule{fillerDepth: b.FillerDepth}
		err error
	)
	if r.top, err = resolve(b.TopBlock, true); err != nil {
		return r, err
	}
	if r.filler, err = resolve(b.FillerBlock, false); err != nil {
		return r, err
	}
	if r.deep, err = resolve(b.DeepBlock, true); err != nil {
		return r, err
	}
	if r.snow, err = resolve(b.SnowBlock, false); err != nil {
		return r, err
	}
	if r.shore, err = resolve(b.ShoreBlock, false); err != nil {
		return r, err
	}
	if r.filler == world.BlockTypeAir {
		r.fillerDepth = 0
	}
	return r, nil
}

// Len returns the catalog size.
func (m *BiomeModel) Len() int { return len(m.biomes) }

// Biome returns catalog entry i.
func (m *BiomeModel) Biome(i int) Biome { return m.biomes[i] }

// SeaLevel returns the water fill height.
func (m *BiomeModel) SeaLevel() int { return m.seaLevel }

// Height returns biome i's surface height at world (x, z).
func (m *BiomeModel) Height(i int, x, z float64) float64 {
	b := &m.biomes[i]
	if b.Flat {
		return b.BaseHeight
	}
	n := m.fields[i].Fractal(x/b.Scale, z/b.Scale, b.Octaves, b.Persistence, b.Lacunarity)
	return b.BaseHeight + n*b.HeightVariation
}

// BlockAt returns biome i's block for the cell depth cells below the column
// surface, where surfaceY is the y of the topmost solid cell.
func (m *BiomeModel) BlockAt(i, depth, surfaceY int) world.BlockType {
	r := &m.rules[i]
	snowy := r.snow != world.BlockTypeAir && surfaceY >= m.snowLine
	switch {
	case depth == 0:
		if snowy {
			return r.snow
		}
		if r.shore != world.BlockTypeAir && surfaceY >= m.seaLevel-1 && surfaceY <= m.seaLevel+1 {
			return r.shore
		}
		return r.top
	case depth <= r.fillerDepth:
		if snowy && r.filler == world.BlockTypeAir {
			return world.BlockTypeDirt
		}
		return r.filler
	default:
		return r.deep
	}
}
