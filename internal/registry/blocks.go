package registry

import (
	"errors"
	"fmt"

	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// BlockDefinition defines the properties of a block type
type BlockDefinition struct {
	ID          world.BlockType
	Name        string
	TextureTop  string
	TextureSide string
	TextureBot  string
	Color       mgl32.Vec3
	IsLiquid    bool
}

var (
	ErrDuplicateBlock = errors.New("block already registered")
	ErrUnknownBlock   = errors.New("unknown block")
)

// fallbackColor marks unregistered block types in generated meshes.
var fallbackColor = mgl32.Vec3{1.0, 0.0, 1.0}

// Registry maps block-type integers to their definitions. A registry is
// scoped to one world session and handed to whatever needs it.
type Registry struct {
	blocks       map[world.BlockType]*BlockDefinition
	names        map[string]world.BlockType
	textureNames []string
	textureMap   map[string]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		blocks:     make(map[world.BlockType]*BlockDefinition),
		names:      make(map[string]world.BlockType),
		textureMap: make(map[string]int),
	}
}

// Register adds a definition. IDs and names must be unique.
func (r *Registry) Register(def *BlockDefinition) error {
	if _, exists := r.blocks[def.ID]; exists {
		return fmt.Errorf("%w: id %d", ErrDuplicateBlock, def.ID)
	}
	if _, exists := r.names[def.Name]; exists {
		return fmt.Errorf("%w: name %q", ErrDuplicateBlock, def.Name)
	}
	r.blocks[def.ID] = def
	r.names[def.Name] = def.ID

	r.registerTexture(def.TextureTop)
	r.registerTexture(def.TextureSide)
	r.registerTexture(def.TextureBot)
	return nil
}

func (r *Registry) registerTexture(name string) {
	if name == "" {
		return
	}
	if _, exists := r.textureMap[name]; !exists {
		r.textureMap[name] = len(r.textureNames)
		r.textureNames = append(r.textureNames, name)
	}
}

// Get returns the definition for id.
func (r *Registry) Get(id world.BlockType) (*BlockDefinition, bool) {
	def, ok := r.blocks[id]
	return def, ok
}

// Resolve returns the block type registered under name.
func (r *Registry) Resolve(name string) (world.BlockType, error) {
	id, ok := r.names[name]
	if !ok {
		return world.BlockTypeAir, fmt.Errorf("%w: %q", ErrUnknownBlock, name)
	}
	return id, nil
}

// Color returns the base vertex color of id.
func (r *Registry) Color(id world.BlockType) mgl32.Vec3 {
	if def, ok := r.blocks[id]; ok {
		return def.Color
	}
	return fallbackColor
}

// TextureFor returns the texture key for one face of a block.
func (r *Registry) TextureFor(id world.BlockType, face world.BlockFace) string {
	def, ok := r.blocks[id]
	if !ok {
		return ""
	}
	switch face {
	case world.FaceTop:
		return def.TextureTop
	case world.FaceBottom:
		return def.TextureBot
	default:
		return def.TextureSide
	}
}

// TextureIndex returns the atlas slot of a texture key.
func (r *Registry) TextureIndex(name string) (int, bool) {
	i, ok := r.textureMap[name]
	return i, ok
}

// TextureNames lists texture keys in registration order.
func (r *Registry) TextureNames() []string {
	out := make([]string, len(r.textureNames))
	copy(out, r.textureNames)
	return out
}

// NewDefault returns a registry holding the built-in terrain blocks.
func NewDefault() *Registry {
	r := New()
	for _, def := range []*BlockDefinition{
		{ID: world.BlockTypeAir, Name: "air"},
		{
			ID:          world.BlockTypeGrass,
			Name:        "grass",
			TextureTop:  "grass_top.png",
			TextureSide: "grass_side.png",
			TextureBot:  "dirt.png",
			Color:       mgl32.Vec3{0.36, 0.62, 0.25},
		},
		{
			ID:          world.BlockTypeDirt,
			Name:        "dirt",
			TextureTop:  "dirt.png",
			TextureSide: "dirt.png",
			TextureBot:  "dirt.png",
			Color:       mgl32.Vec3{0.53, 0.38, 0.25},
		},
		{
			ID:          world.BlockTypeStone,
			Name:        "stone",
			TextureTop:  "stone.png",
			TextureSide: "stone.png",
			TextureBot:  "stone.png",
			Color:       mgl32.Vec3{0.5, 0.5, 0.5},
		},
		{
			ID:          world.BlockTypeSnow,
			Name:        "snow",
			TextureTop:  "snow.png",
			TextureSide: "grass_side_snowed.png",
			TextureBot:  "dirt.png",
			Color:       mgl32.Vec3{0.95, 0.97, 1.0},
		},
		{
			ID:          world.BlockTypeWater,
			Name:        "water",
			TextureTop:  "water_still.png",
			TextureSide: "water_flow.png",
			TextureBot:  "water_still.png",
			Color:       mgl32.Vec3{0.2, 0.35, 0.8},
			IsLiquid:    true,
		},
		{
			ID:          world.BlockTypeSand,
			Name:        "sand",
			TextureTop:  "sand.png",
			TextureSide: "sand.png",
			TextureBot:  "sand.png",
			Color:       mgl32.Vec3{0.86, 0.82, 0.6},
		},
	} {
		// built-in IDs and names are unique
		_ = r.Register(def)
	}
	return r
}
