package registry

import (
	"testing"

	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefault()
	for name, want := range map[string]world.BlockType{
		"air":   world.BlockTypeAir,
		"grass": world.BlockTypeGrass,
		"water": world.BlockTypeWater,
		"sand":  world.BlockTypeSand,
	} {
		got, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	def, ok := r.Get(world.BlockTypeWater)
	require.True(t, ok)
	assert.True(t, def.IsLiquid)

	assert.Equal(t, "grass_top.png", r.TextureFor(world.BlockTypeGrass, world.FaceTop))
	assert.Equal(t, "grass_side.png", r.TextureFor(world.BlockTypeGrass, world.FaceNorth))
	assert.Equal(t, "dirt.png", r.TextureFor(world.BlockTypeGrass, world.FaceBottom))

	i, ok := r.TextureIndex("grass_top.png")
	require.True(t, ok)
	assert.Equal(t, "grass_top.png", r.TextureNames()[i])
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&BlockDefinition{ID: 9, Name: "glow"}))
	assert.ErrorIs(t, r.Register(&BlockDefinition{ID: 9, Name: "other"}), ErrDuplicateBlock)
	assert.ErrorIs(t, r.Register(&BlockDefinition{ID: 10, Name: "glow"}), ErrDuplicateBlock)
}

func TestUnknownBlocks(t *testing.T) {
	r := NewDefault()
	_, err := r.Resolve("lava")
	assert.ErrorIs(t, err, ErrUnknownBlock)
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, r.Color(200))
	assert.Empty(t, r.TextureFor(200, world.FaceTop))
}
