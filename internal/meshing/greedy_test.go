package meshing

import (
	"testing"

	"voxelstream/internal/registry"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMesher() *Mesher {
	return NewMesher(registry.NewDefault())
}

func set(t testing.TB, c *world.Chunk, x, y, z int, b world.BlockType) {
	t.Helper()
	require.NoError(t, c.Set(x, y, z, b))
}

func TestEmptyChunkHasNoGeometry(t *testing.T) {
	m := newTestMesher()
	for _, c := range []*world.Chunk{world.NewChunk(world.ChunkCoord{}), world.NewFilledChunk(world.ChunkCoord{})} {
		mesh := m.Build(c)
		assert.True(t, mesh.Empty())
		assert.Zero(t, mesh.VertexCount())
		assert.Empty(t, mesh.Indices)
	}
}

func TestSingleBlockMesh(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{X: 1, Z: -1})
	set(t, c, 10, 100, 10, world.BlockTypeGrass)

	mesh := newTestMesher().Build(c)
	assert.Equal(t, 24, mesh.VertexCount())
	assert.Len(t, mesh.Indices, 36)
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Equal(t, world.ChunkCoord{X: 1, Z: -1}, mesh.Coord)

	// World-space placement includes the chunk origin.
	for i := 0; i < mesh.VertexCount(); i++ {
		x, y, z := mesh.Positions[i*3], mesh.Positions[i*3+1], mesh.Positions[i*3+2]
		assert.Contains(t, []float32{42, 43}, x)
		assert.Contains(t, []float32{100, 101}, y)
		assert.Contains(t, []float32{-22, -21}, z)
	}

	// Nothing occludes a lone block, so every vertex keeps the base color.
	grass := registry.NewDefault().Color(world.BlockTypeGrass)
	for i := 0; i < mesh.VertexCount(); i++ {
		assert.InDelta(t, grass.X(), mesh.Colors[i*3], 1e-6)
	}
}

func TestTwoBlocksSeparated(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	set(t, c, 0, 0, 0, world.BlockTypeGrass)
	set(t, c, 2, 0, 0, world.BlockTypeGrass)
	assert.Equal(t, 48, newTestMesher().Build(c).VertexCount())
}

func TestTwoBlocksTouchingMerge(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	set(t, c, 0, 0, 0, world.BlockTypeGrass)
	set(t, c, 1, 0, 0, world.BlockTypeGrass)
	// The union is a 2x1x1 cuboid: six quads.
	assert.Equal(t, 24, newTestMesher().Build(c).VertexCount())
}

func TestDifferentTypesDoNotMerge(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	set(t, c, 0, 0, 0, world.BlockTypeGrass)
	set(t, c, 1, 0, 0, world.BlockTypeStone)
	// Four side faces each split in two, plus two end caps.
	assert.Equal(t, (4*2+2)*4, newTestMesher().Build(c).VertexCount())
}

func TestFullLayerIsSixQuads(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkDepth; z++ {
			set(t, c, x, 7, z, world.BlockTypeStone)
		}
	}
	mesh := newTestMesher().Build(c)
	assert.Equal(t, 6*4, mesh.VertexCount())
	// X faces come first: a 1x32 strip, then the 32x32 bottom and top.
	assert.Equal(t, []float32{1, 32}, quadUVExtent(mesh, 0))
	assert.Equal(t, []float32{32, 32}, quadUVExtent(mesh, 2))
}

// quadUVExtent returns the UV of the third corner of quad q, which carries the
// quad's size.
func quadUVExtent(m *MeshBuffer, q int) []float32 {
	i := (q*4 + 2) * 2
	return []float32{m.UVs[i], m.UVs[i+1]}
}

func linkedPair(t *testing.T) (*world.ChunkStore, *world.Chunk, *world.Chunk) {
	t.Helper()
	store := world.NewChunkStore()
	a := world.NewFilledChunk(world.ChunkCoord{})
	b := world.NewFilledChunk(world.ChunkCoord{X: 1})
	require.True(t, store.AddChunk(a))
	require.True(t, store.AddChunk(b))
	store.Link(a.Coord())
	return store, a, b
}

func TestCrossChunkFaceCulling(t *testing.T) {
	_, a, b := linkedPair(t)
	set(t, a, world.ChunkWidth-1, 0, 0, world.BlockTypeGrass)
	set(t, b, 0, 0, 0, world.BlockTypeGrass)

	m := newTestMesher()
	// The shared face is hidden on both sides.
	assert.Equal(t, 5*4, m.Build(a).VertexCount())
	assert.Equal(t, 5*4, m.Build(b).VertexCount())
}

func TestSeamFaceEmittedOnce(t *testing.T) {
	m := newTestMesher()

	_, a, b := linkedPair(t)
	set(t, a, world.ChunkWidth-1, 3, 3, world.BlockTypeStone)
	assert.Equal(t, 24, m.Build(a).VertexCount()+m.Build(b).VertexCount())

	_, a, b = linkedPair(t)
	set(t, b, 0, 3, 3, world.BlockTypeStone)
	assert.Equal(t, 0, m.Build(a).VertexCount())
	assert.Equal(t, 24, m.Build(b).VertexCount())
}

func TestSolidChunkSurroundedBySolidNeighbors(t *testing.T) {
	store := world.NewChunkStore()
	solid := func(coord world.ChunkCoord) *world.Chunk {
		v := make([]world.BlockType, world.ChunkVolume)
		for i := range v {
			v[i] = world.BlockTypeStone
		}
		c := world.NewChunk(coord)
		require.NoError(t, c.InstallVoxels(v))
		require.True(t, store.AddChunk(c))
		return c
	}
	center := solid(world.ChunkCoord{})
	for _, d := range world.Directions {
		solid(center.Coord().Neighbor(d))
	}
	store.Link(center.Coord())

	mesh := newTestMesher().Build(center)
	// No horizontal face survives; only the world's top and bottom caps.
	assert.Equal(t, 2*4, mesh.VertexCount())
	for i := 0; i < mesh.VertexCount(); i++ {
		assert.Zero(t, mesh.Normals[i*3])
		assert.Zero(t, mesh.Normals[i*3+2])
	}
}

func TestWindingMatchesNormals(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkDepth; z++ {
			for y := 0; y < 24; y++ {
				if (x*7+y*13+z*5)%11 < 4 {
					set(t, c, x, y, z, world.BlockType(1+(x+z)%3))
				}
			}
		}
	}
	mesh := newTestMesher().Build(c)
	require.False(t, mesh.Empty())

	pos := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{mesh.Positions[i*3], mesh.Positions[i*3+1], mesh.Positions[i*3+2]}
	}
	for k := 0; k < len(mesh.Indices); k += 3 {
		i0, i1, i2 := mesh.Indices[k], mesh.Indices[k+1], mesh.Indices[k+2]
		n := mgl32.Vec3{mesh.Normals[i0*3], mesh.Normals[i0*3+1], mesh.Normals[i0*3+2]}
		face := pos(i1).Sub(pos(i0)).Cross(pos(i2).Sub(pos(i0)))
		require.Positive(t, face.Dot(n), "triangle %d winds against its normal", k/3)
	}
}

func TestOccludedCornersDarken(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	set(t, c, 10, 10, 10, world.BlockTypeStone)
	// A block diagonally above one edge of the top face.
	set(t, c, 11, 11, 10, world.BlockTypeStone)

	mesh := newTestMesher().Build(c)
	stone := registry.NewDefault().Color(world.BlockTypeStone)
	darkened := 0
	for i := 0; i < mesh.VertexCount(); i++ {
		if mesh.Normals[i*3+1] == 1 && mesh.Positions[i*3+1] == 11 && mesh.Positions[i*3] == 11 {
			assert.InDelta(t, stone.X()*aoLevels[1], mesh.Colors[i*3], 1e-6)
			darkened++
		}
	}
	assert.Equal(t, 2, darkened, "both corners on the occluded edge of the lower block's top face")
}

func TestOccluderSplitsMergedQuad(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkDepth; z++ {
			set(t, c, x, 0, z, world.BlockTypeStone)
		}
	}
	set(t, c, 10, 1, 10, world.BlockTypeStone)

	mesh := newTestMesher().Build(c)
	stone := registry.NewDefault().Color(world.BlockTypeStone)
	footprint := map[[2]float32]bool{}
	for i := 0; i < mesh.VertexCount(); i++ {
		if mesh.Normals[i*3+1] != 1 || mesh.Positions[i*3+1] != 1 {
			continue
		}
		x, z := mesh.Positions[i*3], mesh.Positions[i*3+2]
		switch {
		case (x == 10 || x == 11) && (z == 10 || z == 11):
			assert.InDelta(t, stone.X()*aoLevels[1], mesh.Colors[i*3], 1e-6, "floor vertex (%v,%v)", x, z)
			footprint[[2]float32{x, z}] = true
		case x < 8 || x > 13 || z < 8 || z > 13:
			assert.InDelta(t, stone.X(), mesh.Colors[i*3], 1e-6, "floor vertex (%v,%v)", x, z)
		}
	}
	assert.Len(t, footprint, 4, "the floor is split at every corner of the block standing on it")
}

func BenchmarkBuildFullSurface(b *testing.B) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	for x := 0; x < world.ChunkWidth; x++ {
		for z := 0; z < world.ChunkDepth; z++ {
			for y := 0; y < 64+(x*z)%9; y++ {
				set(b, c, x, y, z, world.BlockTypeStone)
			}
		}
	}
	m := newTestMesher()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Build(c)
	}
}
