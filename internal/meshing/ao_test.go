package meshing

import (
	"testing"

	"voxelstream/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOcclusionLevelsForEveryFaceAndCorner(t *testing.T) {
	const px, py, pz = 16, 100, 16
	want := []float32{1.0, 0.75, 0.5, 0.25}

	for f := world.BlockFace(0); f < world.NumFaces; f++ {
		for corner := 0; corner < 4; corner++ {
			offs, err := CornerOffsets(f, corner)
			require.NoError(t, err)
			for solid := 0; solid <= 3; solid++ {
				// Fresh chunk: the 5x5x5 neighborhood around the probe is clear.
				c := world.NewFilledChunk(world.ChunkCoord{})
				set(t, c, px, py, pz, world.BlockTypeStone)
				for _, o := range offs[:solid] {
					set(t, c, px+o[0], py+o[1], pz+o[2], world.BlockTypeStone)
				}
				got, err := Occlusion(c, px, py, pz, f, corner)
				require.NoError(t, err)
				assert.Equal(t, want[solid], got, "face %v corner %d with %d occluders", f, corner, solid)
			}
		}
	}
}

func TestCornerOffsetsLieInFrontOfFace(t *testing.T) {
	for f := world.BlockFace(0); f < world.NumFaces; f++ {
		n := f.Normal()
		axis := f.Axis()
		for corner := 0; corner < 4; corner++ {
			offs, err := CornerOffsets(f, corner)
			require.NoError(t, err)
			for _, o := range offs {
				assert.Equal(t, n[axis], o[axis], "face %v corner %d", f, corner)
			}
			// The diagonal combines both edge steps.
			for i := 0; i < 3; i++ {
				assert.Equal(t, offs[0][i]+offs[1][i]-n[i], offs[2][i])
			}
		}
	}
}

func TestOcclusionIgnoresNonAdjacentCells(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})
	set(t, c, 5, 5, 5, world.BlockTypeStone)
	// Two cells away along every axis: never consulted.
	for _, o := range [][3]int{{2, 1, 0}, {-2, 1, 2}, {0, 2, 0}, {2, 2, 2}} {
		set(t, c, 5+o[0], 5+o[1], 5+o[2], world.BlockTypeStone)
	}
	for corner := 0; corner < 4; corner++ {
		got, err := Occlusion(c, 5, 5, 5, world.FaceTop, corner)
		require.NoError(t, err)
		assert.Equal(t, float32(1), got)
	}
}

func TestOcclusionArgumentErrors(t *testing.T) {
	c := world.NewFilledChunk(world.ChunkCoord{})

	_, err := Occlusion(c, 1, 1, 1, world.BlockFace(9), 0)
	assert.ErrorIs(t, err, world.ErrInvalidFace)

	_, err = Occlusion(c, 1, 1, 1, world.FaceTop, 4)
	assert.ErrorIs(t, err, ErrInvalidCorner)
	_, err = Occlusion(c, 1, 1, 1, world.FaceTop, -1)
	assert.ErrorIs(t, err, ErrInvalidCorner)

	_, err = OcclusionByName(c, 1, 1, 1, "sideways", 0)
	assert.ErrorIs(t, err, world.ErrInvalidFace)

	got, err := OcclusionByName(c, 1, 1, 1, "north", 2)
	require.NoError(t, err)
	assert.Equal(t, float32(1), got)
}

func TestOcclusionAcrossChunkEdge(t *testing.T) {
	store := world.NewChunkStore()
	a := world.NewFilledChunk(world.ChunkCoord{})
	b := world.NewFilledChunk(world.ChunkCoord{X: -1})
	require.True(t, store.AddChunk(a))
	require.True(t, store.AddChunk(b))
	store.Link(a.Coord())

	set(t, a, 0, 10, 4, world.BlockTypeStone)
	set(t, b, world.ChunkWidth-1, 11, 4, world.BlockTypeStone)

	// Top face of a's edge voxel: the west edge neighbor above lives in b.
	offs, err := CornerOffsets(world.FaceTop, 0)
	require.NoError(t, err)
	require.Equal(t, [3]int{-1, 1, 0}, offs[1])

	got, err := Occlusion(a, 0, 10, 4, world.FaceTop, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(0.75), got)
}
