package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCoordAtFloorsNegatives(t *testing.T) {
	tests := []struct {
		x, z   int
		want   ChunkCoord
		lx, lz int
	}{
		{0, 0, ChunkCoord{0, 0}, 0, 0},
		{31, 31, ChunkCoord{0, 0}, 31, 31},
		{32, -1, ChunkCoord{1, -1}, 0, 31},
		{-32, -33, ChunkCoord{-1, -2}, 0, 31},
		{-1, 64, ChunkCoord{-1, 2}, 31, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChunkCoordAt(tt.x, tt.z), "(%d,%d)", tt.x, tt.z)
		lx, lz := LocalXZ(tt.x, tt.z)
		assert.Equal(t, [2]int{tt.lx, tt.lz}, [2]int{lx, lz}, "(%d,%d)", tt.x, tt.z)
	}
}

func TestDirections(t *testing.T) {
	c := ChunkCoord{X: 4, Z: -4}
	assert.Equal(t, ChunkCoord{X: 5, Z: -4}, c.Neighbor(East))
	assert.Equal(t, ChunkCoord{X: 3, Z: -4}, c.Neighbor(West))
	assert.Equal(t, ChunkCoord{X: 4, Z: -3}, c.Neighbor(South))
	assert.Equal(t, ChunkCoord{X: 4, Z: -5}, c.Neighbor(North))
	for _, d := range Directions {
		assert.Equal(t, c, c.Neighbor(d).Neighbor(d.Opposite()), d.String())
	}
}

func TestDiagonals(t *testing.T) {
	c := ChunkCoord{X: 4, Z: -4}
	assert.Equal(t, ChunkCoord{X: 5, Z: -3}, c.Diagonal(East, South))
	assert.Equal(t, c.Diagonal(East, South), c.Diagonal(South, East))
	assert.ElementsMatch(t, []ChunkCoord{
		{X: 5, Z: -3}, {X: 5, Z: -5}, {X: 3, Z: -3}, {X: 3, Z: -5},
	}, c.Diagonals())
	for _, d := range c.Diagonals() {
		assert.Equal(t, 1, d.Chebyshev(c))
		assert.Equal(t, 2, d.DistSq(c))
	}
}

func TestDistances(t *testing.T) {
	a := ChunkCoord{X: 1, Z: 1}
	b := ChunkCoord{X: -2, Z: 3}
	assert.Equal(t, 13, a.DistSq(b))
	assert.Equal(t, 3, a.Chebyshev(b))
	x, z := b.Origin()
	assert.Equal(t, [2]int{-64, 96}, [2]int{x, z})
}

func TestFaces(t *testing.T) {
	for f := BlockFace(0); f < NumFaces; f++ {
		parsed, err := ParseFace(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
		n := f.Normal()
		assert.Equal(t, f, FaceFor(f.Axis(), n[f.Axis()] > 0))
	}
	_, err := ParseFace("up")
	assert.ErrorIs(t, err, ErrInvalidFace)
	assert.False(t, BlockFace(6).Valid())
}

func TestVoxelCodec(t *testing.T) {
	v := make([]BlockType, ChunkVolume)
	for i := range v[:ChunkWidth*ChunkDepth*40] {
		v[i] = BlockTypeStone
	}
	v[Index(3, 41, 5)] = BlockTypeSnow

	data := EncodeVoxels(v)
	assert.Less(t, len(data), len(v)/10)

	out, err := DecodeVoxels(data)
	require.NoError(t, err)
	assert.Equal(t, v, out)

	_, err = DecodeVoxels([]byte("not zstd"))
	assert.Error(t, err)
	_, err = DecodeVoxels(EncodeVoxels(v[:100]))
	assert.ErrorIs(t, err, ErrBufferSize)
}
