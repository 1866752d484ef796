package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateMakesPlaceholder(t *testing.T) {
	store := NewChunkStore()
	c, created := store.GetOrCreate(ChunkCoord{X: 2, Z: 3})
	require.True(t, created)
	assert.False(t, c.HasVoxels())

	again, created := store.GetOrCreate(ChunkCoord{X: 2, Z: 3})
	assert.False(t, created)
	assert.Same(t, c, again)
	assert.Equal(t, 1, store.Len())
	assert.False(t, store.AddChunk(NewChunk(ChunkCoord{X: 2, Z: 3})))
}

func TestLinkIsBidirectionalAndSkipsPlaceholders(t *testing.T) {
	store := NewChunkStore()
	a := NewFilledChunk(ChunkCoord{})
	require.True(t, store.AddChunk(a))
	placeholder, _ := store.GetOrCreate(ChunkCoord{X: 1})
	b := NewFilledChunk(ChunkCoord{X: -1})
	require.True(t, store.AddChunk(b))

	linked := store.Link(a.Coord())
	require.Len(t, linked, 1)
	assert.Same(t, b, linked[0])
	assert.True(t, a.Linked(West))
	assert.True(t, b.Linked(East))
	assert.False(t, a.Linked(East))
	assert.False(t, placeholder.Linked(West))

	assert.Empty(t, store.Link(a.Coord()), "relinking reports nothing new")
	assert.Nil(t, store.Link(placeholder.Coord()))
}

func TestLinkInvalidatesBothSides(t *testing.T) {
	store := NewChunkStore()
	a := NewFilledChunk(ChunkCoord{})
	b := NewFilledChunk(ChunkCoord{Z: 1})
	require.True(t, store.AddChunk(a))
	require.True(t, store.AddChunk(b))
	ra, rb := a.Revision(), b.Revision()

	store.Link(a.Coord())
	assert.Greater(t, a.Revision(), ra)
	assert.Greater(t, b.Revision(), rb)
	assert.True(t, a.Linked(South))
	assert.True(t, b.Linked(North))
}

func TestRemoveClearsReciprocalLinks(t *testing.T) {
	store := NewChunkStore()
	center := NewFilledChunk(ChunkCoord{})
	require.True(t, store.AddChunk(center))
	var around []*Chunk
	for _, d := range Directions {
		n := NewFilledChunk(center.Coord().Neighbor(d))
		require.True(t, store.AddChunk(n))
		around = append(around, n)
	}
	store.Link(center.Coord())

	removed, touched := store.Remove(center.Coord())
	assert.Same(t, center, removed)
	assert.Len(t, touched, 4)
	for i, d := range Directions {
		assert.False(t, around[i].Linked(d.Opposite()), "%v still points at the evicted chunk", d)
	}
	assert.False(t, store.HasChunk(center.Coord()))

	r, touched := store.Remove(center.Coord())
	assert.Nil(t, r)
	assert.Nil(t, touched)
}

func TestCoordsOutsideUsesChebyshev(t *testing.T) {
	store := NewChunkStore()
	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			store.GetOrCreate(ChunkCoord{X: x, Z: z})
		}
	}
	out := store.CoordsOutside(ChunkCoord{}, 2)
	assert.Len(t, out, 49-25)
	for _, c := range out {
		assert.Equal(t, 3, c.Chebyshev(ChunkCoord{}))
	}
}

func TestModCount(t *testing.T) {
	store := NewChunkStore()
	start := store.GetModCount()
	store.GetOrCreate(ChunkCoord{})
	store.GetOrCreate(ChunkCoord{})
	store.Remove(ChunkCoord{})
	assert.Equal(t, start+2, store.GetModCount())
}
