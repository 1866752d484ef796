package world

import (
	"sync"
)

// ChunkStore is the authoritative world map from chunk coordinate to chunk.
// Insertion, removal and neighbor wiring happen on the control goroutine; the
// lock only guards the map itself for readers such as metrics scrapes.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Chunk returns the chunk at coord or nil. It makes the store a NeighborLookup.
func (cs *ChunkStore) Chunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// HasChunk checks if a chunk exists at coord.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// GetOrCreate returns the chunk at coord, creating a voxel-less placeholder
// if none is resident. created reports whether a placeholder was made.
func (cs *ChunkStore) GetOrCreate(coord ChunkCoord) (chunk *Chunk, created bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if existing, ok := cs.chunks[coord]; ok {
		return existing, false
	}
	chunk = NewChunk(coord)
	chunk.SetLookup(cs)
	cs.chunks[coord] = chunk
	cs.modCount++
	return chunk, true
}

// AddChunk inserts a pre-built chunk, replacing nothing. It returns false if
// the coordinate was already occupied.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[chunk.coord]; ok {
		return false
	}
	chunk.SetLookup(cs)
	cs.chunks[chunk.coord] = chunk
	cs.modCount++
	return true
}

// Remove deletes the chunk at coord and clears the reciprocal link on every
// resident neighbor. It returns the removed chunk and the neighbors whose
// links changed.
func (cs *ChunkStore) Remove(coord ChunkCoord) (*Chunk, []*Chunk) {
	cs.mu.Lock()
	chunk, ok := cs.chunks[coord]
	if !ok {
		cs.mu.Unlock()
		return nil, nil
	}
	delete(cs.chunks, coord)
	cs.modCount++
	cs.mu.Unlock()

	var touched []*Chunk
	for _, d := range Directions {
		chunk.setLink(d, false)
		if n := cs.Chunk(coord.Neighbor(d)); n != nil && n.links[d.Opposite()] {
			n.setLink(d.Opposite(), false)
			touched = append(touched, n)
		}
	}
	return chunk, touched
}

// Link wires the chunk at coord to every resident neighbor that has voxel
// data, in both directions. It returns the neighbors that were newly linked.
// Chunks without voxel data are never linked.
func (cs *ChunkStore) Link(coord ChunkCoord) []*Chunk {
	chunk := cs.Chunk(coord)
	if chunk == nil || !chunk.HasVoxels() {
		return nil
	}
	var linked []*Chunk
	for _, d := range Directions {
		n := cs.Chunk(coord.Neighbor(d))
		if n == nil || !n.HasVoxels() {
			continue
		}
		fresh := !chunk.links[d] || !n.links[d.Opposite()]
		chunk.setLink(d, true)
		n.setLink(d.Opposite(), true)
		if fresh {
			linked = append(linked, n)
		}
	}
	return linked
}

// Get returns the block at world coordinates, or air outside loaded chunks.
func (cs *ChunkStore) Get(x, y, z int) BlockType {
	chunk := cs.Chunk(ChunkCoordAt(x, z))
	if chunk == nil {
		return BlockTypeAir
	}
	lx, lz := LocalXZ(x, z)
	if y < 0 || y >= ChunkHeight {
		return BlockTypeAir
	}
	b, _ := chunk.At(lx, y, lz)
	return b
}

// IsAir reports whether world position (x, y, z) holds air. Unloaded
// chunks read as air.
func (cs *ChunkStore) IsAir(x, y, z int) bool {
	return cs.Get(x, y, z) == BlockTypeAir
}

// Len returns the number of resident chunks, placeholders included.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// Coords returns the resident coordinates in no particular order.
func (cs *ChunkStore) Coords() []ChunkCoord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	coords := make([]ChunkCoord, 0, len(cs.chunks))
	for coord := range cs.chunks {
		coords = append(coords, coord)
	}
	return coords
}

// CoordsOutside returns resident coordinates farther than radius (Chebyshev)
// from center.
func (cs *ChunkStore) CoordsOutside(center ChunkCoord, radius int) []ChunkCoord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var out []ChunkCoord
	for coord := range cs.chunks {
		if coord.Chebyshev(center) > radius {
			out = append(out, coord)
		}
	}
	return out
}

// GetModCount counts chunk insertions and removals since the store was created.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}
