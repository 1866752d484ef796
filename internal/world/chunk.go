package world

import (
	"errors"
	"fmt"
	"sync/atomic"
)

const (
	// Chunk dimensions
	ChunkWidth  = 32  // X
	ChunkHeight = 256 // Y
	ChunkDepth  = 32  // Z

	ChunkVolume = ChunkWidth * ChunkHeight * ChunkDepth
)

var (
	// ErrOutOfRange is returned by the checked accessors for local
	// coordinates outside the chunk.
	ErrOutOfRange = errors.New("voxel coordinate out of range")
	// ErrBufferSize is returned when an installed voxel buffer has the wrong length.
	ErrBufferSize = errors.New("voxel buffer size mismatch")
)

// NeighborLookup resolves a chunk coordinate to a resident chunk, or nil.
type NeighborLookup interface {
	Chunk(coord ChunkCoord) *Chunk
}

// Chunk is a fixed-size column of voxels. It starts as a placeholder with no
// voxel data. Neighbors are never owned: a link is a flag plus a lookup into
// whatever map owns the chunks.
type Chunk struct {
	coord  ChunkCoord
	voxels []BlockType

	lookup NeighborLookup
	links  [4]bool

	revision    uint64
	meshCurrent bool
}

// revisions is shared by every chunk, so a chunk recreated at a coordinate
// never repeats a revision handed out to an earlier one.
var revisions atomic.Uint64

func nextRevision() uint64 { return revisions.Add(1) }

// NewChunk creates a voxel-less placeholder at coord.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{coord: coord, revision: nextRevision()}
}

// NewFilledChunk creates a chunk with an all-air voxel buffer.
func NewFilledChunk(coord ChunkCoord) *Chunk {
	c := NewChunk(coord)
	c.voxels = make([]BlockType, ChunkVolume)
	return c
}

// Index converts local coordinates to the flat buffer index.
func Index(x, y, z int) int {
	return y*ChunkWidth*ChunkDepth + z*ChunkWidth + x
}

// InBounds reports whether local coordinates address a cell of the chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkWidth && y >= 0 && y < ChunkHeight && z >= 0 && z < ChunkDepth
}

func (c *Chunk) Coord() ChunkCoord { return c.coord }

// HasVoxels reports whether voxel data has been installed.
func (c *Chunk) HasVoxels() bool { return c.voxels != nil }

// Voxels exposes the raw buffer. Callers must not retain or mutate it.
func (c *Chunk) Voxels() []BlockType { return c.voxels }

// Revision increases whenever something that affects the mesh changes.
// Values are unique across all chunks of the process.
func (c *Chunk) Revision() uint64 { return c.revision }

// MeshCurrent reports whether the installed mesh matches the voxel data.
func (c *Chunk) MeshCurrent() bool { return c.meshCurrent }

// MarkMeshed records that a mesh built from revision rev was installed.
// It returns false, leaving the chunk untouched, if rev is stale.
func (c *Chunk) MarkMeshed(rev uint64) bool {
	if rev != c.revision {
		return false
	}
	c.meshCurrent = true
	return true
}

// Invalidate bumps the revision and clears the mesh-current flag.
func (c *Chunk) Invalidate() {
	c.revision = nextRevision()
	c.meshCurrent = false
}

// SetLookup attaches the map used to resolve linked neighbors.
func (c *Chunk) SetLookup(l NeighborLookup) { c.lookup = l }

// Linked reports whether the neighbor on side d is wired in.
func (c *Chunk) Linked(d Direction) bool { return c.links[d] }

func (c *Chunk) setLink(d Direction, on bool) {
	if c.links[d] == on {
		return
	}
	c.links[d] = on
	c.Invalidate()
}

// InstallVoxels replaces the voxel buffer. The slice is retained.
func (c *Chunk) InstallVoxels(v []BlockType) error {
	if len(v) != ChunkVolume {
		return fmt.Errorf("%w: got %d, want %d", ErrBufferSize, len(v), ChunkVolume)
	}
	c.voxels = v
	c.Invalidate()
	return nil
}

// At returns the block at local coordinates. Out-of-range coordinates are a
// caller error.
func (c *Chunk) At(x, y, z int) (BlockType, error) {
	if !InBounds(x, y, z) {
		return BlockTypeAir, fmt.Errorf("%w: chunk %v local (%d,%d,%d)", ErrOutOfRange, c.coord, x, y, z)
	}
	if c.voxels == nil {
		return BlockTypeAir, nil
	}
	return c.voxels[Index(x, y, z)], nil
}

// Set writes a block at local coordinates, allocating the buffer if needed.
func (c *Chunk) Set(x, y, z int, b BlockType) error {
	if !InBounds(x, y, z) {
		return fmt.Errorf("%w: chunk %v local (%d,%d,%d)", ErrOutOfRange, c.coord, x, y, z)
	}
	if c.voxels == nil {
		if b == BlockTypeAir {
			return nil
		}
		c.voxels = make([]BlockType, ChunkVolume)
	}
	i := Index(x, y, z)
	if c.voxels[i] != b {
		c.voxels[i] = b
		c.Invalidate()
	}
	return nil
}

// Lookup is the bounds-checked accessor. Coordinates past a horizontal edge
// are forwarded to the linked neighbor in its local space; anything else
// outside the chunk, or a missing neighbor, reads as air.
func (c *Chunk) Lookup(x, y, z int) BlockType {
	if y < 0 || y >= ChunkHeight {
		return BlockTypeAir
	}
	var d Direction
	switch {
	case x < 0:
		d = West
	case x >= ChunkWidth:
		d = East
	case z < 0:
		d = North
	case z >= ChunkDepth:
		d = South
	default:
		if c.voxels == nil {
			return BlockTypeAir
		}
		return c.voxels[Index(x, y, z)]
	}
	if !c.links[d] || c.lookup == nil {
		return BlockTypeAir
	}
	n := c.lookup.Chunk(c.coord.Neighbor(d))
	if n == nil || !n.HasVoxels() {
		return BlockTypeAir
	}
	off := directionOffsets[d]
	return n.Lookup(x-off[0]*ChunkWidth, y, z-off[1]*ChunkDepth)
}

// IsSolidAt reports whether Lookup yields a solid block.
func (c *Chunk) IsSolidAt(x, y, z int) bool {
	return c.Lookup(x, y, z).IsSolid()
}

// SolidCount returns the number of non-air cells.
func (c *Chunk) SolidCount() int {
	n := 0
	for _, b := range c.voxels {
		if b != BlockTypeAir {
			n++
		}
	}
	return n
}

// Snapshot returns a detached copy of the chunk together with copies of the
// chunks reachable through its links (direct and diagonal neighbors), so a
// worker can mesh it without touching shared buffers.
func (c *Chunk) Snapshot() *Chunk {
	local := snapshotLookup{}
	s := c.clone(local)
	local[c.coord] = s
	for _, d := range Directions {
		n := c.linkedNeighbor(d)
		if n == nil {
			s.links[d] = false
			continue
		}
		if _, ok := local[n.coord]; !ok {
			local[n.coord] = n.clone(local)
		}
		for _, d2 := range Directions {
			if d2 == d || d2 == d.Opposite() {
				continue
			}
			if diag := n.linkedNeighbor(d2); diag != nil {
				if _, ok := local[diag.coord]; !ok {
					local[diag.coord] = diag.clone(local)
				}
			}
		}
	}
	return s
}

func (c *Chunk) linkedNeighbor(d Direction) *Chunk {
	if !c.links[d] || c.lookup == nil {
		return nil
	}
	n := c.lookup.Chunk(c.coord.Neighbor(d))
	if n == nil || !n.HasVoxels() {
		return nil
	}
	return n
}

func (c *Chunk) clone(lookup NeighborLookup) *Chunk {
	s := &Chunk{
		coord:    c.coord,
		lookup:   lookup,
		links:    c.links,
		revision: c.revision,
	}
	if c.voxels != nil {
		s.voxels = make([]BlockType, len(c.voxels))
		copy(s.voxels, c.voxels)
	}
	return s
}

type snapshotLookup map[ChunkCoord]*Chunk

func (l snapshotLookup) Chunk(coord ChunkCoord) *Chunk {
	return l[coord]
}
