package world

import "fmt"

// ChunkCoord is the horizontal integer coordinate of a chunk column.
type ChunkCoord struct {
	X, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Origin returns the world-space block coordinate of the chunk's (0,0) column.
func (c ChunkCoord) Origin() (x, z int) {
	return c.X * ChunkWidth, c.Z * ChunkDepth
}

// Neighbor returns the coordinate adjacent in direction d.
func (c ChunkCoord) Neighbor(d Direction) ChunkCoord {
	off := directionOffsets[d]
	return ChunkCoord{X: c.X + off[0], Z: c.Z + off[1]}
}

// Diagonal returns the coordinate across the corner shared by sides a and b.
// a and b must lie on different axes.
func (c ChunkCoord) Diagonal(a, b Direction) ChunkCoord {
	return c.Neighbor(a).Neighbor(b)
}

// Diagonals lists the four corner-adjacent coordinates.
func (c ChunkCoord) Diagonals() [4]ChunkCoord {
	return [4]ChunkCoord{
		c.Diagonal(East, South),
		c.Diagonal(East, North),
		c.Diagonal(West, South),
		c.Diagonal(West, North),
	}
}

// DistSq is the squared Euclidean distance in chunks.
func (c ChunkCoord) DistSq(o ChunkCoord) int {
	dx := c.X - o.X
	dz := c.Z - o.Z
	return dx*dx + dz*dz
}

// Chebyshev is the chessboard distance in chunks.
func (c ChunkCoord) Chebyshev(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// ChunkCoordAt returns the chunk containing world block column (x, z).
func ChunkCoordAt(x, z int) ChunkCoord {
	return ChunkCoord{X: floorDiv(x, ChunkWidth), Z: floorDiv(z, ChunkDepth)}
}

// LocalXZ converts world block column (x, z) to chunk-local coordinates.
func LocalXZ(x, z int) (lx, lz int) {
	return mod(x, ChunkWidth), mod(z, ChunkDepth)
}

// Direction is one of the four horizontal neighbor sides.
type Direction int

const (
	East  Direction = iota // +X
	West                   // -X
	South                  // +Z
	North                  // -Z
)

// Directions lists the horizontal sides in a fixed order.
var Directions = [4]Direction{East, West, South, North}

var directionOffsets = [4][2]int{
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
}

// Opposite returns the side facing back toward the origin chunk.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case West:
		return "west"
	case South:
		return "south"
	case North:
		return "north"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
