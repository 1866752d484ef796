package world

import (
	"errors"
	"fmt"
)

// BlockType is the per-cell voxel value. Zero is air; everything else is a
// block-type identifier resolved through the registry.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeGrass
	BlockTypeDirt
	BlockTypeStone
	BlockTypeSnow
	BlockTypeWater
	BlockTypeSand
)

// IsSolid reports whether the cell takes part in face culling and occlusion.
func (b BlockType) IsSolid() bool {
	return b != BlockTypeAir
}

// BlockFace identifies one of the six axis-aligned faces of a voxel.
type BlockFace int

const (
	FaceEast   BlockFace = iota // +X
	FaceWest                    // -X
	FaceTop                     // +Y
	FaceBottom                  // -Y
	FaceSouth                   // +Z
	FaceNorth                   // -Z
)

// NumFaces is the number of voxel faces.
const NumFaces = 6

// ErrInvalidFace is returned for face names or values outside the six faces.
var ErrInvalidFace = errors.New("invalid face")

var faceNames = [NumFaces]string{"east", "west", "top", "bottom", "south", "north"}

var faceNormals = [NumFaces][3]int{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// Valid reports whether f is one of the six faces.
func (f BlockFace) Valid() bool {
	return f >= FaceEast && f <= FaceNorth
}

func (f BlockFace) String() string {
	if !f.Valid() {
		return fmt.Sprintf("BlockFace(%d)", int(f))
	}
	return faceNames[f]
}

// Normal returns the unit outward normal of the face.
func (f BlockFace) Normal() [3]int {
	return faceNormals[f]
}

// Axis returns 0, 1 or 2 for faces perpendicular to X, Y or Z.
func (f BlockFace) Axis() int {
	return int(f) / 2
}

// FaceFor returns the face perpendicular to axis whose normal points in the
// positive direction when forward is true.
func FaceFor(axis int, forward bool) BlockFace {
	f := BlockFace(axis * 2)
	if !forward {
		f++
	}
	return f
}

// ParseFace maps a face name ("east", "top", ...) to its BlockFace.
func ParseFace(name string) (BlockFace, error) {
	for i, n := range faceNames {
		if n == name {
			return BlockFace(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFace, name)
}
