package meshing

import (
	"errors"
	"fmt"

	"voxelstream/internal/world"
)

// ErrInvalidCorner is returned for corner indices outside 0..3.
var ErrInvalidCorner = errors.New("invalid corner index")

// Occluder answers solidity queries in chunk-local space, following links
// into neighbor chunks past the edges. *world.Chunk implements it.
type Occluder interface {
	IsSolidAt(x, y, z int) bool
}

// aoLevels maps the number of solid occluders to the vertex light factor.
var aoLevels = [4]float32{1.0, 0.75, 0.5, 0.25}

// aoOffsets[face][corner] holds the two edge neighbors and the diagonal
// neighbor of a face corner, relative to the voxel owning the face. Corners
// run (-u,-v), (+u,-v), (+u,+v), (-u,+v) where u and v are the face's
// in-plane axes in cyclic order after the normal axis.
var aoOffsets = buildAOOffsets()

var cornerSigns = [4][2]int{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

func buildAOOffsets() (t [world.NumFaces][4][3][3]int) {
	for f := range world.NumFaces {
		face := world.BlockFace(f)
		n := face.Normal()
		d := face.Axis()
		u, v := (d+1)%3, (d+2)%3
		for c, s := range cornerSigns {
			side1, side2, diag := n, n, n
			side1[u] += s[0]
			side2[v] += s[1]
			diag[u] += s[0]
			diag[v] += s[1]
			t[f][c] = [3][3]int{side1, side2, diag}
		}
	}
	return t
}

// CornerOffsets returns the three neighbor offsets consulted for a face corner.
func CornerOffsets(face world.BlockFace, corner int) ([3][3]int, error) {
	if !face.Valid() {
		return [3][3]int{}, fmt.Errorf("%w: %d", world.ErrInvalidFace, int(face))
	}
	if corner < 0 || corner > 3 {
		return [3][3]int{}, fmt.Errorf("%w: %d", ErrInvalidCorner, corner)
	}
	return aoOffsets[face][corner], nil
}

// Occlusion returns the light factor for one corner of the given face of the
// voxel at (x, y, z): 1.0 with no solid occluders, then 0.75, 0.5 and 0.25.
func Occlusion(src Occluder, x, y, z int, face world.BlockFace, corner int) (float32, error) {
	offs, err := CornerOffsets(face, corner)
	if err != nil {
		return 0, err
	}
	return aoLevels[countSolid(src, x, y, z, &offs)], nil
}

// OcclusionByName is Occlusion keyed by face name ("top", "east", ...).
func OcclusionByName(src Occluder, x, y, z int, face string, corner int) (float32, error) {
	f, err := world.ParseFace(face)
	if err != nil {
		return 0, err
	}
	return Occlusion(src, x, y, z, f, corner)
}

func countSolid(src Occluder, x, y, z int, offs *[3][3]int) int {
	n := 0
	for _, o := range offs {
		if src.IsSolidAt(x+o[0], y+o[1], z+o[2]) {
			n++
		}
	}
	return n
}
