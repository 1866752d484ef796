package meshing

import (
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuffer is the renderer-facing output of one meshing pass. Attributes
// are per vertex; Indices describe two triangles per quad.
type MeshBuffer struct {
	Coord     world.ChunkCoord
	Positions []float32 // xyz
	Normals   []float32 // xyz
	Colors    []float32 // rgb, AO applied
	UVs       []float32 // uv, scaled by quad size
	Blocks    []world.BlockType
	Indices   []uint32
}

func newMeshBuffer(coord world.ChunkCoord) *MeshBuffer {
	return &MeshBuffer{
		Coord:     coord,
		Positions: make([]float32, 0, 4096),
		Normals:   make([]float32, 0, 4096),
		Colors:    make([]float32, 0, 4096),
		UVs:       make([]float32, 0, 2730),
		Blocks:    make([]world.BlockType, 0, 1365),
		Indices:   make([]uint32, 0, 2048),
	}
}

// Empty reports whether the mesh has no geometry. Consumers treat an empty
// mesh as "no mesh".
func (m *MeshBuffer) Empty() bool {
	return m == nil || len(m.Indices) == 0
}

// VertexCount returns the number of vertices.
func (m *MeshBuffer) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *MeshBuffer) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// quad is one merged rectangle ready for emission.
type quad struct {
	corners [4]mgl32.Vec3
	normal  mgl32.Vec3
	color   mgl32.Vec3
	ao      [4]float32
	width   float32
	height  float32
	block   world.BlockType
	forward bool
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

func (m *MeshBuffer) appendQuad(q *quad) {
	base := uint32(m.VertexCount())
	for i, p := range q.corners {
		c := q.color.Mul(q.ao[i])
		m.Positions = append(m.Positions, p.X(), p.Y(), p.Z())
		m.Normals = append(m.Normals, q.normal.X(), q.normal.Y(), q.normal.Z())
		m.Colors = append(m.Colors, c.X(), c.Y(), c.Z())
		m.UVs = append(m.UVs, quadUVs[i][0]*q.width, quadUVs[i][1]*q.height)
		m.Blocks = append(m.Blocks, q.block)
	}

	// Split along the brighter diagonal so AO interpolates without the
	// anisotropy artifact; winding stays tied to the face direction.
	flip := q.ao[0]+q.ao[2] < q.ao[1]+q.ao[3]
	var tri [6]uint32
	switch {
	case q.forward && !flip:
		tri = [6]uint32{0, 1, 2, 0, 2, 3}
	case q.forward && flip:
		tri = [6]uint32{1, 2, 3, 1, 3, 0}
	case !flip:
		tri = [6]uint32{0, 2, 1, 0, 3, 2}
	default:
		tri = [6]uint32{1, 3, 2, 1, 0, 3}
	}
	for _, t := range tri {
		m.Indices = append(m.Indices, base+t)
	}
}
