package meshing

import (
	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

var chunkDims = [3]int{world.ChunkWidth, world.ChunkHeight, world.ChunkDepth}

// Mesher turns chunk voxels into greedy-merged quads with per-vertex AO.
type Mesher struct {
	reg *registry.Registry
}

// NewMesher creates a mesher that colors blocks through reg.
func NewMesher(reg *registry.Registry) *Mesher {
	return &Mesher{reg: reg}
}

// Build meshes c. Faces on the chunk's horizontal edges look through the
// chunk's neighbor links; a chunk with no exposed faces yields an empty mesh.
//
// A chunk owns the backward faces of its first layer and the forward faces
// of its last layer along each axis, so a face on a seam is emitted by
// exactly one of the two chunks sharing it.
func (m *Mesher) Build(c *world.Chunk) *MeshBuffer {
	defer profiling.Track("meshing.Build")()
	mesh := newMeshBuffer(c.Coord())
	if !c.HasVoxels() {
		return mesh
	}
	ox, oz := c.Coord().Origin()
	origin := mgl32.Vec3{float32(ox), 0, float32(oz)}

	for d := 0; d < 3; d++ {
		m.sweepAxis(c, d, origin, mesh)
	}
	return mesh
}

// sweepAxis builds one exposed-face mask per slice along axis d and merges it.
func (m *Mesher) sweepAxis(c *world.Chunk, d int, origin mgl32.Vec3, mesh *MeshBuffer) {
	u, v := (d+1)%3, (d+2)%3
	du, dv := chunkDims[u], chunkDims[v]
	mask := make([]int32, du*dv)

	var (
		x [3]int
		q [3]int
	)
	q[d] = 1

	for x[d] = -1; x[d] < chunkDims[d]; {
		n := 0
		for x[v] = 0; x[v] < dv; x[v]++ {
			for x[u] = 0; x[u] < du; x[u]++ {
				near := c.Lookup(x[0], x[1], x[2])
				far := c.Lookup(x[0]+q[0], x[1]+q[1], x[2]+q[2])
				var cell int32
				switch {
				case near.IsSolid() && !far.IsSolid():
					if x[d] >= 0 {
						cell = faceKey(c, near, x[0], x[1], x[2], world.FaceFor(d, true))
					}
				case !near.IsSolid() && far.IsSolid():
					if x[d] < chunkDims[d]-1 {
						cell = -faceKey(c, far, x[0]+q[0], x[1]+q[1], x[2]+q[2], world.FaceFor(d, false))
					}
				}
				mask[n] = cell
				n++
			}
		}
		// x[d] is now the plane the faces of this slice lie on.
		x[d]++

		n = 0
		for j := 0; j < dv; j++ {
			for i := 0; i < du; {
				cell := mask[n]
				if cell == 0 {
					i++
					n++
					continue
				}
				w := 1
				for i+w < du && mask[n+w] == cell {
					w++
				}
				h := 1
			grow:
				for j+h < dv {
					for k := 0; k < w; k++ {
						if mask[n+k+h*du] != cell {
							break grow
						}
					}
					h++
				}

				m.emit(mesh, origin, d, x[d], i, j, w, h, cell)

				for l := 0; l < h; l++ {
					for k := 0; k < w; k++ {
						mask[n+k+l*du] = 0
					}
				}
				i += w
				n += w
			}
		}
	}
}

// faceKey packs the block type of a visible face with the occluder count of
// each of its four corners. Cells merge only when their keys match, so a
// merged quad shades exactly like the cells it covers.
func faceKey(c *world.Chunk, b world.BlockType, x, y, z int, face world.BlockFace) int32 {
	key := int32(b)
	for k := range aoOffsets[face] {
		key |= int32(countSolid(c, x, y, z, &aoOffsets[face][k])) << (8 + 2*k)
	}
	return key
}

// emit appends the quad at plane along axis d spanning [i,i+w)×[j,j+h) in
// the (u,v) plane.
func (m *Mesher) emit(mesh *MeshBuffer, origin mgl32.Vec3, d, plane, i, j, w, h int, cell int32) {
	u, v := (d+1)%3, (d+2)%3
	forward := cell > 0
	key := cell
	if !forward {
		key = -cell
	}
	block := world.BlockType(key & 0xff)

	var base, du, dv, normal mgl32.Vec3
	base[d] = float32(plane)
	base[u] = float32(i)
	base[v] = float32(j)
	base = base.Add(origin)
	du[u] = float32(w)
	dv[v] = float32(h)
	normal[d] = 1
	if !forward {
		normal[d] = -1
	}

	q := quad{
		corners: [4]mgl32.Vec3{base, base.Add(du), base.Add(du).Add(dv), base.Add(dv)},
		normal:  normal,
		color:   m.reg.Color(block),
		width:   float32(w),
		height:  float32(h),
		block:   block,
		forward: forward,
	}
	for k := range q.ao {
		q.ao[k] = aoLevels[(key>>(8+2*k))&3]
	}
	mesh.appendQuad(&q)
}
