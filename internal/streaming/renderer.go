package streaming

import (
	"sync"

	"voxelstream/internal/meshing"
	"voxelstream/internal/world"
)

// Renderer receives finished chunk meshes. Upload replaces any geometry held
// for the coordinate; Release drops it. Both are called on the control
// goroutine.
type Renderer interface {
	Upload(coord world.ChunkCoord, mesh *meshing.MeshBuffer)
	Release(coord world.ChunkCoord)
}

type nopRenderer struct{}

func (nopRenderer) Upload(world.ChunkCoord, *meshing.MeshBuffer) {}
func (nopRenderer) Release(world.ChunkCoord)                     {}

// MeshTable is a Renderer that keeps the latest mesh per chunk in memory.
// The headless driver reports from it, and it is safe to read from other
// goroutines.
type MeshTable struct {
	mu       sync.RWMutex
	meshes   map[world.ChunkCoord]*meshing.MeshBuffer
	uploads  int
	releases int
}

// NewMeshTable creates an empty table.
func NewMeshTable() *MeshTable {
	return &MeshTable{meshes: make(map[world.ChunkCoord]*meshing.MeshBuffer)}
}

func (t *MeshTable) Upload(coord world.ChunkCoord, mesh *meshing.MeshBuffer) {
	t.mu.Lock()
	t.meshes[coord] = mesh
	t.uploads++
	t.mu.Unlock()
}

func (t *MeshTable) Release(coord world.ChunkCoord) {
	t.mu.Lock()
	delete(t.meshes, coord)
	t.releases++
	t.mu.Unlock()
}

// Mesh returns the mesh currently held for coord.
func (t *MeshTable) Mesh(coord world.ChunkCoord) (*meshing.MeshBuffer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.meshes[coord]
	return m, ok
}

// Stats returns the number of held meshes, their total triangle count and
// the upload and release call counts.
func (t *MeshTable) Stats() (meshes, triangles, uploads, releases int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.meshes {
		triangles += m.TriangleCount()
	}
	return len(t.meshes), triangles, t.uploads, t.releases
}
