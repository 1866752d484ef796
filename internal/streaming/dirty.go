package streaming

import (
	"sort"
	"time"

	"voxelstream/internal/world"
)

// DefaultRemeshDebounce is the quiet period after the last edit before dirty
// chunks are remeshed.
const DefaultRemeshDebounce = 100 * time.Millisecond

// DirtyTracker collects chunks whose meshes are out of date after voxel
// edits. All marks share one pending batch with a single deadline that
// restarts on every mark, so a burst of edits produces one remesh per chunk.
type DirtyTracker struct {
	window   time.Duration
	dirty    map[world.ChunkCoord]struct{}
	deadline time.Time
}

// NewDirtyTracker creates a tracker with the given debounce window.
func NewDirtyTracker(window time.Duration) *DirtyTracker {
	if window < 0 {
		window = 0
	}
	return &DirtyTracker{
		window: window,
		dirty:  make(map[world.ChunkCoord]struct{}),
	}
}

// Window returns the debounce window.
func (t *DirtyTracker) Window() time.Duration { return t.window }

// Mark adds coord to the pending batch and restarts the deadline.
func (t *DirtyTracker) Mark(coord world.ChunkCoord, now time.Time) {
	t.dirty[coord] = struct{}{}
	t.deadline = now.Add(t.window)
}

// MarkEdit marks the chunk holding an edit at local column (lx, lz) and every
// neighbor sharing the edited cell's boundary face. An edit in a corner
// column also marks the diagonal chunk, whose corner occlusion reads it. It
// returns the marked coordinates, the edited chunk first.
func (t *DirtyTracker) MarkEdit(coord world.ChunkCoord, lx, lz int, now time.Time) []world.ChunkCoord {
	marked := []world.ChunkCoord{coord}
	var xSide, zSide world.Direction = -1, -1
	switch lx {
	case 0:
		xSide = world.West
	case world.ChunkWidth - 1:
		xSide = world.East
	}
	switch lz {
	case 0:
		zSide = world.North
	case world.ChunkDepth - 1:
		zSide = world.South
	}
	if xSide >= 0 {
		marked = append(marked, coord.Neighbor(xSide))
	}
	if zSide >= 0 {
		marked = append(marked, coord.Neighbor(zSide))
	}
	if xSide >= 0 && zSide >= 0 {
		marked = append(marked, coord.Diagonal(xSide, zSide))
	}
	for _, c := range marked {
		t.Mark(c, now)
	}
	return marked
}

// IsDirty reports whether coord is in the pending batch.
func (t *DirtyTracker) IsDirty(coord world.ChunkCoord) bool {
	_, ok := t.dirty[coord]
	return ok
}

// Pending returns the size of the pending batch.
func (t *DirtyTracker) Pending() int { return len(t.dirty) }

// Deadline returns when the pending batch fires, or false if nothing is dirty.
func (t *DirtyTracker) Deadline() (time.Time, bool) {
	if len(t.dirty) == 0 {
		return time.Time{}, false
	}
	return t.deadline, true
}

// Forget drops coord from the pending batch, e.g. after eviction.
func (t *DirtyTracker) Forget(coord world.ChunkCoord) {
	delete(t.dirty, coord)
}

// Due returns and clears the pending batch once its deadline has passed.
// The batch is ordered by coordinate so callers behave deterministically.
func (t *DirtyTracker) Due(now time.Time) []world.ChunkCoord {
	if len(t.dirty) == 0 || now.Before(t.deadline) {
		return nil
	}
	batch := make([]world.ChunkCoord, 0, len(t.dirty))
	for c := range t.dirty {
		batch = append(batch, c)
	}
	clear(t.dirty)
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].X != batch[j].X {
			return batch[i].X < batch[j].X
		}
		return batch[i].Z < batch[j].Z
	})
	return batch
}
