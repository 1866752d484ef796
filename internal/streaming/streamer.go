package streaming

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"voxelstream/internal/meshing"
	"voxelstream/internal/profiling"
	"voxelstream/internal/world"
)

var (
	// ErrNotResident is returned for edits in chunks that are missing or not
	// generated yet.
	ErrNotResident = errors.New("chunk not resident")
	// ErrOutOfWorld is returned for edits outside the vertical extent.
	ErrOutOfWorld = errors.New("position outside world bounds")
)

const (
	MinRenderDistance = 1
	MaxRenderDistance = 32
)

// Dispatcher runs chunk jobs off the control goroutine. *meshing.WorkerPool
// implements it.
type Dispatcher interface {
	Submit(job meshing.Job) bool
	Results() <-chan meshing.Result
}

// Options configures a Streamer. Zero values select defaults.
type Options struct {
	RenderDistance int
	RemeshDebounce time.Duration
	Renderer       Renderer
	Metrics        *Metrics
	Logger         *slog.Logger
	Now            func() time.Time
}

// Streamer owns the world map and keeps the chunks around a moving viewer
// resident. All methods must be called from a single control goroutine; it
// only enqueues work and reacts to results, never waiting on a worker.
type Streamer struct {
	store    *world.ChunkStore
	pool     Dispatcher
	renderer Renderer
	dirty    *DirtyTracker
	metrics  *Metrics
	log      *slog.Logger
	now      func() time.Time

	radius int
	center world.ChunkCoord

	// queued holds coordinates with a generate job in flight.
	queued map[world.ChunkCoord]struct{}
	// backlog holds chunks whose remesh could not be submitted yet.
	backlog  map[world.ChunkCoord]struct{}
	inFlight int
}

// NewStreamer creates a streamer over store, dispatching work to pool.
func NewStreamer(store *world.ChunkStore, pool Dispatcher, opts Options) *Streamer {
	if opts.RenderDistance == 0 {
		opts.RenderDistance = 8
	}
	if opts.RemeshDebounce == 0 {
		opts.RemeshDebounce = DefaultRemeshDebounce
	}
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer{}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Streamer{
		store:    store,
		pool:     pool,
		renderer: opts.Renderer,
		dirty:    NewDirtyTracker(opts.RemeshDebounce),
		metrics:  opts.Metrics,
		log:      opts.Logger,
		now:      opts.Now,
		radius:   clampRadius(opts.RenderDistance),
		queued:   make(map[world.ChunkCoord]struct{}),
		backlog:  make(map[world.ChunkCoord]struct{}),
	}
}

func clampRadius(r int) int {
	return min(max(r, MinRenderDistance), MaxRenderDistance)
}

// Store returns the world map.
func (s *Streamer) Store() *world.ChunkStore { return s.store }

// Dirty returns the dirty tracker.
func (s *Streamer) Dirty() *DirtyTracker { return s.dirty }

// Center returns the viewer chunk of the last Update.
func (s *Streamer) Center() world.ChunkCoord { return s.center }

// RenderDistance returns the streaming radius in chunks.
func (s *Streamer) RenderDistance() int { return s.radius }

// SetRenderDistance changes the radius; it takes effect on the next Update.
func (s *Streamer) SetRenderDistance(r int) { s.radius = clampRadius(r) }

// InFlight returns the number of submitted jobs whose results have not been
// processed.
func (s *Streamer) InFlight() int { return s.inFlight }

// Idle reports whether no job is outstanding, no remesh is parked and no
// edit is waiting for its debounce window.
func (s *Streamer) Idle() bool {
	return s.inFlight == 0 && len(s.backlog) == 0 && s.dirty.Pending() == 0
}

// Update makes every coordinate within the radius of the viewer's chunk
// resident and evicts everything outside it. Missing chunks get a
// placeholder and a generate job, nearest first. Jobs the pool refuses are
// retried on the next call.
func (s *Streamer) Update(viewerX, viewerZ float64) {
	defer profiling.Track("streaming.Update")()
	s.center = world.ChunkCoordAt(int(math.Floor(viewerX)), int(math.Floor(viewerZ)))

	s.evictOutside()

	full := false
	for _, coord := range wantedCoords(s.center, s.radius) {
		chunk, _ := s.store.GetOrCreate(coord)
		if full || chunk.HasVoxels() {
			continue
		}
		if _, ok := s.queued[coord]; ok {
			continue
		}
		if !s.submit(meshing.Job{Kind: meshing.JobGenerate, Coord: coord}) {
			full = true
			continue
		}
		s.queued[coord] = struct{}{}
	}

	s.flushBacklog()
	s.updateGauges()
}

// wantedCoords lists the coordinates within Chebyshev distance r of center,
// nearest (Euclidean) first.
func wantedCoords(center world.ChunkCoord, r int) []world.ChunkCoord {
	coords := make([]world.ChunkCoord, 0, (2*r+1)*(2*r+1))
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			coords = append(coords, world.ChunkCoord{X: center.X + dx, Z: center.Z + dz})
		}
	}
	sort.SliceStable(coords, func(i, j int) bool {
		return coords[i].DistSq(center) < coords[j].DistSq(center)
	})
	return coords
}

func (s *Streamer) evictOutside() {
	var touched []*world.Chunk
	evicted := s.store.CoordsOutside(s.center, s.radius)
	for _, coord := range evicted {
		_, t := s.store.Remove(coord)
		touched = append(touched, t...)
		s.renderer.Release(coord)
		s.dirty.Forget(coord)
		delete(s.backlog, coord)
		s.log.Debug("chunk evicted", "chunk", coord)
	}
	// Survivors that lost a neighbor now expose their seam faces.
	done := make(map[*world.Chunk]bool, len(touched))
	for _, n := range touched {
		if s.store.Chunk(n.Coord()) == n && !done[n] {
			done[n] = true
			s.requestRemesh(n)
		}
	}
	// Survivors that lost only a diagonal change at their corner columns.
	for _, coord := range evicted {
		for _, dc := range coord.Diagonals() {
			diag := s.store.Chunk(dc)
			if diag == nil || !diag.HasVoxels() || done[diag] {
				continue
			}
			done[diag] = true
			diag.Invalidate()
			s.requestRemesh(diag)
		}
	}
}

// ProcessResults handles every result that is ready without blocking and
// returns how many it handled.
func (s *Streamer) ProcessResults() int {
	defer profiling.Track("streaming.ProcessResults")()
	n := 0
	for {
		select {
		case res := <-s.pool.Results():
			s.inFlight--
			s.handle(res)
			n++
		default:
			if n > 0 {
				s.updateGauges()
			}
			return n
		}
	}
}

func (s *Streamer) handle(res meshing.Result) {
	switch res.Kind {
	case meshing.JobGenerate:
		s.handleGenerate(res)
	case meshing.JobRemesh:
		s.handleRemesh(res)
	}
}

func (s *Streamer) handleGenerate(res meshing.Result) {
	delete(s.queued, res.Coord)

	chunk := s.store.Chunk(res.Coord)
	if chunk == nil || chunk.HasVoxels() {
		s.metrics.result(OutcomeStale)
		s.log.Debug("stale generate result dropped", "chunk", res.Coord)
		return
	}
	if res.Err != nil {
		s.metrics.result(OutcomeFailed)
		s.log.Warn("chunk generation failed", "chunk", res.Coord, "error", res.Err)
		return
	}
	voxels, err := world.DecodeVoxels(res.Voxels)
	if err == nil {
		err = chunk.InstallVoxels(voxels)
	}
	if err != nil {
		s.metrics.result(OutcomeFailed)
		s.log.Warn("chunk install failed", "chunk", res.Coord, "error", err)
		return
	}
	s.metrics.result(OutcomeInstalled)

	linked := s.store.Link(res.Coord)
	if len(linked) == 0 {
		// Built in isolation and still isolated: the eager mesh is current.
		chunk.MarkMeshed(chunk.Revision())
		s.present(res.Coord, res.Mesh)
	} else {
		s.requestRemesh(chunk)
	}
	for _, n := range linked {
		s.requestRemesh(n)
	}
	s.remeshDiagonals(res.Coord)
}

// remeshDiagonals refreshes the generated diagonal neighbors of a newly
// installed chunk, whose corner occlusion reads across it. A diagonal is
// skipped unless one of the two chunks between it and coord is generated,
// since otherwise its lookups cannot reach coord.
func (s *Streamer) remeshDiagonals(coord world.ChunkCoord) {
	for _, xSide := range [2]world.Direction{world.East, world.West} {
		for _, zSide := range [2]world.Direction{world.South, world.North} {
			diag := s.store.Chunk(coord.Diagonal(xSide, zSide))
			if diag == nil || !diag.HasVoxels() {
				continue
			}
			if !s.generated(coord.Neighbor(xSide)) && !s.generated(coord.Neighbor(zSide)) {
				continue
			}
			// Results already in flight for diag saw the old corner.
			diag.Invalidate()
			s.requestRemesh(diag)
		}
	}
}

func (s *Streamer) generated(coord world.ChunkCoord) bool {
	c := s.store.Chunk(coord)
	return c != nil && c.HasVoxels()
}

func (s *Streamer) handleRemesh(res meshing.Result) {
	chunk := s.store.Chunk(res.Coord)
	if chunk == nil {
		s.metrics.result(OutcomeStale)
		return
	}
	if res.Err != nil {
		s.metrics.result(OutcomeFailed)
		s.log.Warn("chunk remesh failed", "chunk", res.Coord, "error", res.Err)
		return
	}
	if !chunk.MarkMeshed(res.Revision) {
		s.metrics.result(OutcomeRemeshStale)
		s.log.Debug("stale remesh dropped", "chunk", res.Coord, "revision", res.Revision, "current", chunk.Revision())
		return
	}
	s.metrics.result(OutcomeRemeshed)
	s.present(res.Coord, res.Mesh)
}

func (s *Streamer) present(coord world.ChunkCoord, mesh *meshing.MeshBuffer) {
	if mesh.Empty() {
		s.renderer.Release(coord)
		return
	}
	s.renderer.Upload(coord, mesh)
}

// requestRemesh submits a remesh of a private snapshot of chunk, or parks
// the chunk in the backlog when the queue is full.
func (s *Streamer) requestRemesh(chunk *world.Chunk) {
	if !chunk.HasVoxels() {
		return
	}
	job := meshing.Job{
		Kind:     meshing.JobRemesh,
		Coord:    chunk.Coord(),
		Snapshot: chunk.Snapshot(),
		Revision: chunk.Revision(),
	}
	if !s.submit(job) {
		s.backlog[chunk.Coord()] = struct{}{}
		return
	}
	delete(s.backlog, chunk.Coord())
}

func (s *Streamer) flushBacklog() {
	if len(s.backlog) == 0 {
		return
	}
	coords := make([]world.ChunkCoord, 0, len(s.backlog))
	for c := range s.backlog {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		return coords[i].DistSq(s.center) < coords[j].DistSq(s.center)
	})
	for _, c := range coords {
		chunk := s.store.Chunk(c)
		if chunk == nil {
			delete(s.backlog, c)
			continue
		}
		s.requestRemesh(chunk)
		if _, parked := s.backlog[c]; parked {
			return
		}
	}
}

func (s *Streamer) submit(job meshing.Job) bool {
	if !s.pool.Submit(job) {
		return false
	}
	s.inFlight++
	return true
}

func (s *Streamer) updateGauges() {
	s.metrics.Resident.Set(float64(s.store.Len()))
	s.metrics.Queued.Set(float64(len(s.queued)))
}

// SetBlock writes b at world position (x, y, z). The chunk must be resident
// and generated. The edited chunk, and any neighbor sharing the edited face,
// is remeshed once the debounce window passes without further edits.
func (s *Streamer) SetBlock(x, y, z int, b world.BlockType) error {
	if y < 0 || y >= world.ChunkHeight {
		return fmt.Errorf("set block (%d,%d,%d): %w", x, y, z, ErrOutOfWorld)
	}
	coord := world.ChunkCoordAt(x, z)
	chunk := s.store.Chunk(coord)
	if chunk == nil || !chunk.HasVoxels() {
		return fmt.Errorf("set block (%d,%d,%d) in chunk %v: %w", x, y, z, coord, ErrNotResident)
	}
	lx, lz := world.LocalXZ(x, z)
	before := chunk.Revision()
	if err := chunk.Set(lx, y, lz, b); err != nil {
		return err
	}
	if chunk.Revision() == before {
		return nil
	}
	for _, c := range s.dirty.MarkEdit(coord, lx, lz, s.now()) {
		if c == coord {
			continue
		}
		// In-flight meshes of the neighbor saw the old voxel.
		if n := s.store.Chunk(c); n != nil && n.HasVoxels() {
			n.Invalidate()
		}
	}
	return nil
}

// GetBlock returns the block at world position, air outside resident chunks.
func (s *Streamer) GetBlock(x, y, z int) world.BlockType {
	return s.store.Get(x, y, z)
}

// IsAir reports whether the world position holds no solid block.
func (s *Streamer) IsAir(x, y, z int) bool {
	return s.store.IsAir(x, y, z)
}

// Tick fires the dirty batch if its debounce deadline has passed and retries
// parked remeshes. It returns the number of chunks in the fired batch.
func (s *Streamer) Tick() int {
	batch := s.dirty.Due(s.now())
	if len(batch) == 0 {
		s.flushBacklog()
		return 0
	}
	s.metrics.DirtyBatches.Inc()
	for _, coord := range batch {
		chunk := s.store.Chunk(coord)
		if chunk == nil || !chunk.HasVoxels() {
			continue
		}
		s.requestRemesh(chunk)
	}
	s.flushBacklog()
	s.log.Debug("dirty batch fired", "chunks", len(batch))
	return len(batch)
}
