package meshing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"voxelstream/internal/world"
)

// JobKind selects what a worker does for a coordinate.
type JobKind int

const (
	// JobGenerate fills terrain for a coordinate and meshes it in isolation.
	JobGenerate JobKind = iota
	// JobRemesh meshes a private snapshot of an already generated chunk.
	JobRemesh
)

func (k JobKind) String() string {
	if k == JobRemesh {
		return "remesh"
	}
	return "generate"
}

// Job represents a chunk task request
type Job struct {
	Kind  JobKind
	Coord world.ChunkCoord
	// Snapshot is the detached chunk (with neighbor copies) to remesh.
	Snapshot *world.Chunk
	// Revision is the chunk revision the snapshot was taken at.
	Revision uint64
}

// Result contains the outcome of a job, tagged with the job's coordinate.
type Result struct {
	Kind     JobKind
	Coord    world.ChunkCoord
	Revision uint64
	// Voxels is the serialized voxel buffer of a generate job.
	Voxels []byte
	Mesh   *MeshBuffer
	Err    error
}

// VoxelSource produces the voxel buffer for a chunk coordinate.
type VoxelSource interface {
	Generate(coord world.ChunkCoord) []world.BlockType
}

// WorkerPool manages goroutines for chunk generation and meshing. Each worker
// runs one job to completion on private data before taking the next.
type WorkerPool struct {
	jobQueue chan Job
	results  chan Result
	workers  int
	source   VoxelSource
	mesher   *Mesher
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool and starts its workers.
func NewWorkerPool(source VoxelSource, mesher *Mesher, workers, queueSize int, log *slog.Logger) *WorkerPool {
	if log == nil {
		log = slog.Default()
	}
	workers = max(workers, 1)
	queueSize = max(queueSize, 1)
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		jobQueue: make(chan Job, queueSize),
		results:  make(chan Result, queueSize+workers),
		workers:  workers,
		source:   source,
		mesher:   mesher,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := range workers {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Submit enqueues a job without blocking. It returns false if the queue is
// full or the pool has shut down.
func (p *WorkerPool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false // Queue is full
	}
}

// Results delivers completed jobs in completion order.
func (p *WorkerPool) Results() <-chan Result {
	return p.results
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := Process(job, p.source, p.mesher)
			if result.Err != nil {
				p.log.Warn("chunk job failed", "worker", id, "kind", job.Kind, "chunk", job.Coord, "error", result.Err)
			}

			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Process runs one job synchronously. A panic inside generation or meshing is
// turned into an error on the result rather than taking the worker down.
func Process(job Job, source VoxelSource, mesher *Mesher) (result Result) {
	result = Result{Kind: job.Kind, Coord: job.Coord, Revision: job.Revision}
	defer func() {
		if r := recover(); r != nil {
			result.Voxels = nil
			result.Mesh = nil
			result.Err = fmt.Errorf("%s chunk %v: panic: %v", job.Kind, job.Coord, r)
		}
	}()

	switch job.Kind {
	case JobGenerate:
		voxels := source.Generate(job.Coord)
		chunk := world.NewChunk(job.Coord)
		if err := chunk.InstallVoxels(voxels); err != nil {
			result.Err = fmt.Errorf("generate chunk %v: %w", job.Coord, err)
			return result
		}
		result.Mesh = mesher.Build(chunk)
		result.Voxels = world.EncodeVoxels(voxels)
	case JobRemesh:
		if job.Snapshot == nil {
			result.Err = fmt.Errorf("remesh chunk %v: no snapshot", job.Coord)
			return result
		}
		result.Mesh = mesher.Build(job.Snapshot)
	default:
		result.Err = fmt.Errorf("chunk %v: unknown job kind %d", job.Coord, job.Kind)
	}
	return result
}

// Shutdown stops the workers and waits for them to exit. Queued jobs are
// dropped.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// QueueLength returns the current number of jobs waiting for a worker.
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the pool size.
func (p *WorkerPool) Workers() int {
	return p.workers
}
