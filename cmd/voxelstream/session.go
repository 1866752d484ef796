package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"voxelstream/internal/config"
	"voxelstream/internal/meshing"
	"voxelstream/internal/physics"
	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
	"voxelstream/internal/streaming"
	"voxelstream/internal/terrain"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	editEvery   = 25
	reportEvery = 100
	eyeHeight   = 2.5
)

// session wires the generator, worker pool and streamer together and moves a
// viewer through the world.
type session struct {
	log      *slog.Logger
	reg      *registry.Registry
	gen      *terrain.Generator
	pool     *meshing.WorkerPool
	streamer *streaming.Streamer
	meshes   *streaming.MeshTable

	viewer mgl32.Vec3
	edits  int
}

func newSession(cfg *config.Config, promReg prometheus.Registerer, log *slog.Logger) (*session, error) {
	reg := registry.NewDefault()
	gen, err := terrain.NewGenerator(cfg.TerrainOptions(), reg)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	pool := meshing.NewWorkerPool(gen, meshing.NewMesher(reg), cfg.WorkerCount(), cfg.QueueSize, log)
	meshes := streaming.NewMeshTable()
	s := &session{
		log:    log,
		reg:    reg,
		gen:    gen,
		pool:   pool,
		meshes: meshes,
	}
	s.streamer = streaming.NewStreamer(world.NewChunkStore(), pool, streaming.Options{
		RenderDistance: cfg.RenderDistance,
		RemeshDebounce: cfg.RemeshDebounce.Duration(),
		Renderer:       meshes,
		Metrics:        streaming.NewMetrics(promReg),
		Logger:         log,
	})
	return s, nil
}

// Close stops the workers.
func (s *session) Close() {
	s.pool.Shutdown()
}

// Fly runs steps iterations of the control loop, then waits for outstanding
// work to land.
func (s *session) Fly(ctx context.Context, steps int, speed float64, interval time.Duration) error {
	limiter := newStepLimiter(interval)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.step(i, speed)
		limiter.Wait()
	}
	return s.settle(ctx, 30*time.Second)
}

func (s *session) step(i int, speed float64) {
	profiling.ResetFrame()

	// A gentle S-curve along +X.
	x := float64(i) * speed
	z := math.Sin(float64(i)/120) * 96
	ground := s.gen.HeightAt(int(math.Floor(x)), int(math.Floor(z)))
	s.viewer = mgl32.Vec3{float32(x), float32(ground) + eyeHeight, float32(z)}

	s.streamer.Update(x, z)
	s.streamer.ProcessResults()
	if i > 0 && i%editEvery == 0 {
		s.edit(i)
	}
	s.streamer.Tick()

	if i%reportEvery == 0 {
		s.report(i)
	}
}

// edit digs out the block in front of the viewer on even edits and places
// one on odd edits.
func (s *session) edit(i int) {
	look := mgl32.Vec3{1, -0.6, 0.3}
	hit := physics.Raycast(s.viewer, look, physics.MinReachDistance, physics.MaxReachDistance*3, s.streamer)
	if !hit.Hit {
		return
	}
	target, block := hit.HitPosition, world.BlockTypeAir
	if (i/editEvery)%2 == 1 {
		target, block = hit.AdjacentPosition, world.BlockTypeStone
	}
	if err := s.streamer.SetBlock(target[0], target[1], target[2], block); err != nil {
		s.log.Debug("edit rejected", "pos", target, "error", err)
		return
	}
	s.edits++
}

func (s *session) report(i int) {
	meshes, triangles, uploads, releases := s.meshes.Stats()
	s.log.Info("stream",
		"step", i,
		"center", s.streamer.Center(),
		"resident", s.streamer.Store().Len(),
		"in_flight", s.streamer.InFlight(),
		"queue", s.pool.QueueLength(),
		"meshes", meshes,
		"triangles", triangles,
		"uploads", uploads,
		"releases", releases,
		"edits", s.edits,
		"top", profiling.TopN(3),
	)
}

// settle keeps draining results until no job is outstanding and no edit is
// waiting on its debounce window.
func (s *session) settle(ctx context.Context, limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for !s.streamer.Idle() {
		if time.Now().After(deadline) {
			return fmt.Errorf("settle: %d jobs still in flight after %v", s.streamer.InFlight(), limit)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
		s.streamer.ProcessResults()
		s.streamer.Tick()
	}
	meshes, triangles, _, _ := s.meshes.Stats()
	s.log.Info("settled", "resident", s.streamer.Store().Len(), "meshes", meshes, "triangles", triangles, "edits", s.edits)
	return nil
}
