package physics

import (
	"math"

	"voxelstream/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0
)

// BlockReader answers solidity queries in world block coordinates. The
// streamer and the chunk store implement it.
type BlockReader interface {
	IsAir(x, y, z int) bool
}

// RaycastResult describes the first solid cell a ray hit, if any.
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast walks the voxel grid from start along direction and reports the
// first non-air block between minDist and maxDist. Block (x,y,z) occupies
// [x,x+1)×[y,y+1)×[z,z+1). AdjacentPosition is the cell the ray left to
// enter the hit block, where a placed block would go.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, w BlockReader) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	result := RaycastResult{}
	if direction.Len() == 0 {
		return result
	}
	dir := direction.Normalize()

	var (
		cell   [3]int
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
	)
	for i := 0; i < 3; i++ {
		p := float64(start[i])
		d := float64(dir[i])
		cell[i] = int(math.Floor(p))
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - p) / d
			tDelta[i] = 1 / d
		case d < 0:
			step[i] = -1
			tMax[i] = (p - float64(cell[i])) / -d
			tDelta[i] = -1 / d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	prev := cell
	t := 0.0
	for t <= float64(maxDist) {
		if t >= float64(minDist) && !w.IsAir(cell[0], cell[1], cell[2]) {
			result.HitPosition = cell
			result.AdjacentPosition = prev
			result.Distance = float32(t)
			result.Hit = true
			return result
		}
		prev = cell
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
	return result
}
