package profiling

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// frame accumulates time per operation name between ResetFrame calls.
type frame struct {
	mu     sync.Mutex
	totals map[string]time.Duration
}

func (f *frame) add(name string, d time.Duration) {
	f.mu.Lock()
	f.totals[name] += d
	f.mu.Unlock()
}

var (
	current = &frame{totals: make(map[string]time.Duration)}

	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxelstream",
		Name:      "op_duration_seconds",
		Help:      "Duration of tracked operations.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"op"})
)

// Collector exposes the operation histogram for registration.
func Collector() prometheus.Collector {
	return opDuration
}

// Track starts timing name; the returned func stops it. The duration goes to
// the current frame and to the histogram:
//
//	defer profiling.Track("meshing.Build")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		opDuration.WithLabelValues(name).Observe(d.Seconds())
		current.add(name, d)
	}
}

// ResetFrame starts a new frame.
func ResetFrame() {
	current.mu.Lock()
	clear(current.totals)
	current.mu.Unlock()
}

// Snapshot copies the totals of the current frame.
func Snapshot() map[string]time.Duration {
	current.mu.Lock()
	defer current.mu.Unlock()
	return maps.Clone(current.totals)
}

// TopN renders the n most expensive operations of the current frame, e.g.
// "meshing.Build:4.2ms, terrain.Generate:2.1ms".
func TopN(n int) string {
	totals := Snapshot()
	names := slices.SortedFunc(maps.Keys(totals), func(a, b string) int {
		return cmp.Or(cmp.Compare(totals[b], totals[a]), strings.Compare(a, b))
	})
	names = names[:min(n, len(names))]
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ":" + formatMs(totals[name])
	}
	return strings.Join(parts, ", ")
}

func formatMs(d time.Duration) string {
	s := fmt.Sprintf("%.1f", float64(d.Microseconds())/1000)
	return strings.TrimSuffix(s, ".0") + "ms"
}
