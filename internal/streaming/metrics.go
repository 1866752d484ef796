package streaming

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result outcomes reported on voxelstream_chunk_results_total.
const (
	OutcomeInstalled   = "installed"
	OutcomeStale       = "stale"
	OutcomeFailed      = "failed"
	OutcomeRemeshed    = "remeshed"
	OutcomeRemeshStale = "remesh_stale"
)

// Metrics holds the streamer's Prometheus instruments.
type Metrics struct {
	Resident     prometheus.Gauge
	Results      *prometheus.CounterVec
	Queued       prometheus.Gauge
	DirtyBatches prometheus.Counter
}

// NewMetrics creates the streamer instruments and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelstream",
			Name:      "chunks_resident",
			Help:      "Chunks in the world map, placeholders included.",
		}),
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelstream",
			Name:      "chunk_results_total",
			Help:      "Worker results handled by the streamer, by outcome.",
		}, []string{"outcome"}),
		Queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelstream",
			Name:      "tasks_queued",
			Help:      "Generation tasks submitted and not yet returned.",
		}),
		DirtyBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelstream",
			Name:      "dirty_batches_total",
			Help:      "Debounced remesh batches fired.",
		}),
	}
	for _, o := range []string{OutcomeInstalled, OutcomeStale, OutcomeFailed, OutcomeRemeshed, OutcomeRemeshStale} {
		m.Results.WithLabelValues(o)
	}
	if reg != nil {
		reg.MustRegister(m.Resident, m.Results, m.Queued, m.DirtyBatches)
	}
	return m
}

func (m *Metrics) result(outcome string) {
	m.Results.WithLabelValues(outcome).Inc()
}
