package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the materializer.
type Metrics struct {
	// Event reconciliation
	EventsApplied   *prometheus.CounterVec
	EventsDuplicate *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	EventDuration   *prometheus.HistogramVec

	// Read-only call gateway
	ProbeFailures *prometheus.CounterVec

	// Snapshot sampler
	BlockTicks       prometheus.Counter
	SnapshotsCreated prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	durationBuckets := []float64{
		0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
		0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0,
	}

	return &Metrics{
		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundgraph_events_applied_total",
			Help: "Events successfully applied by the reconciler",
		}, []string{"kind"}),

		EventsDuplicate: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundgraph_events_duplicate_total",
			Help: "Events skipped as replay duplicates",
		}, []string{"kind"}),

		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundgraph_events_failed_total",
			Help: "Events whose handler returned an error",
		}, []string{"kind"}),

		EventDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fundgraph_event_apply_duration_seconds",
			Help:    "Time to apply a single event",
			Buckets: durationBuckets,
		}, []string{"kind"}),

		ProbeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundgraph_probe_failures_total",
			Help: "Read-only contract call failures, by accessor",
		}, []string{"accessor"}),

		BlockTicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgraph_block_ticks_total",
			Help: "Block ticks observed by the snapshot sampler",
		}),

		SnapshotsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgraph_snapshots_created_total",
			Help: "Hourly fund snapshots created",
		}),
	}
}
