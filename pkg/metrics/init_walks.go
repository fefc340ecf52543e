package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initWalkMetrics() {
	r.WalksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphwalk_walks_total",
			Help: "Total number of random walks generated",
		},
		[]string{"mode"},
	)

	r.WalkStepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphwalk_walk_steps_total",
			Help: "Total number of nodes emitted across all walks",
		},
		[]string{"mode"},
	)

	r.WalkDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphwalk_walk_duration_seconds",
			Help:    "Time to generate one walk request in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"mode"},
	)

	r.WalkBatchesBusy = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphwalk_walk_batches_in_flight",
			Help: "Number of walk batches currently running",
		},
	)
}
