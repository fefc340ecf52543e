package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHoldoutMetrics() {
	r.HoldoutsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphwalk_holdouts_total",
			Help: "Total number of train/validation splits",
		},
		[]string{"kind", "status"},
	)

	r.HoldoutDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphwalk_holdout_duration_seconds",
			Help:    "Time to compute a holdout in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"kind"},
	)

	r.HoldoutValidationEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphwalk_holdout_validation_edges",
			Help: "Directed edges moved to the validation graph by the last holdout",
		},
		[]string{"kind"},
	)

	r.EdgesScoredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphwalk_edges_scored_total",
			Help: "Total number of node pairs scored by a link prediction metric",
		},
		[]string{"metric"},
	)
}
