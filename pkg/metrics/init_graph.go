package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphsLoadedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphwalk_graphs_loaded_total",
			Help: "Total number of graphs loaded",
		},
		[]string{"source", "status"},
	)

	r.GraphLoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphwalk_graph_load_duration_seconds",
			Help:    "Time to parse and build a graph in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"source"},
	)

	r.GraphNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphwalk_graph_nodes",
			Help: "Number of nodes in a loaded graph",
		},
		[]string{"graph"},
	)

	r.GraphEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphwalk_graph_edges",
			Help: "Number of edges in a loaded graph",
		},
		[]string{"graph"},
	)
}
