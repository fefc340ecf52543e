package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Graph Metrics
	GraphsLoadedTotal *prometheus.CounterVec
	GraphLoadDuration *prometheus.HistogramVec
	GraphNodes        *prometheus.GaugeVec
	GraphEdges        *prometheus.GaugeVec

	// Walk Metrics
	WalksTotal      *prometheus.CounterVec
	WalkStepsTotal  *prometheus.CounterVec
	WalkDuration    *prometheus.HistogramVec
	WalkBatchesBusy prometheus.Gauge

	// Holdout Metrics
	HoldoutsTotal          *prometheus.CounterVec
	HoldoutDuration        *prometheus.HistogramVec
	HoldoutValidationEdges *prometheus.GaugeVec
	EdgesScoredTotal       *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initGraphMetrics()
	r.initWalkMetrics()
	r.initHoldoutMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
