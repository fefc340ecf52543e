package metrics

import (
	"runtime"
	"time"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// RecordGraphLoad records a graph build from source ("edgelist", "dataset").
// Size gauges are only updated for successful loads.
func (r *Registry) RecordGraphLoad(source, graph string, nodes int, edges uint64, duration time.Duration, err error) {
	r.GraphsLoadedTotal.WithLabelValues(source, status(err)).Inc()
	r.GraphLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		return
	}
	r.GraphNodes.WithLabelValues(graph).Set(float64(nodes))
	r.GraphEdges.WithLabelValues(graph).Set(float64(edges))
}

// RecordWalks records a walk request; mode is "complete" or "random".
func (r *Registry) RecordWalks(mode string, walks int, steps uint64, duration time.Duration) {
	r.WalksTotal.WithLabelValues(mode).Add(float64(walks))
	r.WalkStepsTotal.WithLabelValues(mode).Add(float64(steps))
	r.WalkDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// TrackWalkBatch marks a walk batch as running until the returned func is called.
func (r *Registry) TrackWalkBatch() func() {
	r.WalkBatchesBusy.Inc()
	return r.WalkBatchesBusy.Dec
}

// RecordHoldout records a holdout; kind is "connected" or "random".
func (r *Registry) RecordHoldout(kind string, validationEdges uint64, duration time.Duration, err error) {
	r.HoldoutsTotal.WithLabelValues(kind, status(err)).Inc()
	r.HoldoutDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err == nil {
		r.HoldoutValidationEdges.WithLabelValues(kind).Set(float64(validationEdges))
	}
}

// RecordEdgeScores records pairs scored with a link prediction metric.
func (r *Registry) RecordEdgeScores(metric string, pairs int) {
	r.EdgesScoredTotal.WithLabelValues(metric).Add(float64(pairs))
}

// UpdateSystemMetrics samples uptime, goroutines and memory.
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
