package health

import (
	"os"
	"runtime"
	"sync"
)

// CacheCheck reports on the graph cache root. A missing root is degraded
// since edge list sources still work without it.
func CacheCheck(root string) CheckFunc {
	return func() Check {
		check := Check{Details: map[string]any{"path": root}}
		info, err := os.Stat(root)
		switch {
		case os.IsNotExist(err):
			check.Status = StatusDegraded
			check.Message = "cache directory does not exist"
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case !info.IsDir():
			check.Status = StatusUnhealthy
			check.Message = "cache path is not a directory"
		default:
			check.Status = StatusHealthy
		}
		return check
	}
}

// MemoryCheck reports degraded once the heap exceeds limit bytes. A zero
// limit only reports usage.
func MemoryCheck(limit uint64) CheckFunc {
	return memoryCheck(limit, func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.HeapAlloc, m.Sys
	})
}

func memoryCheck(limit uint64, usage func() (heap, sys uint64)) CheckFunc {
	return func() Check {
		heap, sys := usage()
		check := Check{
			Status: StatusHealthy,
			Details: map[string]any{
				"heap_bytes": heap,
				"sys_bytes":  sys,
			},
		}
		if limit > 0 && heap > limit {
			check.Status = StatusDegraded
			check.Message = "heap above limit"
		}
		return check
	}
}

// Stage tracks what the process is doing. It is ready once a graph is
// loaded.
type Stage struct {
	mu     sync.RWMutex
	name   string
	graph  string
	loaded bool
}

// NewStage starts in the given stage with no graph loaded.
func NewStage(name string) *Stage {
	return &Stage{name: name}
}

// Set moves to a new stage.
func (s *Stage) Set(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// Loaded records that graph is in memory.
func (s *Stage) Loaded(graph string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = graph
	s.loaded = true
}

// Check is a readiness check that fails until a graph is loaded.
func (s *Stage) Check() Check {
	s.mu.RLock()
	defer s.mu.RUnlock()
	check := Check{
		Status:  StatusHealthy,
		Details: map[string]any{"stage": s.name},
	}
	if !s.loaded {
		check.Status = StatusUnhealthy
		check.Message = "no graph loaded"
		return check
	}
	check.Details["graph"] = s.graph
	return check
}
