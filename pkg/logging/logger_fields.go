package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Path(p string) Field {
	return String("path", p)
}

// Graph names the graph an operation works on.
func Graph(name string) Field {
	return String("graph", name)
}

func Nodes(n int) Field {
	return Int("nodes", n)
}

func Edges(n uint64) Field {
	return Uint64("edges", n)
}

func Walks(n int) Field {
	return Int("walks", n)
}

func TrainSize(f float64) Field {
	return Float64("train_size", f)
}

// Seed records the random state that makes a run reproducible.
func Seed(seed uint64) Field {
	return Uint64("random_state", seed)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Dataset(repository, name string) Field {
	return String("dataset", repository+"/"+name)
}
