package pools

import (
	"sync"
)

// Size classes, chosen around typical node degrees of association networks.
var sizeClasses = [...]int{16, 64, 256, 1024, 4096}

// maxPooledCap bounds the capacity of slices kept for reuse.
const maxPooledCap = 4096

// SlicePool pools slices of T in fixed size classes.
type SlicePool[T any] struct {
	classes [len(sizeClasses)]sync.Pool
}

// NewSlicePool creates a new slice pool.
func NewSlicePool[T any]() *SlicePool[T] {
	p := &SlicePool[T]{}
	for i, size := range sizeClasses {
		p.classes[i].New = func() any {
			s := make([]T, 0, size)
			return &s
		}
	}
	return p
}

func classFor(size int) int {
	for i, c := range sizeClasses {
		if size <= c {
			return i
		}
	}
	return -1
}

// Get returns an empty slice with at least the requested capacity.
func (p *SlicePool[T]) Get(size int) []T {
	class := classFor(size)
	if class < 0 {
		return make([]T, 0, size)
	}

	sp, ok := p.classes[class].Get().(*[]T)
	if !ok || cap(*sp) < size {
		return make([]T, 0, size)
	}
	return (*sp)[:0]
}

// Put returns a slice to the pool. Slices larger than the biggest size class
// are dropped.
func (p *SlicePool[T]) Put(s []T) {
	c := cap(s)
	if c == 0 || c > maxPooledCap {
		return
	}

	// File the slice under the largest class it can fully serve.
	class := -1
	for i, size := range sizeClasses {
		if c >= size {
			class = i
		}
	}
	if class < 0 {
		return
	}

	s = s[:0]
	p.classes[class].Put(&s)
}

var (
	defaultFloat64Pool = NewSlicePool[float64]()
	defaultUint32Pool  = NewSlicePool[uint32]()
)

// Float64s returns a float64 slice from the default pool.
func Float64s(size int) []float64 {
	return defaultFloat64Pool.Get(size)
}

// PutFloat64s returns a float64 slice to the default pool.
func PutFloat64s(s []float64) {
	defaultFloat64Pool.Put(s)
}

// NodeIDs returns a uint32 slice from the default pool.
func NodeIDs(size int) []uint32 {
	return defaultUint32Pool.Get(size)
}

// PutNodeIDs returns a uint32 slice to the default pool.
func PutNodeIDs(s []uint32) {
	defaultUint32Pool.Put(s)
}
