package pools

import (
	"sync"
	"testing"
)

func TestSlicePool_Get(t *testing.T) {
	pool := NewSlicePool[float64]()

	tests := []struct {
		size   int
		minCap int
	}{
		{1, 1},
		{16, 16},
		{17, 17},
		{300, 300},
		{4096, 4096},
		{10000, 10000},
	}

	for _, tt := range tests {
		s := pool.Get(tt.size)
		if len(s) != 0 {
			t.Errorf("Get(%d) length = %d, want 0", tt.size, len(s))
		}
		if cap(s) < tt.minCap {
			t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(s), tt.minCap)
		}
	}
}

func TestSlicePool_PutAndReuse(t *testing.T) {
	pool := NewSlicePool[uint32]()

	s := pool.Get(50)
	s = append(s, 1, 2, 3)
	pool.Put(s)

	reused := pool.Get(50)
	if len(reused) != 0 {
		t.Errorf("Reused slice length = %d, want 0", len(reused))
	}
	if cap(reused) < 50 {
		t.Errorf("Reused slice capacity = %d, want >= 50", cap(reused))
	}
}

func TestSlicePool_OddCapacityServesSmallerClass(t *testing.T) {
	pool := NewSlicePool[float64]()

	// A 100-capacity slice must never be handed out for a 256 request.
	pool.Put(make([]float64, 0, 100))
	for range 10 {
		if s := pool.Get(256); cap(s) < 256 {
			t.Fatalf("Get(256) capacity = %d", cap(s))
		}
	}
}

func TestSlicePool_OversizedNotPooled(t *testing.T) {
	pool := NewSlicePool[float64]()
	pool.Put(make([]float64, 0, 100000))
	pool.Put(nil)
}

func TestDefaultPools(t *testing.T) {
	w := Float64s(32)
	if cap(w) < 32 {
		t.Errorf("Float64s(32) capacity = %d, want >= 32", cap(w))
	}
	PutFloat64s(w)

	n := NodeIDs(700)
	if cap(n) < 700 {
		t.Errorf("NodeIDs(700) capacity = %d, want >= 700", cap(n))
	}
	PutNodeIDs(n)
}

func TestSlicePool_Concurrent(t *testing.T) {
	pool := NewSlicePool[float64]()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s := pool.Get(32)
				s = append(s, 1, 2, 3, 4, 5, 6, 7, 8)
				pool.Put(s)
			}
		}()
	}

	wg.Wait()
}

func BenchmarkSlicePool_Get(b *testing.B) {
	pool := NewSlicePool[float64]()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s := pool.Get(128)
		pool.Put(s)
	}
}
