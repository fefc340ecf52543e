package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool, err := NewWorkerPool(4)
	if err != nil {
		t.Fatalf("NewWorkerPool failed: %v", err)
	}

	executed := false
	if err := pool.Submit(context.Background(), func() error {
		executed = true
		return nil
	}); err != nil {
		t.Errorf("Task submission failed: %v", err)
	}

	if err := pool.Wait(); err != nil {
		t.Errorf("Wait returned %v", err)
	}
	if !executed {
		t.Error("Task was not executed")
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool, _ := NewWorkerPool(10)

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for range numTasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Submit(context.Background(), func() error {
				atomic.AddInt64(&counter, 1)
				return nil
			})
		}()
	}

	wg.Wait()
	if err := pool.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolCloseRace validates that closing the pool while submitting
// tasks doesn't panic.
func TestWorkerPoolCloseRace(t *testing.T) {
	for range 50 {
		pool, _ := NewWorkerPool(4)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 10 {
					_ = pool.Submit(context.Background(), func() error {
						time.Sleep(time.Millisecond)
						return nil
					})
				}
			}()
		}

		time.Sleep(2 * time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool, _ := NewWorkerPool(2)
	pool.Close()

	err := pool.Submit(context.Background(), func() error {
		t.Error("This task should never execute")
		return nil
	})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
}

func TestWorkerPoolFirstErrorAndPanics(t *testing.T) {
	pool, _ := NewWorkerPool(1)
	boom := errors.New("boom")

	_ = pool.Submit(context.Background(), func() error { return boom })
	_ = pool.Submit(context.Background(), func() error { panic("bad batch") })

	if err := pool.Wait(); !errors.Is(err, boom) {
		t.Errorf("Expected first error boom, got %v", err)
	}

	pool, _ = NewWorkerPool(1)
	_ = pool.Submit(context.Background(), func() error { panic("bad batch") })
	if err := pool.Wait(); !errors.Is(err, ErrTaskPanicked) {
		t.Errorf("Expected ErrTaskPanicked, got %v", err)
	}
}

func TestWorkerPoolSubmitHonoursContext(t *testing.T) {
	pool, _ := NewWorkerPool(1)
	release := make(chan struct{})

	// Occupy the worker and fill the queue.
	for range 3 {
		_ = pool.Submit(context.Background(), func() error {
			<-release
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}

	close(release)
	if err := pool.Wait(); err != nil {
		t.Errorf("Wait returned %v", err)
	}
}

func TestRunBatches(t *testing.T) {
	t.Run("covers every index once", func(t *testing.T) {
		seen := make([]int32, 103)
		err := RunBatches(context.Background(), 4, len(seen), 10, func(_ context.Context, start, end int) error {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("RunBatches failed: %v", err)
		}
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("Index %d visited %d times", i, c)
			}
		}
	})

	t.Run("first error wins", func(t *testing.T) {
		boom := errors.New("boom")
		err := RunBatches(context.Background(), 2, 100, 1, func(ctx context.Context, start, _ int) error {
			if start == 5 {
				return boom
			}
			return nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("Expected boom, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RunBatches(ctx, 2, 100, 1, func(context.Context, int, int) error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})

	t.Run("empty range", func(t *testing.T) {
		if err := RunBatches(context.Background(), 2, 0, 1, nil); err != nil {
			t.Errorf("Expected nil, got %v", err)
		}
	})
}
