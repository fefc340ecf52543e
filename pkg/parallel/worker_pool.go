package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// WorkerPool runs error-returning tasks on a fixed set of goroutines.
// The first task error (or recovered panic) is reported by Wait.
type WorkerPool struct {
	workers   int
	taskQueue chan func() error
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	errOnce  sync.Once
	firstErr error
}

var (
	// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
	ErrTooManyWorkers = errors.New("worker count exceeds maximum")
	// ErrPoolClosed is returned by Submit after Close or Wait.
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrTaskPanicked wraps a panic recovered from a task.
	ErrTaskPanicked = errors.New("task panicked")
)

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// A non-positive count selects DefaultWorkers.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func() error, workers*2), // Buffer for 2x workers
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := wp.run(task); err != nil {
			wp.errOnce.Do(func() { wp.firstErr = err })
		}
	}
}

func (wp *WorkerPool) run(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task()
}

// Submit queues a task, blocking while the queue is full. It fails with
// ErrPoolClosed after Close, or with the context error if ctx ends first.
func (wp *WorkerPool) Submit(ctx context.Context, task func() error) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.taskQueue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait closes the pool, waits for all submitted tasks and returns the first
// task error.
func (wp *WorkerPool) Wait() error {
	wp.Close()
	return wp.firstErr
}

// RunBatches splits [0, n) into consecutive batches of batchSize and runs fn
// on each with the given number of workers. After the first failure the
// remaining batches see a cancelled context and no new batches are queued.
func RunBatches(ctx context.Context, workers, n, batchSize int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	pool, err := NewWorkerPool(workers)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		fnOnce    sync.Once
		fnErr     error
		submitErr error
	)
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		err := pool.Submit(ctx, func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, start, end); err != nil {
				// Batches cancelled by this failure must not mask it.
				fnOnce.Do(func() { fnErr = err })
				cancel()
				return err
			}
			return nil
		})
		if err != nil {
			submitErr = err
			break
		}
	}

	waitErr := pool.Wait()
	switch {
	case fnErr != nil:
		return fnErr
	case waitErr != nil:
		return waitErr
	}
	return submitErr
}
