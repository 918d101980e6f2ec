// Package worker provides a bounded worker pool for per-article processing
// within one ingestion run.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

const (
	// DefaultPoolSize is the default number of concurrent workers.
	DefaultPoolSize = 8

	// MinPoolSize is the minimum allowed pool size.
	MinPoolSize = 1

	// MaxPoolSize is the maximum allowed pool size.
	MaxPoolSize = 64
)

// ErrInvalidPoolSize is returned for out-of-range pool sizes.
var ErrInvalidPoolSize = errors.New("pool size out of range")

// Task processes one unit of work and returns its count contribution (1 for
// a newly created item, 0 otherwise). Tasks must contain their own failures.
type Task func(ctx context.Context) int

// Pool runs tasks with bounded, unordered concurrency and sums their count
// contributions. One pool serves one ingestion run; it is not reused.
type Pool struct {
	size int
	sem  chan struct{}
	wg   sync.WaitGroup

	processed atomic.Int64
	total     atomic.Int64
}

// NewPool creates a pool with the given concurrency bound.
func NewPool(size int) (*Pool, error) {
	if size < MinPoolSize || size > MaxPoolSize {
		return nil, ErrInvalidPoolSize
	}
	return &Pool{
		size: size,
		sem:  make(chan struct{}, size),
	}, nil
}

// Submit schedules a task, blocking while all workers are busy. It returns
// the context error if ctx is done before a slot frees up.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		n := task(ctx)
		p.processed.Add(1)
		p.total.Add(int64(n))
	}()

	return nil
}

// Wait blocks until all submitted tasks have finished and returns the summed
// count contributions.
func (p *Pool) Wait() int {
	p.wg.Wait()
	return int(p.total.Load())
}

// Processed returns how many tasks have completed so far.
func (p *Pool) Processed() int {
	return int(p.processed.Load())
}

// Size returns the concurrency bound.
func (p *Pool) Size() int {
	return p.size
}
