// Package pool runs background tasks with a fixed number of concurrent slots.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultSize is the number of concurrent slots when none is configured.
const DefaultSize = 10

// Pool bounds how many tasks run at once. Submission never blocks.
// A Pool is safe for concurrent use.
type Pool struct {
	size int
	sem  *semaphore.Weighted
	wg   sync.WaitGroup
}

// New creates a pool with size slots. Non-positive sizes use DefaultSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{
		size: size,
		sem:  semaphore.NewWeighted(int64(size)),
	}
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return p.size
}

// Go starts fn in the background without taking a slot and returns
// immediately. fn typically calls Do for the part that needs one.
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}

// Do waits for a free slot, runs fn in it, and returns fn's error.
// It returns ctx.Err() if ctx is done before a slot frees up.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn(ctx)
}

// Submit runs fn in a slot in the background. Submission is fire-and-forget.
func (p *Pool) Submit(fn func(ctx context.Context)) {
	p.Go(func() {
		_ = p.Do(context.Background(), func(ctx context.Context) error {
			fn(ctx)
			return nil
		})
	})
}

// Wait blocks until every task started with Go or Submit has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
