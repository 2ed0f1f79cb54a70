// Package dispatch hands work from background goroutines to the rendering
// context that owns a widget's visual state.
package dispatch

import (
	"context"
	"sync"
)

// Dispatcher runs functions on a rendering context.
type Dispatcher interface {
	// Post schedules fn to run on the rendering context. Post never blocks.
	Post(fn func())
}

// Immediate runs posted functions inline on the caller's goroutine.
type Immediate struct{}

// Compile-time check that Immediate implements Dispatcher.
var _ Dispatcher = Immediate{}

// Post runs fn immediately.
func (Immediate) Post(fn func()) { fn() }

// Queue buffers posted functions until the owning goroutine drains them.
// A Queue is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	notify  chan struct{}
}

// Compile-time check that Queue implements Dispatcher.
var _ Dispatcher = (*Queue)(nil)

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post appends fn to the queue.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain runs every queued function in post order and returns how many ran.
// Functions posted while draining run in the same call.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
		}
		ran += len(batch)
	}
}

// Len returns the number of queued functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run drains the queue whenever work is posted, until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.notify:
		}
	}
}
