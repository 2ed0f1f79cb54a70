package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestImmediate_RunsInline(t *testing.T) {
	ran := false
	Immediate{}.Post(func() { ran = true })
	if !ran {
		t.Error("Immediate.Post() should run fn before returning")
	}
}

func TestQueue_DrainOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 3; i++ {
		q.Post(func() { got = append(got, i) })
	}

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if n := q.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d, want %d", i, v, i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", q.Len())
	}
}

func TestQueue_DrainRunsNestedPosts(t *testing.T) {
	q := NewQueue()
	nested := false
	q.Post(func() {
		q.Post(func() { nested = true })
	})

	if n := q.Drain(); n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}
	if !nested {
		t.Error("nested post should run in the same Drain")
	}
}

func TestQueue_Run(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx) }()

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go q.Post(wg.Done)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted functions did not run")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
