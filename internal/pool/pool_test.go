package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_DefaultSize(t *testing.T) {
	for _, size := range []int{0, -3} {
		if got := New(size).Size(); got != DefaultSize {
			t.Errorf("New(%d).Size() = %d, want %d", size, got, DefaultSize)
		}
	}
	if got := New(3).Size(); got != 3 {
		t.Errorf("New(3).Size() = %d, want 3", got)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := New(3)

	var running, peak atomic.Int32
	for i := 0; i < 20; i++ {
		p.Submit(func(ctx context.Context) {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}
	p.Wait()

	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", got)
	}
	if got := peak.Load(); got < 1 {
		t.Error("no task ran")
	}
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	p := New(1)
	release := make(chan struct{})

	start := time.Now()
	for i := 0; i < 5; i++ {
		p.Submit(func(ctx context.Context) { <-release })
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Submit blocked for %v", elapsed)
	}

	close(release)
	p.Wait()
}

func TestPool_DoReturnsError(t *testing.T) {
	p := New(1)
	want := errors.New("boom")
	if err := p.Do(context.Background(), func(ctx context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() error = %v, want %v", err, want)
	}
}

func TestPool_DoCanceledWhileWaiting(t *testing.T) {
	p := New(1)
	hold := make(chan struct{})
	started := make(chan struct{})
	p.Submit(func(ctx context.Context) {
		close(started)
		<-hold
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Do(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}

	close(hold)
	p.Wait()
}
