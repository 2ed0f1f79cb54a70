package simon

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// MinimalRate is the shortest time a section may stay highlighted.
const MinimalRate = 120 * time.Millisecond

// State is the lifecycle state of an animation.
type State int32

// Animation states.
const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// AnimationListener is told when a sequence starts and stops. Both calls
// run on the circle's rendering context.
type AnimationListener interface {
	Started()
	Stopped()
}

// ListenerFuncs adapts optional functions to AnimationListener.
type ListenerFuncs struct {
	OnStarted func()
	OnStopped func()
}

// Started calls OnStarted if set.
func (f ListenerFuncs) Started() {
	if f.OnStarted != nil {
		f.OnStarted()
	}
}

// Stopped calls OnStopped if set.
func (f ListenerFuncs) Stopped() {
	if f.OnStopped != nil {
		f.OnStopped()
	}
}

// Animator plays highlight sequences on a circle.
type Animator struct {
	circle   *Circle
	listener AnimationListener
}

// NewAnimator creates an animator for c. listener may be nil.
func NewAnimator(c *Circle, listener AnimationListener) *Animator {
	if listener == nil {
		listener = ListenerFuncs{}
	}
	return &Animator{circle: c, listener: listener}
}

// Animation is one running or finished sequence.
type Animation struct {
	circle   *Circle
	listener AnimationListener
	sequence []int
	rate     time.Duration
	state    atomic.Int32
	done     chan struct{}
}

// Animate highlights each section of sequence in turn for rate, then dims
// it, on a background goroutine. It panics if rate is below MinimalRate.
//
// The sequence stops early, without error, once the circle is detached;
// Stopped is still delivered.
func (a *Animator) Animate(sequence []int, rate time.Duration) *Animation {
	if rate < MinimalRate {
		panic(fmt.Sprintf("simon: rate must be at least %v, got %v", MinimalRate, rate))
	}

	anim := &Animation{
		circle:   a.circle,
		listener: a.listener,
		sequence: append([]int(nil), sequence...),
		rate:     rate,
		done:     make(chan struct{}),
	}
	anim.state.Store(int32(StateRunning))
	go anim.run()
	return anim
}

// State returns the current state.
func (a *Animation) State() State {
	return State(a.state.Load())
}

// Done is closed once the sequence finished and Stopped was posted.
func (a *Animation) Done() <-chan struct{} {
	return a.done
}

func (a *Animation) run() {
	c := a.circle
	d := c.dispatcher

	d.Post(a.listener.Started)

	for step, section := range a.sequence {
		if !c.Alive() {
			c.logger.Debug("circle detached, stopping animation",
				zap.Int("step", step),
				zap.Int("steps", len(a.sequence)),
			)
			break
		}
		d.Post(func() { c.highlight(section) })
		time.Sleep(a.rate)
		d.Post(func() { c.dim(section) })
	}

	a.state.Store(int32(StateIdle))
	d.Post(a.listener.Stopped)
	close(a.done)
}
