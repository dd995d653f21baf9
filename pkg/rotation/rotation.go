// Package rotation runs an auto-advancing index (featured products, banner
// slides) as a cancellable background task. It never touches list state.
package rotation

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrRunning     = errors.New("rotation: already running")
	ErrNoItems     = errors.New("rotation: item count must be positive")
	ErrBadInterval = errors.New("rotation: interval must be positive")
)

// State is the lifecycle state of a Rotator.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// TickerFunc returns a tick channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Option customizes a Rotator.
type Option func(*Rotator)

// WithTicker swaps the tick source.
func WithTicker(fn TickerFunc) Option {
	return func(r *Rotator) {
		if fn != nil {
			r.ticker = fn
		}
	}
}

// OnAdvance registers a callback invoked with the new index after every
// automatic or manual move. It runs without the rotator lock held.
func OnAdvance(fn func(index int)) Option {
	return func(r *Rotator) {
		r.onAdvance = fn
	}
}

// Rotator cycles an index over [0, count).
type Rotator struct {
	interval  time.Duration
	ticker    TickerFunc
	onAdvance func(int)

	mu     sync.Mutex
	count  int
	index  int
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a stopped rotator.
func New(count int, interval time.Duration, opts ...Option) (*Rotator, error) {
	if count <= 0 {
		return nil, ErrNoItems
	}
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	r := &Rotator{count: count, interval: interval, ticker: realTicker}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start launches the ticking goroutine. It stops when ctx is cancelled or
// Stop is called.
func (r *Rotator) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := r.ticker(r.interval)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-ctx.Done():
				r.mu.Lock()
				if r.done == done {
					r.cancel = nil
					r.done = nil
				}
				r.mu.Unlock()
				return
			case <-ticks:
				r.Next()
			}
		}
	}()
	return nil
}

// Stop cancels the task and waits for it to exit. Stopping a stopped
// rotator is a no-op.
func (r *Rotator) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// State reports whether the task is running.
func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return StateRunning
	}
	return StateStopped
}

// Index returns the current position.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Next advances one step, wrapping at the end.
func (r *Rotator) Next() int {
	return r.move(1)
}

// Prev moves back one step, wrapping at the start.
func (r *Rotator) Prev() int {
	return r.move(-1)
}

// SetCount resizes the cycle, clamping the index.
func (r *Rotator) SetCount(count int) error {
	if count <= 0 {
		return ErrNoItems
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = count
	if r.index >= count {
		r.index = 0
	}
	return nil
}

func (r *Rotator) move(step int) int {
	r.mu.Lock()
	r.index = ((r.index+step)%r.count + r.count) % r.count
	index := r.index
	cb := r.onAdvance
	r.mu.Unlock()
	if cb != nil {
		cb(index)
	}
	return index
}
