// Package tick drives the gui library clock from a periodic timer.
package tick

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrBadPeriod      = errors.New("tick: period must be positive")
	ErrAlreadyStarted = errors.New("tick: source already started")
)

// Clock is what the source advances; gui.Lib satisfies it.
type Clock interface {
	TickInc(ms uint32)
}

// Source calls Clock.TickInc once per period with the period expressed in
// milliseconds of library time. Each fire reports exactly one period, so
// late timer wakeups slow the library clock down rather than making it
// jump.
type Source struct {
	clock  Clock
	period time.Duration
	units  uint32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	fired atomic.Uint64
}

// New returns a stopped source. A period below one millisecond still
// reports one unit per fire.
func New(clock Clock, period time.Duration) *Source {
	units := uint32(period / time.Millisecond)
	if units == 0 {
		units = 1
	}
	return &Source{clock: clock, period: period, units: units}
}

// Start launches the timer goroutine. It fails on a non-positive period or
// when called twice.
func (s *Source) Start(ctx context.Context) error {
	if s.period <= 0 {
		return ErrBadPeriod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

func (s *Source) run(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.fire()
		}
	}
}

func (s *Source) fire() {
	s.clock.TickInc(s.units)
	s.fired.Add(1)
}

// Fired returns how many times the timer has fired.
func (s *Source) Fired() uint64 { return s.fired.Load() }

// Stop halts the timer and waits for its goroutine. It is safe to call on
// a source that never started.
func (s *Source) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
