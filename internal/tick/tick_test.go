package tick

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingClock struct {
	total atomic.Uint64
	calls atomic.Uint64
}

func (c *countingClock) TickInc(ms uint32) {
	c.total.Add(uint64(ms))
	c.calls.Add(1)
}

func TestFire_ReportsOneUnitPerCall(t *testing.T) {
	clk := &countingClock{}
	s := New(clk, time.Millisecond)

	const n = 250
	for i := 0; i < n; i++ {
		s.fire()
	}
	if got := clk.total.Load(); got != n {
		t.Errorf("clock advanced %d units, want %d", got, n)
	}
	if got := s.Fired(); got != n {
		t.Errorf("Fired() = %d, want %d", got, n)
	}
}

func TestStart_ClockMatchesFires(t *testing.T) {
	clk := &countingClock{}
	s := New(clk, time.Millisecond)
	if err := s.Start(testContext(t)); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	fired := s.Fired()
	if fired == 0 {
		t.Fatal("timer never fired")
	}
	if got := clk.total.Load(); got != fired {
		t.Errorf("clock advanced %d units for %d fires", got, fired)
	}

	// No more fires after Stop.
	time.Sleep(5 * time.Millisecond)
	if s.Fired() != fired {
		t.Error("timer fired after Stop")
	}
}

func TestStart_Errors(t *testing.T) {
	bad := New(&countingClock{}, 0)
	if err := bad.Start(testContext(t)); err != ErrBadPeriod {
		t.Errorf("Start() with zero period error = %v, want %v", err, ErrBadPeriod)
	}

	s := New(&countingClock{}, time.Millisecond)
	if err := s.Start(testContext(t)); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	if err := s.Start(testContext(t)); err != ErrAlreadyStarted {
		t.Errorf("second Start() error = %v, want %v", err, ErrAlreadyStarted)
	}
}

func TestNew_UnitsFromPeriod(t *testing.T) {
	tests := map[string]struct {
		period time.Duration
		want   uint32
	}{
		"one millisecond": {time.Millisecond, 1},
		"five":            {5 * time.Millisecond, 5},
		"sub millisecond": {500 * time.Microsecond, 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := New(&countingClock{}, tt.period).units; got != tt.want {
				t.Errorf("units = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStop_WithoutStart(t *testing.T) {
	New(&countingClock{}, time.Millisecond).Stop()
}
