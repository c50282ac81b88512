// Package app runs the render task: it brings up the gui library on a
// display driver, starts the tick source, builds the screen and then
// services the library under one mutex until its context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"touchpanel/internal/assets"
	"touchpanel/internal/disp"
	"touchpanel/internal/gui"
	"touchpanel/internal/log"
	"touchpanel/internal/tick"
	"touchpanel/internal/ui"
)

// State is the render task phase.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const (
	DefaultTickPeriod   = time.Millisecond
	DefaultRenderPeriod = 10 * time.Millisecond
)

var (
	ErrNoDriver    = errors.New("app: no display driver")
	ErrAllocFailed = errors.New("app: draw buffer allocation failed")
)

// AllocFunc returns a pixel buffer of n pixels.
type AllocFunc func(n int) ([]color.RGBA, error)

// HeapAlloc allocates from the Go heap.
func HeapAlloc(n int) ([]color.RGBA, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d px", ErrAllocFailed, n)
	}
	return make([]color.RGBA, n), nil
}

// Ticker advances the library clock in the background.
type Ticker interface {
	Start(ctx context.Context) error
	Stop()
}

func newTickSource(c tick.Clock, period time.Duration) Ticker {
	return tick.New(c, period)
}

// Options configures a Task. Only Driver is required.
type Options struct {
	Driver disp.Driver
	// Touch is registered as a pointer input when set.
	Touch disp.Touch

	Alloc        AllocFunc
	TickPeriod   time.Duration
	RenderPeriod time.Duration

	// Icon overrides the compiled-in thermometer bitmap.
	Icon *gui.ImageDescriptor

	NewTicker func(c tick.Clock, period time.Duration) Ticker
	Build     func(lib *gui.Lib, icon *gui.ImageDescriptor) (*ui.Context, error)
}

// Task is the render task. Every call into the gui library happens with
// mu held.
type Task struct {
	opts Options

	mu     sync.Mutex
	lib    *gui.Lib
	ui     *ui.Context
	bufs   [2][]color.RGBA
	ticker Ticker

	driverUp bool
	touchUp  bool

	// stats exposes the library counters without the lock.
	stats atomic.Pointer[gui.Lib]

	state atomic.Int32
	ready chan struct{}
}

// New returns a task in the starting state. Zero options get defaults.
func New(opts Options) *Task {
	if opts.Alloc == nil {
		opts.Alloc = HeapAlloc
	}
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = DefaultTickPeriod
	}
	if opts.RenderPeriod <= 0 {
		opts.RenderPeriod = DefaultRenderPeriod
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newTickSource
	}
	if opts.Build == nil {
		opts.Build = ui.Build
	}
	return &Task{opts: opts, ready: make(chan struct{})}
}

func (t *Task) State() State { return State(t.state.Load()) }

// Ready is closed once the task is running.
func (t *Task) Ready() <-chan struct{} { return t.ready }

// Lib returns the library instance; nil before Run starts.
func (t *Task) Lib() *gui.Lib {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lib
}

// Stats returns the library counters. It does not take the GUI lock and
// returns zeros before startup.
func (t *Task) Stats() gui.Stats {
	if lib := t.stats.Load(); lib != nil {
		return lib.Stats()
	}
	return gui.Stats{}
}

// Do runs fn with the GUI lock held. It is the only safe way to touch
// widgets from outside the render task.
func (t *Task) Do(fn func(lib *gui.Lib, c *ui.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.lib, t.ui)
}

// Run starts the task and services the library until ctx is cancelled. It
// returns an error only when startup fails.
func (t *Task) Run(ctx context.Context) error {
	if err := t.start(ctx); err != nil {
		t.shutdown()
		return err
	}
	log.Info("render task running", "render_period", t.opts.RenderPeriod.String())
	close(t.ready)

	t.loop(ctx)

	t.shutdown()
	log.Info("render task stopped")
	return nil
}

func (t *Task) start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.Driver == nil {
		return ErrNoDriver
	}
	t.lib = gui.New()
	t.stats.Store(t.lib)

	if err := t.opts.Driver.Init(ctx); err != nil {
		return fmt.Errorf("app: display init: %w", err)
	}
	t.driverUp = true

	for i := range t.bufs {
		buf, err := t.opts.Alloc(disp.DispBufSize)
		if err != nil {
			return fmt.Errorf("app: draw buffer %d: %w", i+1, err)
		}
		t.bufs[i] = buf
	}
	db, err := gui.NewDrawBuf(t.bufs[0], t.bufs[1], disp.DispBufSize)
	if err != nil {
		return fmt.Errorf("app: draw buffer: %w", err)
	}

	drv := gui.NewDisplayDriver(db, t.flush)
	drv.HorRes, drv.VerRes = t.opts.Driver.Resolution()
	if _, err := t.lib.RegisterDisplay(drv); err != nil {
		return fmt.Errorf("app: register display: %w", err)
	}
	log.Debug("display registered", "width", drv.HorRes, "height", drv.VerRes, "buf_px", disp.DispBufSize)

	if t.opts.Touch != nil {
		if err := t.opts.Touch.Init(ctx); err != nil {
			return fmt.Errorf("app: touch init: %w", err)
		}
		t.touchUp = true
		t.lib.RegisterInput(gui.InputDriver{Read: t.opts.Touch.Read})
		log.Debug("touch input registered")
	}

	t.ticker = t.opts.NewTicker(t.lib, t.opts.TickPeriod)
	if err := t.ticker.Start(ctx); err != nil {
		t.ticker = nil
		return fmt.Errorf("app: tick source: %w", err)
	}

	icon := t.opts.Icon
	if icon == nil {
		if icon, err = assets.Thermometer(); err != nil {
			return err
		}
	}
	if t.ui, err = t.opts.Build(t.lib, icon); err != nil {
		return fmt.Errorf("app: build ui: %w", err)
	}

	t.state.Store(int32(StateRunning))
	return nil
}

func (t *Task) loop(ctx context.Context) {
	timer := time.NewTimer(t.opts.RenderPeriod)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		t.step()
		timer.Reset(t.opts.RenderPeriod)
	}
}

// step runs one library task cycle under the lock.
func (t *Task) step() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lib.TaskHandler()
}

// flush hands a rendered stripe to the driver. The driver returns once the
// pixels were consumed, so the buffer is released right away.
func (t *Task) flush(d *gui.Display, area image.Rectangle, px []color.RGBA) {
	if err := t.opts.Driver.Flush(area, px); err != nil {
		log.Error("flush failed", err, "area", area.String())
	}
	d.FlushReady()
}

// shutdown stops the tick source, closes the devices and drops the draw
// buffers. It is safe after a partial start.
func (t *Task) shutdown() {
	if t.ticker != nil {
		t.ticker.Stop()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.touchUp {
		if err := t.opts.Touch.Close(); err != nil {
			log.Warn("touch close failed", "err", err.Error())
		}
		t.touchUp = false
	}
	if t.driverUp {
		if err := t.opts.Driver.Close(); err != nil {
			log.Error("display close failed", err)
		}
		t.driverUp = false
	}
	t.bufs = [2][]color.RGBA{}
	t.state.Store(int32(StateStopped))
}
