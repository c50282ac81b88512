// Package gui is a small retained-mode widget library for the touch panel.
//
// A Lib owns the widget tree, one display and optional pointer input
// devices. Everything except TickInc, TickGet and Stats must be called
// from one goroutine at a time; callers serialize access with their own
// mutex around TaskHandler and any widget calls.
package gui

import (
	"sync/atomic"
)

// Periods, in library clock milliseconds, of the internal jobs run by
// TaskHandler.
const (
	RefreshPeriod = 30
	InputPeriod   = 30
)

// Lib is one instance of the library.
type Lib struct {
	tick atomic.Uint32

	lastID  int
	screens []*Obj
	active  *Obj
	disp    *Display
	inputs  []*InputDevice
	themes  map[Kind]*Style

	// inTask is set while TaskHandler runs; handlers must not re-enter it.
	inTask bool
	stats  counters
}

type counters struct {
	refreshes     atomic.Uint64
	flushes       atomic.Uint64
	flushedPixels atomic.Uint64
	events        atomic.Uint64
	taskRuns      atomic.Uint64
}

// Stats is a snapshot of the library counters.
type Stats struct {
	Tick          uint32
	TaskRuns      uint64
	Refreshes     uint64
	Flushes       uint64
	FlushedPixels uint64
	Events        uint64
}

// New initializes a library instance.
func New() *Lib {
	return &Lib{themes: make(map[Kind]*Style)}
}

// TickInc advances the library clock by ms. It is safe to call from any
// goroutine without holding the caller's GUI lock.
func (l *Lib) TickInc(ms uint32) {
	l.tick.Add(ms)
}

// TickGet returns the library clock in milliseconds. It wraps around.
func (l *Lib) TickGet() uint32 {
	return l.tick.Load()
}

// TickElapsed returns the milliseconds since prev, wrap-around safe.
func (l *Lib) TickElapsed(prev uint32) uint32 {
	return l.TickGet() - prev
}

// Stats may be called without the GUI lock.
func (l *Lib) Stats() Stats {
	return Stats{
		Tick:          l.TickGet(),
		TaskRuns:      l.stats.taskRuns.Load(),
		Refreshes:     l.stats.refreshes.Load(),
		Flushes:       l.stats.flushes.Load(),
		FlushedPixels: l.stats.flushedPixels.Load(),
		Events:        l.stats.events.Load(),
	}
}

func (l *Lib) theme(k Kind) *Style {
	s, ok := l.themes[k]
	if !ok {
		s = theme(k)
		l.themes[k] = s
	}
	return s
}

// Screens returns every screen created so far.
func (l *Lib) Screens() []*Obj {
	return append([]*Obj(nil), l.screens...)
}

// ActiveScreen returns the loaded screen or nil.
func (l *Lib) ActiveScreen() *Obj { return l.active }

// LoadScreen makes scr the displayed screen and schedules a full redraw.
func (l *Lib) LoadScreen(scr *Obj) {
	if scr.parent != nil {
		panic("gui: only screens can be loaded")
	}
	l.active = scr
	if l.disp != nil {
		l.disp.invalidate(l.disp.area())
	}
}

// Walk calls fn for scr and all of its descendants, parents first.
func Walk(scr *Obj, fn func(o *Obj)) {
	fn(scr)
	for _, c := range scr.children {
		Walk(c, fn)
	}
}

// TaskHandler runs the library jobs that are due: input polling and event
// dispatch, then redrawing invalid areas. Call it periodically with the GUI
// lock held.
func (l *Lib) TaskHandler() {
	if l.inTask {
		panic("gui: TaskHandler re-entered from an event handler")
	}
	l.inTask = true
	defer func() { l.inTask = false }()
	l.stats.taskRuns.Add(1)

	for _, in := range l.inputs {
		if l.TickElapsed(in.lastRead) >= InputPeriod {
			in.lastRead = l.TickGet()
			in.poll()
		}
	}

	if d := l.disp; d != nil && l.TickElapsed(d.lastRefresh) >= RefreshPeriod {
		d.lastRefresh = l.TickGet()
		d.refresh()
	}
}
