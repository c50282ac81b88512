package gui

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync/atomic"
)

// Default panel resolution used by NewDisplayDriver.
const (
	DefaultHorRes = 240
	DefaultVerRes = 320
)

// maxInvalidAreas caps the invalid area list; past it the whole display is
// redrawn.
const maxInvalidAreas = 32

var (
	ErrNoBuffer       = errors.New("gui: draw buffer has no first buffer")
	ErrBufferTooSmall = errors.New("gui: draw buffer smaller than declared size")
	ErrNoFlush        = errors.New("gui: display driver has no flush callback")
	ErrDisplayExists  = errors.New("gui: a display is already registered")
	ErrBufferNarrow   = errors.New("gui: draw buffer cannot hold one display row")
	ErrBadResolution  = errors.New("gui: display resolution must be positive")
)

// DrawBuf describes the buffers the library renders into. With two buffers
// rendering alternates between them so one can be flushed while the other
// is drawn.
type DrawBuf struct {
	bufs   [2][]color.RGBA
	size   int
	active int
}

// NewDrawBuf initializes a draw buffer of sizePx pixels. buf2 may be nil
// for single buffering; when set it must be as large as buf1.
func NewDrawBuf(buf1, buf2 []color.RGBA, sizePx int) (*DrawBuf, error) {
	if buf1 == nil {
		return nil, ErrNoBuffer
	}
	if len(buf1) < sizePx || (buf2 != nil && len(buf2) < sizePx) {
		return nil, ErrBufferTooSmall
	}
	return &DrawBuf{bufs: [2][]color.RGBA{buf1, buf2}, size: sizePx}, nil
}

// Size returns the buffer capacity in pixels.
func (b *DrawBuf) Size() int { return b.size }

// Double reports whether a second buffer is in use.
func (b *DrawBuf) Double() bool { return b.bufs[1] != nil }

func (b *DrawBuf) current() []color.RGBA { return b.bufs[b.active][:b.size] }

func (b *DrawBuf) swap() {
	if b.bufs[1] != nil {
		b.active ^= 1
	}
}

// FlushFunc writes px, row-major and exactly area.Dx()*area.Dy() long, to
// the panel. It must call Display.FlushReady once the buffer may be reused,
// either before returning or later from another goroutine.
type FlushFunc func(d *Display, area image.Rectangle, px []color.RGBA)

// DisplayDriver is the descriptor registered with RegisterDisplay.
type DisplayDriver struct {
	HorRes int
	VerRes int
	Buffer *DrawBuf
	Flush  FlushFunc
}

// NewDisplayDriver returns a descriptor with the default resolution.
func NewDisplayDriver(buf *DrawBuf, flush FlushFunc) DisplayDriver {
	return DisplayDriver{
		HorRes: DefaultHorRes,
		VerRes: DefaultVerRes,
		Buffer: buf,
		Flush:  flush,
	}
}

// Display is a registered display.
type Display struct {
	lib         *Lib
	drv         DisplayDriver
	invalid     []image.Rectangle
	lastRefresh uint32
	flushing    atomic.Bool
}

// RegisterDisplay makes drv the library's display.
func (l *Lib) RegisterDisplay(drv DisplayDriver) (*Display, error) {
	if l.disp != nil {
		return nil, ErrDisplayExists
	}
	if drv.Buffer == nil {
		return nil, ErrNoBuffer
	}
	if drv.Flush == nil {
		return nil, ErrNoFlush
	}
	if drv.HorRes <= 0 || drv.VerRes <= 0 {
		return nil, ErrBadResolution
	}
	if drv.Buffer.size < drv.HorRes {
		return nil, fmt.Errorf("%w: %d px for %d px rows", ErrBufferNarrow, drv.Buffer.size, drv.HorRes)
	}
	d := &Display{lib: l, drv: drv, lastRefresh: l.TickGet()}
	l.disp = d
	return d, nil
}

// Display returns the registered display or nil.
func (l *Lib) Display() *Display { return l.disp }

// Resolution returns the display size in pixels.
func (d *Display) Resolution() (w, h int) { return d.drv.HorRes, d.drv.VerRes }

// FlushReady tells the library the last flushed buffer is free again.
func (d *Display) FlushReady() { d.flushing.Store(false) }

// InvalidAreas returns a copy of the areas waiting to be redrawn.
func (d *Display) InvalidAreas() []image.Rectangle {
	return append([]image.Rectangle(nil), d.invalid...)
}

func (d *Display) area() image.Rectangle {
	return image.Rect(0, 0, d.drv.HorRes, d.drv.VerRes)
}

// invalidate adds r to the invalid list, merging it with an overlapping
// area when the union is not larger than the two areas together.
func (d *Display) invalidate(r image.Rectangle) {
	r = r.Intersect(d.area())
	if r.Empty() {
		return
	}
	for i, cur := range d.invalid {
		if r.In(cur) {
			return
		}
		if !r.Overlaps(cur) && !touches(r, cur) {
			continue
		}
		u := r.Union(cur)
		if areaOf(u) <= areaOf(r)+areaOf(cur) {
			d.invalid[i] = u
			return
		}
	}
	if len(d.invalid) >= maxInvalidAreas {
		d.invalid = append(d.invalid[:0], d.area())
		return
	}
	d.invalid = append(d.invalid, r)
}

func touches(a, b image.Rectangle) bool {
	return a.Inset(-1).Overlaps(b)
}

func areaOf(r image.Rectangle) int { return r.Dx() * r.Dy() }

// refresh redraws every invalid area in stripes that fit the draw buffer.
func (d *Display) refresh() {
	if len(d.invalid) == 0 || d.lib.active == nil {
		return
	}
	areas := d.invalid
	d.invalid = nil
	for _, a := range areas {
		d.refreshArea(a)
	}
	d.lib.stats.refreshes.Add(1)
}

func (d *Display) refreshArea(a image.Rectangle) {
	buf := d.drv.Buffer
	rows := buf.size / a.Dx()
	for y := a.Min.Y; y < a.Max.Y; y += rows {
		stripe := image.Rect(a.Min.X, y, a.Max.X, min(y+rows, a.Max.Y))
		n := stripe.Dx() * stripe.Dy()

		// With one buffer the previous flush must finish before redrawing
		// into it; with two it must finish before the next flush starts.
		if !buf.Double() {
			d.waitFlush()
		}
		px := buf.current()[:n]
		c := &canvas{area: stripe, px: px}
		c.fill(stripe, ColorWhite, OpaCover)
		drawObj(c, d.lib.active, stripe)

		d.waitFlush()
		d.flushing.Store(true)
		d.drv.Flush(d, stripe, px)
		d.lib.stats.flushes.Add(1)
		d.lib.stats.flushedPixels.Add(uint64(n))
		buf.swap()
	}
}

func (d *Display) waitFlush() {
	for d.flushing.Load() {
		runtime.Gosched()
	}
}
