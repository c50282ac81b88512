package disp

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Memory is a headless display holding the full frame in memory. It backs
// --driver=memory for development machines and tests.
type Memory struct {
	mu      sync.Mutex
	frame   *image.RGBA
	flushes int

	dumpPath  string
	dumpScale int
}

// NewMemory returns a width x height memory display. When dumpPath is set
// the last frame is written there as PNG on Close, enlarged by scale.
func NewMemory(width, height int, dumpPath string, scale int) *Memory {
	return &Memory{
		frame:     image.NewRGBA(image.Rect(0, 0, width, height)),
		dumpPath:  dumpPath,
		dumpScale: max(scale, 1),
	}
}

func (m *Memory) Init(_ context.Context) error { return nil }

func (m *Memory) Resolution() (w, h int) {
	b := m.frame.Bounds()
	return b.Dx(), b.Dy()
}

func (m *Memory) Flush(area image.Rectangle, px []color.RGBA) error {
	if len(px) < area.Dx()*area.Dy() {
		return fmt.Errorf("disp: flush of %v got %d px", area, len(px))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	w := area.Dx()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			m.frame.SetRGBA(x, y, px[(y-area.Min.Y)*w+(x-area.Min.X)])
		}
	}
	m.flushes++
	return nil
}

// Frame returns a copy of the current frame.
func (m *Memory) Frame() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := image.NewRGBA(m.frame.Bounds())
	copy(out.Pix, m.frame.Pix)
	return out
}

// Flushes returns how many stripes were flushed.
func (m *Memory) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Close writes the PNG dump if configured.
func (m *Memory) Close() error {
	if m.dumpPath == "" {
		return nil
	}
	return m.Dump(m.dumpPath)
}

// Dump writes the current frame to path as PNG.
func (m *Memory) Dump(path string) error {
	frame := m.Frame()
	var img image.Image = frame
	if m.dumpScale > 1 {
		b := frame.Bounds()
		big := image.NewRGBA(image.Rect(0, 0, b.Dx()*m.dumpScale, b.Dy()*m.dumpScale))
		xdraw.NearestNeighbor.Scale(big, big.Bounds(), frame, b, xdraw.Src, nil)
		img = big
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("disp: encode %s: %w", path, err)
	}
	return f.Close()
}
