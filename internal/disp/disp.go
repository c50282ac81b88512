// Package disp adapts physical panels to the gui library: a flush target
// for rendered stripes and, optionally, a touch controller feeding pointer
// input.
package disp

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"touchpanel/internal/config"
	"touchpanel/internal/gui"
)

// DispBufSize is the size, in pixels, of each of the two draw buffers: 40
// full rows of the 240 px wide panel.
const DispBufSize = gui.DefaultHorRes * 40

// Driver is a display the render loop flushes into.
type Driver interface {
	Init(ctx context.Context) error
	// Resolution is valid after Init.
	Resolution() (w, h int)
	// Flush writes px (row-major, area.Dx()*area.Dy() long) to the panel
	// and returns once px may be reused.
	Flush(area image.Rectangle, px []color.RGBA) error
	Close() error
}

// Touch is a pointer input device.
type Touch interface {
	Init(ctx context.Context) error
	// Read fills data with the current pointer state. It matches
	// gui.InputReadFunc and never asks for buffered reads.
	Read(data *gui.InputData) bool
	Close() error
}

// Options are the non-config knobs of New.
type Options struct {
	// DumpPath, when set, makes the memory driver write a PNG of the last
	// frame on Close.
	DumpPath string
	// DumpScale enlarges the dump; values below 1 mean 1.
	DumpScale int
}

// New builds the display driver named by cfg.Driver.
func New(cfg config.DisplayConfig, opts Options) (Driver, error) {
	switch cfg.Driver {
	case config.DriverILI9341:
		return NewILI9341(cfg), nil
	case config.DriverFBDev:
		return NewFBDev(cfg.FBDevice, gui.DefaultHorRes, gui.DefaultVerRes), nil
	case config.DriverMemory:
		return NewMemory(gui.DefaultHorRes, gui.DefaultVerRes, opts.DumpPath, opts.DumpScale), nil
	default:
		return nil, fmt.Errorf("disp: unknown driver %q", cfg.Driver)
	}
}

// NewTouch builds the touch controller for a panel of w x h pixels, or
// returns nil when touch is disabled.
func NewTouch(cfg config.TouchConfig, w, h int) Touch {
	if !cfg.Enabled {
		return nil
	}
	return NewXPT2046(cfg, w, h)
}
