//go:build !linux

package disp

import (
	"context"
	"fmt"
)

type fbHandle struct{}

// Init always fails: framebuffer devices only exist on Linux.
func (d *FBDev) Init(_ context.Context) error {
	return fmt.Errorf("disp: fbdev driver is only available on linux")
}

// Close does nothing on this platform.
func (d *FBDev) Close() error { return nil }
