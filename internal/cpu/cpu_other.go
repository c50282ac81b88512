//go:build !linux

package cpu

import (
	"fmt"
	"runtime"
)

const Supported = false

// PinCurrentThread only locks the goroutine to its OS thread; affinity is
// not available on this platform.
func PinCurrentThread(core int) error {
	if core < 0 || core >= runtime.NumCPU() {
		return fmt.Errorf("%w: %d of %d", ErrBadCore, core, runtime.NumCPU())
	}
	runtime.LockOSThread()
	return nil
}

func CurrentCores() ([]int, error) {
	cores := make([]int, runtime.NumCPU())
	for i := range cores {
		cores[i] = i
	}
	return cores, nil
}
