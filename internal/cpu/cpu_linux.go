//go:build linux

package cpu

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Supported reports whether PinCurrentThread has an effect.
const Supported = true

// PinCurrentThread locks the calling goroutine to its OS thread and
// restricts that thread to core. The goroutine stays locked for the rest
// of its life. The core must be in the process affinity mask.
func PinCurrentThread(core int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf("cpu: sched_getaffinity: %w", err)
	}
	if core < 0 || !allowed.IsSet(core) {
		return fmt.Errorf("%w: %d", ErrBadCore, core)
	}
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	// pid 0 is the calling thread.
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("cpu: sched_setaffinity core %d: %w", core, err)
	}
	return nil
}

// CurrentCores returns the cores the calling thread may run on.
func CurrentCores() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("cpu: sched_getaffinity: %w", err)
	}
	n := set.Count()
	cores := make([]int, 0, n)
	for i := 0; len(cores) < n; i++ {
		if set.IsSet(i) {
			cores = append(cores, i)
		}
	}
	return cores, nil
}
