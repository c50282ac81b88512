// Package cpu pins goroutines to CPU cores.
package cpu

import "errors"

var ErrBadCore = errors.New("cpu: core out of range")
