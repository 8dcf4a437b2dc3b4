// Package globaltime is the process clock. Indexing timestamps and health
// responses read it so tests can pin time.
package globaltime

import (
	"sync/atomic"
	"time"
)

type clock func() time.Time

var current atomic.Pointer[clock]

func init() {
	Reset()
}

// UTC returns the current clock reading in UTC.
func UTC() time.Time {
	return (*current.Load())().UTC()
}

// Since returns the time elapsed on the clock since start.
func Since(start time.Time) time.Duration {
	return UTC().Sub(start)
}

// Freeze pins the clock to at and returns a function that restores the
// wall clock.
func Freeze(at time.Time) func() {
	fixed := clock(func() time.Time { return at })
	current.Store(&fixed)
	return Reset
}

// Reset restores the wall clock.
func Reset() {
	wall := clock(time.Now)
	current.Store(&wall)
}
