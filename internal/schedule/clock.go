package schedule

import "time"

// Clock supplies the current instant. Abstracted so tests can inject
// fixed times.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// FixedClock is a Clock pinned to a single instant
type FixedClock struct {
	Instant time.Time
}

// Now implements Clock
func (c FixedClock) Now() time.Time { return c.Instant }
