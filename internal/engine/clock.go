package engine

import "time"

// Clock supplies "today" to the generator. The location of the returned time
// decides which Gregorian day, and therefore which lunar day, is current.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in local time.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant. Used by the CLI to render a feed
// "as of" a given day.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
