package clock

import "time"

// Precision is the resolution timestamps are kept at. PostgreSQL stores
// microseconds, so every backend round-trips a time from Now unchanged.
const Precision = time.Microsecond

// Clock stamps log entries, sessions and login attempts. Mocked in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC, truncated to Precision
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}
