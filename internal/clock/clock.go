// Package clock provides the time source used by time-sensitive components
// such as the task cache. Production code uses System; tests inject a Manual
// clock to make TTL behavior deterministic.
package clock

import (
	"sync"
	"time"
)

// Clock supplies timestamps. Successive calls never return a time earlier
// than a previous call.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock. time.Now carries a monotonic reading,
// so comparisons between its values are non-decreasing.
type systemClock struct{}

// Now implements Clock.
func (systemClock) Now() time.Time {
	return time.Now()
}

// System returns the process clock.
func System() Clock {
	return systemClock{}
}

// Manual is a Clock that only moves when told to.
// It is safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// Ensure Manual implements Clock
var _ Clock = (*Manual)(nil)

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set moves the clock to t. Returns false, leaving the clock unchanged,
// if t is before the current time.
func (m *Manual) Set(t time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Before(m.now) {
		return false
	}
	m.now = t
	return true
}
