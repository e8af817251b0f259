package testutil

import (
	"sync"
	"time"
)

// DefaultTime is the instant a new DeterministicClock starts at:
// 2024-05-01T12:00:00Z.
var DefaultTime = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

// DeterministicClock is a wall clock for tests that only moves when told to.
//
// Components take a `func() time.Time`; pass clock.Now.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewDeterministicClock creates a clock frozen at DefaultTime.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{now: DefaultTime}
}

// NewDeterministicClockAt creates a clock frozen at t.
func NewDeterministicClockAt(t time.Time) *DeterministicClock {
	return &DeterministicClock{now: t}
}

// Now returns the current frozen instant.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *DeterministicClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Reset puts the clock back at DefaultTime.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = DefaultTime
}
