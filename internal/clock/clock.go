// Package clock abstracts wall-clock time so status derivation and the daily
// sweep can be driven deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns a Clock backed by time.Now in UTC.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Manual is a controllable clock for tests.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

// NewManual returns a clock initialised to start.
func NewManual(start time.Time) *Manual {
	return &Manual{current: start.UTC()}
}

// Now returns the current instant tracked by the clock.
func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set updates the clock to the provided time.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	c.current = t.UTC()
	c.mu.Unlock()
}

// Advance moves the clock forward and returns the updated time.
func (c *Manual) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
