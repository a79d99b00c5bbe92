// Package testutil holds shared test support.
package testutil

import "sync"

// FixedClock is a deterministic invoice.Clock for tests: it starts at a
// chosen millisecond timestamp and advances by a fixed step per call, so
// generated invoice numbers are reproducible and collision-free.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu   sync.Mutex
	now  int64
	step int64
}

// NewFixedClock creates a clock whose first NowMillis call returns start.
// Subsequent calls advance by one millisecond each.
func NewFixedClock(start int64) *FixedClock {
	return &FixedClock{now: start, step: 1}
}

// NewSteppingClock creates a clock advancing by step milliseconds per call.
// A step of zero freezes the clock, which is how number-collision paths are
// exercised.
func NewSteppingClock(start, step int64) *FixedClock {
	return &FixedClock{now: start, step: step}
}

// NowMillis returns the current timestamp and advances the clock.
func (c *FixedClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now += c.step
	return now
}

// Current returns the next timestamp without advancing.
func (c *FixedClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
