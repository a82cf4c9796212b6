package testutil

import (
	"sync"
	"time"
)

// ReferenceTime is the instant pinned clocks conventionally start at.
// Golden documents carry its rendering in their header timestamp.
var ReferenceTime = time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)

// Clock provides a thread-safe deterministic time source for tests.
//
// Unlike time.Now, a Clock only moves when a test tells it to, so header
// timestamps and run timings derived from it are identical across runs.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock creates a clock pinned to start.
//
// Every call to Now() returns start until the clock is advanced.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// NewSteppingClock creates a clock that advances by step after every
// Now() call.
//
// Successive reads are distinct but reproducible, so timing fields
// computed from the clock come out the same in every run.
func NewSteppingClock(start time.Time, step time.Duration) *Clock {
	return &Clock{now: start, step: step}
}

// Now returns the current instant, then advances the clock by its step.
//
// The method value c.Now satisfies the Now option fields of the
// conversion pipeline.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Advance moves the clock forward by d without reading it.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to a new instant.
//
// Used for test reuse. The step, if any, keeps applying afterwards.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
