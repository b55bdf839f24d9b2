package clock

import (
	"sync"
	"time"
)

// Clock issues strictly increasing timestamps used to order queued operations.
// Values are wall-clock nanoseconds bumped past the last issued value, so
// ordering survives same-instant enqueues. Observe feeds back the highest
// persisted timestamp after a restart so new operations keep sorting after
// old ones even if the wall clock went backwards.
type Clock struct {
	mu   sync.Mutex
	last int64
}

// New creates a clock starting from the current wall time.
func New() *Clock {
	return &Clock{}
}

// Now returns the next timestamp. Strictly greater than any previously
// issued or observed value.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().UnixNano()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}

// Observe advances the clock past an externally seen timestamp.
func (c *Clock) Observe(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts > c.last {
		c.last = ts
	}
}

// Last returns the most recently issued or observed timestamp without
// advancing the clock.
func (c *Clock) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}
