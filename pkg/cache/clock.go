package cache

import (
	"sync"
	"time"
)

// Clock is the time source for expiry decisions.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to. It is safe for
// concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Option configures the [MemoryCache] and [FileCache] backends.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock sets the time source used for expiry.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func buildOptions(opts []Option) options {
	o := options{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = SystemClock{}
	}
	return o
}

// expiry returns the absolute expiry for ttl, or the zero time for no expiry.
func expiry(c Clock, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.Now().Add(ttl)
}

func expired(c Clock, at time.Time) bool {
	return !at.IsZero() && !c.Now().Before(at)
}
