package testfixtures

import (
	"sync"
	"time"
)

// Clock is a controllable time source. Supply tests step it across calendar
// days to walk through the weekdays of a profile's validity window.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is
// zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection; a nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// AdvanceDays moves the clock by n calendar days, keeping the wall-clock time
// across DST changes.
func (c *Clock) AdvanceDays(n int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.AddDate(0, 0, n)
	return c.current
}

// SetDate moves the clock to the given calendar date, keeping its time of day
// and location.
func (c *Clock) SetDate(year int, month time.Month, day int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.current
	c.current = time.Date(year, month, day, cur.Hour(), cur.Minute(), cur.Second(), cur.Nanosecond(), cur.Location())
	return c.current
}
