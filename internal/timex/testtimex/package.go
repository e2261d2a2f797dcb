package testtimex

import (
	"sync"
	"time"
)

// Clock is a manually advanced timex.Clock for tests.
type Clock struct {
	lock *sync.Mutex
	now  time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{
		now:  start,
		lock: &sync.Mutex{},
	}
}

func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

// Advance moves the clock forward by d. Zero and negative durations are
// ignored.
func (c *Clock) Advance(d time.Duration) {
	if d > 0 {
		c.lock.Lock()
		defer c.lock.Unlock()

		c.now = c.now.Add(d)
	}
}

func (c *Clock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}
