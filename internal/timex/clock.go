package timex

import "time"

// Clock is the time source used for span start and finish timestamps.
type Clock interface {
	Now() time.Time
	Since(time.Time) time.Duration
}

func NewClock() Clock {
	return clock{}
}

type clock struct{}

func (c clock) Now() time.Time {
	return time.Now()
}

func (c clock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
