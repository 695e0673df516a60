package ledgerservice

import (
	"sync"
	"time"
)

// clock returns UTC timestamps truncated to microseconds that strictly increase
// between calls, even if the wall clock stalls or steps back.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newClock(now func() time.Time) *clock {
	return &clock{now: now}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}

	c.last = t

	return t
}
