package timeline

import (
	"sync"
	"time"

	"minitwitql/internal/models"
)

// Clock hands out message dates. Successive stamps from one Clock are
// strictly increasing even when the wall clock stalls or steps back, so no
// two messages it dates share a cursor value.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a Clock reading the wall clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Stamp returns the next date in models.DateLayout.
func (c *Clock) Stamp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return models.FormatDate(t)
}
