package service

import (
	"strconv"
	"sync"
	"time"
)

// IDSource issues record identifiers.
type IDSource interface {
	NextID() string
}

// ClockIDs derives identifiers from the wall clock in milliseconds. Within one
// process it never hands out the same value twice: when the clock has not
// advanced since the previous call the last value is bumped by one.
type ClockIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClockIDs returns an IDSource backed by time.Now.
func NewClockIDs() *ClockIDs {
	return &ClockIDs{now: time.Now}
}

func (g *ClockIDs) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
