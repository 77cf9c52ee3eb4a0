package mocks

import (
	"time"

	"github.com/facegate/facegate/internal/clock"
)

// Clock is a mock implementation of clock.Clock for testing.
type Clock struct {
	CurrentTime time.Time
}

var _ clock.Clock = (*Clock)(nil)

// NewClock creates a mock clock set to the given time.
func NewClock(t time.Time) *Clock {
	return &Clock{CurrentTime: t}
}

// Now returns the mocked current time.
func (c *Clock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration.
func (c *Clock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}
