package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the time source "today" is read from; tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for the date window. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Today returns the current UTC date at midnight.
func Today() time.Time {
	now := clock.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
