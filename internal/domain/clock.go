package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Report timestamps and stage timings read this clock.
var clock = clockwork.NewRealClock()

// SetClock replaces the package clock, typically with a fake in tests.
// A nil clock restores real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Now returns the current time on the package clock.
func Now() time.Time { return clock.Now() }

// Since returns the time elapsed since t on the package clock.
func Since(t time.Time) time.Duration { return clock.Since(t) }
