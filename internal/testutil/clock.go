package testutil

import (
	"time"

	"github.com/benbjohnson/clock"
)

// DriveClock advances a mock clock by step until done is closed.
//
// Code under test that waits on clock.After never observes wall time, so a
// poll loop with a one-second interval completes in milliseconds. Each Add
// yields to other goroutines before returning.
func DriveClock(mock *clock.Mock, step time.Duration, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
			mock.Add(step)
		}
	}
}
