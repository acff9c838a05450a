// package clock abstracts wall-clock reads and delayed callbacks so timer-driven
// components can be driven deterministically in tests.
package clock

import "time"

// Clock is the timer facility used by the event channel and the position estimator.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable handle returned by [Clock.AfterFunc].
type Timer interface {
	// Stop prevents the timer from firing. It reports false if the timer already fired or was stopped.
	Stop() bool
}

// Real is a [Clock] backed by the time package.
type Real struct{}

var _ Clock = Real{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
