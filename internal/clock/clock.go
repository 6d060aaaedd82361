// Package clock abstracts sleeping so timed loops can be driven by tests.
package clock

import "time"

// Clock is the time source used by every simulation task.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until done is closed. It returns false if it was
	// interrupted by done.
	Sleep(d time.Duration, done <-chan struct{}) bool
}

// Real is the wall clock.
type Real struct{}

// New returns the wall clock.
func New() Clock {
	return Real{}
}

// Now returns time.Now.
func (Real) Now() time.Time {
	return time.Now()
}

// Sleep waits on a timer, returning early when done is closed.
func (Real) Sleep(d time.Duration, done <-chan struct{}) bool {
	select {
	case <-done:
		return false
	default:
	}
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}
