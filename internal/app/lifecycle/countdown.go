// internal/app/lifecycle/countdown.go
package lifecycle

import "time"

// Countdowns are pure read-side computations. No timer state lives in the
// engine: whichever layer owns the clock evaluates these on demand, and
// exactly one authoritative trigger (the deadline scheduler) injects the
// corresponding events.

// Remaining returns the time left until deadline, clamped at zero.
func Remaining(deadline, now time.Time) time.Duration {
	d := deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Expired reports whether deadline has passed.
func Expired(deadline, now time.Time) bool {
	return !now.Before(deadline)
}
