// Package sched holds the due-time arithmetic for the telemetry loop.
// The checks are pure functions of wall-clock time; the caller owns the
// last-fired timestamps and advances them only when the action actually
// runs, so a delayed action does not re-trigger immediately.
package sched

import "time"

// Due reports whether a periodic action last performed at last is due
// again at now. A zero or negative period disables the action entirely.
func Due(now, last time.Time, period time.Duration) bool {
	if period <= 0 {
		return false
	}
	return now.Sub(last) >= period
}

// Clock abstracts wall-clock time so the loop can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock { return systemClock{} }
