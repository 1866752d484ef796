package main

import "time"

// stepLimiter paces the control loop to a fixed step interval.
type stepLimiter struct {
	interval time.Duration
	next     time.Time
}

func newStepLimiter(interval time.Duration) *stepLimiter {
	return &stepLimiter{interval: interval}
}

// Wait blocks until the next step is due. A non-positive interval runs
// unthrottled.
func (l *stepLimiter) Wait() {
	if l.interval <= 0 {
		l.next = time.Time{}
		return
	}

	if l.next.IsZero() {
		l.next = time.Now().Add(l.interval)
	} else {
		l.next = l.next.Add(l.interval)
	}

	if remaining := time.Until(l.next); remaining > 0 {
		time.Sleep(remaining)
	}

	// Resync after a hitch so a slow step doesn't trigger a burst of catch-up steps.
	if late := -time.Until(l.next); late > l.interval {
		l.next = time.Now().Add(l.interval)
	}
}
