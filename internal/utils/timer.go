package utils

import "time"

// Timer measures elapsed wall-clock time. NewTimer starts it; Stop freezes
// the measurement.
type Timer struct {
	startTime time.Time
	duration  time.Duration
	stopped   bool
}

// NewTimer creates a started Timer.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// StartedAt returns when the timer was started.
func (t *Timer) StartedAt() time.Time { return t.startTime }

// Stop freezes the elapsed duration and returns it. Later calls return the
// frozen value.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.duration = time.Since(t.startTime)
		t.stopped = true
	}
	return t.duration
}

// Elapsed returns the frozen duration after Stop, or the running duration.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.duration
	}
	return time.Since(t.startTime)
}
