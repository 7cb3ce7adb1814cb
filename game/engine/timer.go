package engine

import "time"

// Timer measures one round of play in host time.
type Timer struct {
	start, end, current time.Duration
	running, ended      bool
}

// Start begins a round at now.
func (t *Timer) Start(now time.Duration) {
	t.start, t.current = now, now
	t.running, t.ended = true, false
}

// Update records the latest tick while running.
func (t *Timer) Update(now time.Duration) {
	if t.running {
		t.current = now
	}
}

// End freezes the timer at now. It does nothing when not running.
func (t *Timer) End(now time.Duration) {
	if !t.running {
		return
	}
	if now < t.current {
		now = t.current
	}
	t.end = now
	t.running, t.ended = false, true
}

// Reset clears the timer.
func (t *Timer) Reset() {
	*t = Timer{}
}

// Running reports whether a round is being timed.
func (t *Timer) Running() bool { return t.running }

// Elapsed is end-start once ended, current-start while running, else zero.
func (t *Timer) Elapsed() time.Duration {
	switch {
	case t.ended:
		return t.end - t.start
	case t.running:
		return t.current - t.start
	}
	return 0
}
