// Package clock drives a Frame at a fixed rate. Hosts that own their own
// loop (ebiten) do not need it; the server and the terminal host do.
package clock

import (
	"context"
	"time"
)

// DefaultFPS is the tick rate used when none is configured.
const DefaultFPS = 60

// Frame is called once per tick: Update first, then Render.
type Frame interface {
	Update(now time.Duration)
	Render()
}

// FrameFunc adapts an update function with no rendering step.
type FrameFunc func(now time.Duration)

func (f FrameFunc) Update(now time.Duration) { f(now) }
func (f FrameFunc) Render()                  {}

// Clock ticks a Frame on a time.Ticker.
type Clock struct {
	interval time.Duration
	since    func(time.Time) time.Duration
}

// New returns a clock ticking fps times per second.
func New(fps int) *Clock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Clock{
		interval: time.Second / time.Duration(fps),
		since:    time.Since,
	}
}

// Interval returns the tick period.
func (c *Clock) Interval() time.Duration { return c.interval }

// Run ticks frame until ctx is done. now is measured from the call to Run.
func (c *Clock) Run(ctx context.Context, frame Frame) error {
	start := time.Now()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame.Update(c.since(start))
			frame.Render()
		}
	}
}

// Manual advances a Frame by hand. It is not safe for concurrent use.
type Manual struct {
	now   time.Duration
	frame Frame
}

// NewManual returns a stepper starting at start.
func NewManual(frame Frame, start time.Duration) *Manual {
	return &Manual{now: start, frame: frame}
}

// Now returns the time of the last step.
func (m *Manual) Now() time.Duration { return m.now }

// Step advances time by dt and runs one tick.
func (m *Manual) Step(dt time.Duration) time.Duration {
	m.now += dt
	m.frame.Update(m.now)
	m.frame.Render()
	return m.now
}

// StepN runs n ticks of dt each.
func (m *Manual) StepN(n int, dt time.Duration) time.Duration {
	for i := 0; i < n; i++ {
		m.Step(dt)
	}
	return m.now
}
