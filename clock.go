package unmagic

import "time"

// Clock supplies wall-clock time to the oscillator.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// SteppedClock is a manually advanced clock. The headless renderer uses it
// to sample the oscillation at a fixed frame rate.
type SteppedClock struct {
	Current time.Time
	Step    time.Duration
}

// Now returns the current time without advancing it.
func (c *SteppedClock) Now() time.Time { return c.Current }

// Tick advances the clock by Step.
func (c *SteppedClock) Tick() {
	c.Current = c.Current.Add(c.Step)
}

// Advance moves the clock forward by d.
func (c *SteppedClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
