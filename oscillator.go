package unmagic

import (
	"math"
	"time"
)

// SineOffset returns the automatic offset for wall-clock time t: a sine wave
// over t in seconds with amplitude OffsetLimit, rounded to the nearest 0.1.
// Millisecond resolution is used, so t and t plus a few microseconds agree.
func SineOffset(t time.Time) float64 {
	secs := float64(t.UnixMilli()) / 1000
	v := math.Floor(math.Sin(secs)*OffsetLimit*10+0.5) / 10
	if v == 0 {
		return 0
	}
	return v
}

// Oscillator publishes SineOffset samples once per frame while running.
// Every sample is computed from the clock, never from the previous one, so
// a restart carries no phase from before it was stopped.
type Oscillator struct {
	sched   *FrameScheduler
	clock   Clock
	publish func(float64)
	task    *Task
}

// NewOscillator creates a stopped oscillator that sends samples to publish.
func NewOscillator(s *FrameScheduler, c Clock, publish func(float64)) *Oscillator {
	return &Oscillator{sched: s, clock: c, publish: publish}
}

// Start publishes a sample immediately and then one per frame. No-op if
// already running.
func (o *Oscillator) Start() {
	if o.task.Active() {
		return
	}
	o.sample()
	o.task = o.sched.Every(o.sample)
}

// Stop cancels the repeating task. No sample is published after Stop
// returns.
func (o *Oscillator) Stop() {
	o.task.Cancel()
	o.task = nil
}

// Running reports whether samples are being published.
func (o *Oscillator) Running() bool {
	return o.task.Active()
}

func (o *Oscillator) sample() {
	o.publish(SineOffset(o.clock.Now()))
}
