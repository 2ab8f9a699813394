package unmagic

import (
	"context"
	"time"
)

// Task is a repeating callback registered with a FrameScheduler.
type Task struct {
	fn        func()
	cancelled bool
}

// Cancel stops the task. No invocation happens after Cancel returns, even
// when called from another task earlier in the same frame. Safe to call
// more than once.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
	t.fn = nil
}

// Active reports whether the task is still scheduled.
func (t *Task) Active() bool {
	return t != nil && !t.cancelled
}

// FrameScheduler runs repeating tasks once per frame. The host calls Advance
// from its frame callback. It is single-threaded: Every, Cancel and Advance
// must all be called from the same goroutine.
type FrameScheduler struct {
	tasks []*Task
	frame uint64
}

// Every registers fn to run on every subsequent Advance until the returned
// task is cancelled. A task registered during Advance first runs on the
// next frame.
func (s *FrameScheduler) Every(fn func()) *Task {
	t := &Task{fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance runs each live task once, in registration order, and drops
// cancelled tasks.
func (s *FrameScheduler) Advance() {
	s.frame++
	n := len(s.tasks)
	for i := 0; i < n; i++ {
		t := s.tasks[i]
		if t.cancelled {
			continue
		}
		t.fn()
	}
	s.compact()
}

// compact removes cancelled tasks, keeping the slice's backing array.
func (s *FrameScheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

// Pending returns the number of tasks that will run on the next Advance.
func (s *FrameScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Frame returns the number of Advance calls so far.
func (s *FrameScheduler) Frame() uint64 {
	return s.frame
}

// RunFrames drives s from the calling goroutine. Each frame it calls
// Advance and then onFrame. With a positive interval frames are paced by a
// ticker; otherwise they run back to back. frames <= 0 runs until ctx is
// done. An error from onFrame stops the loop and is returned.
func RunFrames(ctx context.Context, s *FrameScheduler, interval time.Duration, frames int, onFrame func(frame uint64) error) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; frames <= 0 || i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}

		s.Advance()
		if onFrame != nil {
			if err := onFrame(s.frame); err != nil {
				return err
			}
		}
	}
	return nil
}
