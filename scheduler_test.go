package unmagic

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSchedulerRunsEveryFrame(t *testing.T) {
	var s FrameScheduler
	calls := 0
	s.Every(func() { calls++ })
	for range 3 {
		s.Advance()
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if s.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", s.Frame())
	}
}

func TestSchedulerCancel(t *testing.T) {
	var s FrameScheduler
	calls := 0
	task := s.Every(func() { calls++ })
	s.Advance()
	task.Cancel()
	s.Advance()
	s.Advance()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
	if task.Active() {
		t.Error("cancelled task reports Active")
	}
	task.Cancel() // second cancel is a no-op
}

func TestSchedulerCancelDuringSameFrame(t *testing.T) {
	var s FrameScheduler
	var later *Task
	ran := false
	s.Every(func() { later.Cancel() })
	later = s.Every(func() { ran = true })
	s.Advance()
	if ran {
		t.Error("task cancelled earlier in the frame still ran")
	}
}

func TestSchedulerTaskAddedDuringAdvance(t *testing.T) {
	var s FrameScheduler
	inner := 0
	added := false
	s.Every(func() {
		if !added {
			added = true
			s.Every(func() { inner++ })
		}
	})
	s.Advance()
	if inner != 0 {
		t.Errorf("task added mid-frame ran in the same frame (%d calls)", inner)
	}
	s.Advance()
	if inner != 1 {
		t.Errorf("inner calls = %d, want 1", inner)
	}
}

func TestNilTaskCancel(t *testing.T) {
	var task *Task
	task.Cancel() // should not panic
	if task.Active() {
		t.Error("nil task reports Active")
	}
}

func TestRunFramesCount(t *testing.T) {
	var s FrameScheduler
	var frames []uint64
	err := RunFrames(context.Background(), &s, 0, 4, func(f uint64) error {
		frames = append(frames, f)
		return nil
	})
	if err != nil {
		t.Fatalf("RunFrames: %v", err)
	}
	if len(frames) != 4 || frames[3] != 4 {
		t.Errorf("frames = %v, want [1 2 3 4]", frames)
	}
}

func TestRunFramesStopsOnError(t *testing.T) {
	var s FrameScheduler
	stop := errors.New("stop")
	err := RunFrames(context.Background(), &s, 0, 0, func(f uint64) error {
		if f == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want %v", err, stop)
	}
	if s.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", s.Frame())
	}
}

func TestRunFramesContextCancel(t *testing.T) {
	var s FrameScheduler
	ctx, cancel := context.WithCancel(context.Background())
	err := RunFrames(ctx, &s, time.Millisecond, 0, func(f uint64) error {
		if f == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if s.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", s.Frame())
	}
}
