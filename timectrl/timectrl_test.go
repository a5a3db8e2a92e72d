package timectrl

import (
	"context"
	"testing"
	"time"
)

func TestFrameClockStepDeliversDelta(t *testing.T) {
	fc := NewFrameClock(16*time.Millisecond, Accelerated)

	var got []time.Duration
	fc.AddListener(func(dt time.Duration) { got = append(got, dt) })

	fc.Step(time.Second)
	fc.Step(500 * time.Millisecond)

	if len(got) != 2 || got[0] != time.Second || got[1] != 500*time.Millisecond {
		t.Fatalf("deltas = %v, want [1s 500ms]", got)
	}
	if fc.Elapsed() != 1500*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 1.5s", fc.Elapsed())
	}
	if fc.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", fc.Frames())
	}
}

func TestFrameClockStepClampsNegativeDelta(t *testing.T) {
	fc := NewFrameClock(time.Millisecond, Accelerated)
	var got time.Duration = -1
	fc.AddListener(func(dt time.Duration) { got = dt })

	fc.Step(-time.Second)
	if got != 0 {
		t.Fatalf("listener saw %v, want 0", got)
	}
}

func TestFrameClockAcceleratedRunsForDuration(t *testing.T) {
	fc := NewFrameClock(5*time.Millisecond, Accelerated)
	frames := 0
	fc.AddListener(func(time.Duration) { frames++ })

	done := fc.Start(context.Background(), 15*time.Millisecond)
	<-done

	if frames != 3 {
		t.Fatalf("frames = %d, want 3", frames)
	}
	if fc.Elapsed() != 15*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 15ms", fc.Elapsed())
	}
}

func TestFrameClockStopsOnCancel(t *testing.T) {
	fc := NewFrameClock(time.Millisecond, RealTime)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	select {
	case <-fc.Start(ctx, 0):
	case <-time.After(time.Second):
		t.Fatalf("clock did not stop after cancel")
	}
}

func TestFrameClockRealTimeMeasuresWallClock(t *testing.T) {
	fc := NewFrameClock(time.Millisecond, RealTime)
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	fc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 40 * time.Millisecond)
	}

	var deltas []time.Duration
	fc.AddListener(func(dt time.Duration) { deltas = append(deltas, dt) })

	<-fc.Start(context.Background(), 80*time.Millisecond)

	if len(deltas) != 2 {
		t.Fatalf("frames = %d, want 2", len(deltas))
	}
	for i, dt := range deltas {
		if dt != 40*time.Millisecond {
			t.Fatalf("delta[%d] = %v, want 40ms", i, dt)
		}
	}
}
