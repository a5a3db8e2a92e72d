package timectrl

import (
	"context"
	"sync"
	"time"
)

// Mode describes how the FrameClock measures frame deltas.
type Mode int

const (
	// RealTime waits for each interval and reports the wall-clock time that
	// actually passed since the previous frame.
	RealTime Mode = iota
	// Accelerated runs frames back to back, reporting exactly Interval each
	// time. Used for headless runs and tests.
	Accelerated
)

func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "realtime"
}

// FrameListener is invoked once per frame with the time elapsed since the
// previous frame.
type FrameListener func(dt time.Duration)

// FrameClock plays the role of the render loop: it calls its listeners once
// per frame with the frame delta. Listeners run sequentially on the clock's
// goroutine, so they never race with each other.
type FrameClock struct {
	mu       sync.RWMutex
	Interval time.Duration
	Mode     Mode

	elapsed time.Duration
	frames  int

	listeners []FrameListener

	// now is swapped out in tests.
	now func() time.Time
}

// NewFrameClock constructs a clock firing every interval.
func NewFrameClock(interval time.Duration, mode Mode) *FrameClock {
	return &FrameClock{
		Interval: interval,
		Mode:     mode,
		now:      time.Now,
	}
}

// AddListener registers a callback invoked on every frame.
func (fc *FrameClock) AddListener(fn FrameListener) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.listeners = append(fc.listeners, fn)
}

// Elapsed returns the total of all deltas delivered so far.
func (fc *FrameClock) Elapsed() time.Duration {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.elapsed
}

// Frames returns the number of frames delivered so far.
func (fc *FrameClock) Frames() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.frames
}

// Step delivers one frame of dt to every listener on the caller's
// goroutine.
func (fc *FrameClock) Step(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	fc.mu.Lock()
	fc.elapsed += dt
	fc.frames++
	listeners := append([]FrameListener(nil), fc.listeners...)
	fc.mu.Unlock()

	for _, fn := range listeners {
		fn(dt)
	}
}

// Start runs frames in a separate goroutine until duration worth of frame
// time has been delivered (duration <= 0 means forever) or ctx is done. It
// returns a channel that is closed when the clock stops.
func (fc *FrameClock) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		if fc.Mode == Accelerated {
			for duration <= 0 || fc.Elapsed() < duration {
				if ctx.Err() != nil {
					return
				}
				fc.Step(fc.Interval)
			}
			return
		}

		ticker := time.NewTicker(fc.Interval)
		defer ticker.Stop()

		last := fc.now()
		for duration <= 0 || fc.Elapsed() < duration {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			now := fc.now()
			dt := now.Sub(last)
			last = now
			fc.Step(dt)
		}
	}()
	return done
}
