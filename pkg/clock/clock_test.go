// ABOUTME: Tests for device clocks
// ABOUTME: Tests monotonic progression, manual advancing and elapsed arithmetic
package clock

import (
	"testing"
	"time"
)

func TestMonotonicAdvances(t *testing.T) {
	c := NewMonotonic()
	first := c.Now()
	time.Sleep(5 * time.Millisecond)
	second := c.Now()

	if second <= first {
		t.Errorf("expected clock to advance, got %f then %f", first, second)
	}
	if first < 0 {
		t.Errorf("expected non-negative time, got %f", first)
	}
}

func TestManualAdvance(t *testing.T) {
	c := NewManual(10)
	if c.Now() != 10 {
		t.Fatalf("expected 10, got %f", c.Now())
	}

	c.Advance(2.5)
	if c.Now() != 12.5 {
		t.Errorf("expected 12.5, got %f", c.Now())
	}

	c.Advance(-5)
	if c.Now() != 12.5 {
		t.Errorf("expected negative advance to be ignored, got %f", c.Now())
	}
}

func TestElapsed(t *testing.T) {
	c := NewManual(0)
	start := c.Now()
	c.Advance(2.0)

	if got := Elapsed(c, start, 1.5); got != 3.5 {
		t.Errorf("expected 3.5, got %f", got)
	}

	// A start time in the future never produces a negative position
	if got := Elapsed(c, 10, 1.0); got != 1.0 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestFunc(t *testing.T) {
	now := 4.0
	c := Func(func() float64 { return now })

	if got := Elapsed(c, 1.0, 0.5); got != 3.5 {
		t.Errorf("expected 3.5, got %f", got)
	}
}

func TestSuspendableStopsWhileSuspended(t *testing.T) {
	source := NewManual(0)
	c := NewSuspendable(source)

	source.Advance(2)
	if c.Now() != 2 {
		t.Fatalf("expected 2, got %f", c.Now())
	}

	c.Suspend()
	c.Suspend()
	source.Advance(5)
	if c.Now() != 2 {
		t.Errorf("expected clock frozen at 2, got %f", c.Now())
	}

	c.Resume()
	c.Resume()
	source.Advance(1)
	if c.Now() != 3 {
		t.Errorf("expected 3 after resume, got %f", c.Now())
	}

	// A playback segment spanning the suspension only counts audible time
	start := 2.0
	if got := Elapsed(c, start, 0.5); got != 1.5 {
		t.Errorf("expected 1.5, got %f", got)
	}
}
