// ABOUTME: Device clock used for playback offset arithmetic
// ABOUTME: Provides monotonic, suspendable and manually driven clocks
package clock

import (
	"sync"
	"time"
)

// Clock reports the output device time in seconds.
// Values are monotonic and only meaningful relative to each other.
type Clock interface {
	Now() float64
}

// Func adapts a time source function to the Clock interface
type Func func() float64

// Now calls f()
func (f Func) Now() float64 { return f() }

// Monotonic measures seconds since it was created
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at zero
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now returns seconds elapsed since the clock started
func (m *Monotonic) Now() float64 {
	// time.Since uses the monotonic reading
	return time.Since(m.start).Seconds()
}

// Suspendable follows a source clock but stands still while suspended,
// like an audio device clock that stops with its output
type Suspendable struct {
	source Clock

	mu        sync.Mutex
	lost      float64 // seconds spent suspended
	since     float64 // source time at suspension
	suspended bool
}

// NewSuspendable wraps source
func NewSuspendable(source Clock) *Suspendable {
	return &Suspendable{source: source}
}

// Now returns source time minus the time spent suspended
func (s *Suspendable) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suspended {
		return s.since - s.lost
	}
	return s.source.Now() - s.lost
}

// Suspend freezes the clock. Repeated calls are no-ops.
func (s *Suspendable) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suspended {
		return
	}
	s.since = s.source.Now()
	s.suspended = true
}

// Resume lets the clock run again from where it stopped
func (s *Suspendable) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.suspended {
		return
	}
	s.lost += s.source.Now() - s.since
	s.suspended = false
}

// Manual is a clock that only moves when told to
type Manual struct {
	mu  sync.RWMutex
	now float64
}

// NewManual creates a manual clock at the given time
func NewManual(start float64) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time
func (m *Manual) Now() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the clock forward by seconds; negative values are ignored
func (m *Manual) Advance(seconds float64) {
	if seconds <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += seconds
}

// Elapsed returns the playback position for a segment started at clockStart
// with the given base offset
func Elapsed(c Clock, clockStart, offset float64) float64 {
	elapsed := c.Now() - clockStart
	if elapsed < 0 {
		elapsed = 0
	}
	return offset + elapsed
}
