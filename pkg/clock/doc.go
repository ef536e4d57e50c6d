// ABOUTME: Device clock package
// ABOUTME: Monotonic and manual clocks for playback position bookkeeping
// Package clock supplies the device clock the sound engine uses to track
// playback positions: position = offset + (now - clockStart).
//
// Example:
//
//	c := clock.NewMonotonic()
//	start := c.Now()
//	// ... later
//	pos := clock.Elapsed(c, start, 0)
package clock
