// ABOUTME: Audio resampling package
// ABOUTME: Converts decoded buffers to the output device rate and layout
// Package resample converts audio.Buffer values between sample rates and
// channel layouts so one output device can play every cached source.
//
// Example:
//
//	deviceBuf := resample.Buffer(buf, 48000, 2)
package resample
