// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats and immutable decoded sound buffers
package audio

import (
	"fmt"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes the PCM layout of a decoded buffer
type Format struct {
	Codec      string // codec the data was decoded from ("wav", "mp3", ...)
	SampleRate int
	Channels   int
	BitDepth   int // bit depth of the source material
}

// Buffer is decoded sample data for one source.
//
// A Buffer is never mutated after decode; every playback instance of the same
// source shares the same *Buffer.
type Buffer struct {
	Source  string
	Format  Format
	Samples []int32 // interleaved, 24-bit range
}

// Frames returns the number of sample frames (samples per channel)
func (b *Buffer) Frames() int {
	if b == nil || b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the length of the buffer in seconds
func (b *Buffer) Duration() float64 {
	if b == nil || b.Format.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Format.SampleRate)
}

// Length returns the buffer duration as a time.Duration
func (b *Buffer) Length() time.Duration {
	return time.Duration(b.Duration() * float64(time.Second))
}

// FrameAt converts a timeline offset in seconds to a frame index,
// wrapping for looping playback and clamping otherwise
func (b *Buffer) FrameAt(offset float64, loop bool) int {
	frames := b.Frames()
	if frames == 0 || offset <= 0 {
		return 0
	}
	frame := int(offset * float64(b.Format.SampleRate))
	if loop {
		return frame % frames
	}
	if frame > frames {
		return frames
	}
	return frame
}

// Validate checks that the format is playable
func (b *Buffer) Validate() error {
	if b.Format.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", b.Format.SampleRate)
	}
	if b.Format.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", b.Format.Channels)
	}
	if len(b.Samples)%b.Format.Channels != 0 {
		return fmt.Errorf("sample count %d is not a multiple of %d channels", len(b.Samples), b.Format.Channels)
	}
	return nil
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleFromFloat converts a float sample in [-1,1] to the 24-bit range
func SampleFromFloat(sample float32) int32 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	return int32(float64(sample) * Max24Bit)
}

// SampleFromDepth scales an integer sample of the given bit depth to 24-bit range
func SampleFromDepth(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}
