// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, the immutable decoded Buffer, and sample conversions
// Package audio provides the fundamental types shared by the soundbox packages.
//
//   - Format: describes decoded PCM (source codec, sample rate, channels, bit depth)
//   - Buffer: immutable decoded samples for one source, shared by every playback
//
// Samples are stored as interleaved int32 values in 24-bit range regardless of
// the source bit depth, so decoders and outputs agree on a single layout.
//
// Example:
//
//	buf := &audio.Buffer{
//	    Source:  "sfx/click.wav",
//	    Format:  audio.Format{Codec: "wav", SampleRate: 44100, Channels: 2, BitDepth: 16},
//	    Samples: samples,
//	}
//	fmt.Printf("%.2fs\n", buf.Duration())
package audio
