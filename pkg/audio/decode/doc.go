// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides the Decoder interface, a sniffing Registry and codec implementations
// Package decode turns complete encoded audio files into audio.Buffer values.
//
// Supports: WAV (integer PCM), MP3, FLAC, Ogg Vorbis, Ogg Opus
//
// The Registry sniffs magic bytes to pick a decoder and falls back to the
// source extension. Every failure is reported as a *DecodeError so callers can
// tell malformed data apart from transport problems.
//
// Example:
//
//	reg := decode.DefaultRegistry()
//	buf, err := reg.Decode("sfx/click.wav", data)
//	var decErr *decode.DecodeError
//	if errors.As(err, &decErr) {
//	    log.Printf("bad asset %s: %v", decErr.Source, decErr.Err)
//	}
package decode
