// ABOUTME: Audio output package for playing decoded buffers
// ABOUTME: Provides Device/Voice interfaces and the oto implementation
// Package output provides the audio output device and per-sound voices.
//
// A Device is created once per process. Each playing sound owns exactly one
// Voice; voices are never reused after Stop, a restart allocates a new one.
//
// Example:
//
//	dev, err := output.NewOto(output.OtoConfig{SampleRate: 48000, Channels: 2})
//	voice, err := dev.NewVoice(buf, output.VoiceConfig{Volume: 0.5, OnEnded: done})
//	err = voice.Start(0)
package output
