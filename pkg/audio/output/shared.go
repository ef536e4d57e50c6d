// ABOUTME: Process-wide oto context shared by every oto device
// ABOUTME: Opens the context once, suspends it when idle and resumes it on reuse
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// outputContext is the part of *oto.Context a device uses
type outputContext interface {
	NewPlayer(r io.Reader) *oto.Player
	Suspend() error
	Resume() error
}

// sharedContext lends the single oto context to devices.
// oto refuses a second NewContext in the same process, so a closed device
// only suspends it and the next device picks it up again.
type sharedContext struct {
	open func(OtoConfig) (outputContext, error)

	mu     sync.Mutex
	opened bool
	ctx    outputContext
	format OtoConfig
	err    error // sticky open failure
	users  int
	idle   bool // suspended because no device holds it
}

var otoContext = &sharedContext{open: openOtoContext}

func openOtoContext(config OtoConfig) (outputContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan
	return otoCtx, nil
}

// acquire returns the context, opening it on first use. Only a failure to
// open the device is reported as ErrUnsupportedPlatform.
func (s *sharedContext) acquire(config OtoConfig) (outputContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		s.opened = true
		s.format = config
		s.ctx, s.err = s.open(config)
		if s.err == nil {
			log.Printf("Audio output initialized: %dHz, %d channels", config.SampleRate, config.Channels)
		}
	}
	if s.err != nil {
		return nil, fmt.Errorf("%w: failed to create oto context: %v", ErrUnsupportedPlatform, s.err)
	}

	if config.SampleRate != s.format.SampleRate || config.Channels != s.format.Channels {
		return nil, fmt.Errorf("oto context already open at %dHz, %d channels",
			s.format.SampleRate, s.format.Channels)
	}

	if s.users == 0 && s.idle {
		if err := s.ctx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
		s.idle = false
	}
	s.users++
	return s.ctx, nil
}

// release gives the context back, suspending it when nobody holds it
func (s *sharedContext) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users == 0 {
		return nil
	}
	s.users--
	if s.users > 0 {
		return nil
	}

	s.idle = true
	if err := s.ctx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}
	return nil
}
