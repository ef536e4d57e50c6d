// ABOUTME: Oto-based audio output device
// ABOUTME: Owns the single oto context and hands out per-sound voices
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/harperreed/soundbox/pkg/audio/encode"
	"github.com/harperreed/soundbox/pkg/audio/resample"
	"github.com/harperreed/soundbox/pkg/clock"
)

// OtoConfig holds device format settings
type OtoConfig struct {
	SampleRate int
	Channels   int
	BufferSize time.Duration // 0 lets oto pick
}

// Oto output implementation using oto library.
// All Oto devices in a process share one oto context.
type Oto struct {
	config  OtoConfig
	shared  *sharedContext
	otoCtx  outputContext
	clock   *clock.Suspendable
	encoder *encode.PCMEncoder

	mu        sync.Mutex
	suspended bool
	closed    bool

	// Device-format PCM per decoded buffer
	pcmMu sync.Mutex
	pcm   map[*audio.Buffer][]byte
}

// OtoFactory returns a Factory creating an oto device with config
func OtoFactory(config OtoConfig) Factory {
	return func() (Device, error) {
		return NewOto(config)
	}
}

// NewOto opens the audio output, reusing the process-wide oto context
// when an earlier device already opened it
func NewOto(config OtoConfig) (*Oto, error) {
	return newOto(otoContext, config)
}

func newOto(shared *sharedContext, config OtoConfig) (*Oto, error) {
	if config.SampleRate == 0 {
		config.SampleRate = 48000
	}
	if config.Channels == 0 {
		config.Channels = 2
	}

	encoder, err := encode.NewPCM(16)
	if err != nil {
		return nil, err
	}

	otoCtx, err := shared.acquire(config)
	if err != nil {
		return nil, err
	}

	return &Oto{
		config:  config,
		shared:  shared,
		otoCtx:  otoCtx,
		clock:   clock.NewSuspendable(clock.NewMonotonic()),
		encoder: encoder,
		pcm:     make(map[*audio.Buffer][]byte),
	}, nil
}

// State reports the device state
func (o *Oto) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return StateClosed
	case o.suspended:
		return StateSuspended
	}
	return StateRunning
}

// Suspend pauses all output at the device level
func (o *Oto) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("output closed")
	}
	if err := o.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend output: %w", err)
	}
	o.suspended = true
	o.clock.Suspend()
	return nil
}

// Resume restarts a suspended device
func (o *Oto) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("output closed")
	}
	if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume output: %w", err)
	}
	o.suspended = false
	o.clock.Resume()
	log.Printf("Audio output resumed")
	return nil
}

// CurrentTime returns the device clock in seconds. It stands still while
// the device is suspended.
func (o *Oto) CurrentTime() float64 {
	return o.clock.Now()
}

// NewVoice creates a voice playing buf
func (o *Oto) NewVoice(buf *audio.Buffer, cfg VoiceConfig) (Voice, error) {
	if o.State() == StateClosed {
		return nil, fmt.Errorf("output closed")
	}

	data := o.devicePCM(buf)
	frameBytes := o.config.Channels * o.encoder.BytesPerSample()

	reader := &pcmReader{data: data, loop: cfg.Loop}
	player := o.otoCtx.NewPlayer(reader)
	player.SetVolume(cfg.Volume)

	return &otoVoice{
		player:     player,
		reader:     reader,
		frameBytes: frameBytes,
		rate:       o.config.SampleRate,
		cfg:        cfg,
		done:       make(chan struct{}),
	}, nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.clock.Suspend()
	if err := o.shared.release(); err != nil {
		log.Printf("Error releasing output on close: %v", err)
	}
	return nil
}

// devicePCM converts buf to the device format once and memoizes it
func (o *Oto) devicePCM(buf *audio.Buffer) []byte {
	o.pcmMu.Lock()
	defer o.pcmMu.Unlock()

	if data, ok := o.pcm[buf]; ok {
		return data
	}

	converted := resample.Buffer(buf, o.config.SampleRate, o.config.Channels)
	data := o.encoder.Encode(converted.Samples)
	o.pcm[buf] = data
	return data
}
