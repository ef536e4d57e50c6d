// ABOUTME: Fake output device and voices for engine tests
// ABOUTME: Manually driven clock, recorded voices and simulated completion
package audiotest

import (
	"fmt"
	"sync"

	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/harperreed/soundbox/pkg/audio/output"
	"github.com/harperreed/soundbox/pkg/clock"
)

// Device is an in-memory output.Device.
// Its clock only moves when Clock.Advance is called.
type Device struct {
	Clock *clock.Manual

	mu      sync.Mutex
	state   output.State
	voices  []*Voice
	resumes int
	created int
}

// NewDevice creates a running device with its clock at zero
func NewDevice() *Device {
	return &Device{
		Clock: clock.NewManual(0),
		state: output.StateRunning,
	}
}

// Factory returns an output.Factory handing out this device.
// A closed device is reopened, as the shared oto context is.
func (d *Device) Factory() output.Factory {
	return func() (output.Device, error) {
		d.mu.Lock()
		d.created++
		if d.state == output.StateClosed {
			d.state = output.StateRunning
		}
		d.mu.Unlock()
		return d, nil
	}
}

// Unsupported returns a factory that reports a host without audio output
func Unsupported() output.Factory {
	return func() (output.Device, error) {
		return nil, fmt.Errorf("no devices: %w", output.ErrUnsupportedPlatform)
	}
}

// Created reports how many times the factory was invoked
func (d *Device) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// Suspend puts the device in the suspended state, as an autoplay policy would
func (d *Device) Suspend() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = output.StateSuspended
}

// Resumes reports how many resume requests were issued
func (d *Device) Resumes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resumes
}

func (d *Device) State() output.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == output.StateClosed {
		return fmt.Errorf("device closed")
	}
	d.resumes++
	d.state = output.StateRunning
	return nil
}

func (d *Device) CurrentTime() float64 {
	return d.Clock.Now()
}

func (d *Device) NewVoice(buf *audio.Buffer, cfg output.VoiceConfig) (output.Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == output.StateClosed {
		return nil, fmt.Errorf("device closed")
	}
	v := &Voice{Buffer: buf, Config: cfg}
	d.voices = append(d.voices, v)
	return v, nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = output.StateClosed
	return nil
}

// Voices returns every voice created so far, oldest first
func (d *Device) Voices() []*Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Voice(nil), d.voices...)
}

// LastVoice returns the most recently created voice, or nil
func (d *Device) LastVoice() *Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.voices) == 0 {
		return nil
	}
	return d.voices[len(d.voices)-1]
}

// Live counts voices that were started and not yet stopped
func (d *Device) Live() int {
	n := 0
	for _, v := range d.Voices() {
		if v.Playing() {
			n++
		}
	}
	return n
}

// Voice records what the engine did with one graph handle
type Voice struct {
	Buffer *audio.Buffer
	Config output.VoiceConfig

	mu      sync.Mutex
	started bool
	offset  float64
	stops   int
	closed  bool
}

func (v *Voice) Start(offset float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return fmt.Errorf("voice closed")
	}
	v.started = true
	v.offset = offset
	return nil
}

func (v *Voice) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
	return nil
}

func (v *Voice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stops++
	v.closed = true
	return nil
}

// Offset is the offset passed to Start
func (v *Voice) Offset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Started reports whether Start was called
func (v *Voice) Started() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started
}

// Closed reports whether the voice was released
func (v *Voice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Playing reports a started voice that has not been stopped or closed
func (v *Voice) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started && v.stops == 0 && !v.closed
}

// Finish delivers the completion signal as the output system would.
// It fires even for looping voices so tests can simulate spurious signals.
func (v *Voice) Finish() {
	if v.Config.OnEnded != nil {
		v.Config.OnEnded()
	}
}
