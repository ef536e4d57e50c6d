// ABOUTME: Audio output interface definitions
// ABOUTME: Device (process-wide output handle) and Voice (one live graph handle)
package output

import (
	"errors"

	"github.com/harperreed/soundbox/pkg/audio"
)

// ErrUnsupportedPlatform is returned when the host has no audio output
var ErrUnsupportedPlatform = errors.New("no audio output available on this platform")

// State of an output device
type State int

const (
	StateRunning State = iota
	StateSuspended
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Device is the process-wide handle to the audio output
type Device interface {
	// State reports whether the device is producing output
	State() State

	// Resume restarts a suspended device
	Resume() error

	// CurrentTime is the device clock in seconds
	CurrentTime() float64

	// NewVoice allocates a graph handle bound to buf. The voice is silent
	// until Start is called.
	NewVoice(buf *audio.Buffer, cfg VoiceConfig) (Voice, error)

	// Close releases the device
	Close() error
}

// Factory creates the output device on first use
type Factory func() (Device, error)

// VoiceConfig configures a voice at construction time
type VoiceConfig struct {
	Loop   bool
	Volume float64

	// OnEnded fires at most once, only when a non-looping voice plays to the
	// end on its own. It never fires after Stop or Close. It may be called
	// from a device goroutine.
	OnEnded func()
}

// Voice is one live source+gain stage playing a buffer
type Voice interface {
	// Start begins output offset seconds into the buffer
	Start(offset float64) error

	// Stop halts output. Stopping an already halted voice is not an error.
	Stop() error

	// Close stops the voice and releases its resources
	Close() error
}
