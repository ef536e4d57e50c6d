// ABOUTME: Playback instance record and its state machine
// ABOUTME: Tracks timeline offset, device clock start and the live voice
package soundengine

import (
	"log"

	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/harperreed/soundbox/pkg/audio/output"
	"github.com/harperreed/soundbox/pkg/clock"
)

// State of a playback instance
type State int

const (
	StateStarting State = iota
	StatePlaying
	StatePaused
	StateEnded   // non-looping instance played to completion
	StateStopped // released by Stop, restart or shutdown
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Terminal reports whether the state can no longer change
func (s State) Terminal() bool {
	return s == StateEnded || s == StateStopped
}

// InstanceInfo is a point-in-time view of one instance
type InstanceInfo struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	State    State   `json:"-"`
	Status   string  `json:"state"`
	Loop     bool    `json:"loop"`
	Volume   float64 `json:"volume"`
	Position float64 `json:"position"` // seconds into the buffer
	Duration float64 `json:"duration"` // seconds
}

// instance is one registered playback
type instance struct {
	id     string
	source string
	buffer *audio.Buffer
	volume float64
	loop   bool

	clockStart float64 // device seconds at which the current segment began
	offset     float64 // authoritative only while paused or at (re)start
	paused     bool
	state      State

	voice      output.Voice // nil while paused or released
	generation uint64       // identifies the voice whose completion may remove us
}

// elapsed is the unwrapped timeline position at device time now
func (i *instance) elapsed(now clock.Clock) float64 {
	if i.paused || i.state != StatePlaying {
		return i.offset
	}
	return clock.Elapsed(now, i.clockStart, i.offset)
}

// position maps elapsed time into the buffer, wrapping loops
func (i *instance) position(now clock.Clock) float64 {
	pos := i.elapsed(now)
	duration := i.buffer.Duration()
	if duration <= 0 {
		return 0
	}
	if i.loop {
		frame := i.buffer.FrameAt(pos, true)
		return float64(frame) / float64(i.buffer.Format.SampleRate)
	}
	if pos > duration {
		return duration
	}
	return pos
}

func (i *instance) info(now clock.Clock) InstanceInfo {
	return InstanceInfo{
		ID:       i.id,
		Source:   i.source,
		State:    i.state,
		Status:   i.state.String(),
		Loop:     i.loop,
		Volume:   i.volume,
		Position: i.position(now),
		Duration: i.buffer.Duration(),
	}
}

// release disconnects and frees the live voice, if any.
// A voice that already halted is not an error.
func (i *instance) release() {
	if i.voice == nil {
		return
	}
	if err := i.voice.Close(); err != nil {
		log.Printf("Error releasing voice for %s: %v", i.id, err)
	}
	i.voice = nil
}
