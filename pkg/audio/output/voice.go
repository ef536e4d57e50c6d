// ABOUTME: Oto voice implementation
// ABOUTME: Streams device-format PCM through an oto player and reports natural completion
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// How often a voice checks whether its player has drained
const endPollInterval = 20 * time.Millisecond

// pcmReader serves a shared PCM byte slice to a player.
// Looping readers wrap to the start, others return io.EOF at the end.
type pcmReader struct {
	mu   sync.Mutex
	data []byte
	pos  int64
	loop bool
}

func (r *pcmReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := int64(len(r.data))
	if size == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) {
		if r.pos >= size {
			if !r.loop {
				break
			}
			r.pos = 0
		}
		c := copy(p[n:], r.data[r.pos:])
		n += c
		r.pos += int64(c)
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (r *pcmReader) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = r.pos + offset
	case io.SeekEnd:
		pos = int64(len(r.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, errors.New("negative position")
	}
	r.pos = pos
	return pos, nil
}

// otoVoice is one oto player bound to a cached buffer
type otoVoice struct {
	player     *oto.Player
	reader     *pcmReader
	frameBytes int
	rate       int
	cfg        VoiceConfig

	mu      sync.Mutex
	started bool
	halted  bool
	closed  bool
	done    chan struct{}
}

// Start seeks to offset and begins output
func (v *otoVoice) Start(offset float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return fmt.Errorf("voice closed")
	}
	if v.started {
		return fmt.Errorf("voice already started")
	}

	if _, err := v.player.Seek(v.byteOffset(offset), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek voice: %w", err)
	}

	v.started = true
	v.player.Play()
	go v.monitor()
	return nil
}

// byteOffset maps a timeline offset to a frame-aligned position in device PCM
func (v *otoVoice) byteOffset(offset float64) int64 {
	if v.frameBytes == 0 || offset <= 0 {
		return 0
	}
	frames := len(v.reader.data) / v.frameBytes
	if frames == 0 {
		return 0
	}
	frame := int(offset * float64(v.rate))
	if v.cfg.Loop {
		frame %= frames
	} else if frame > frames {
		frame = frames
	}
	return int64(frame * v.frameBytes)
}

// monitor waits for the player to drain and reports natural completion
func (v *otoVoice) monitor() {
	ticker := time.NewTicker(endPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-v.done:
			return
		case <-ticker.C:
			if v.player.IsPlaying() {
				continue
			}

			v.mu.Lock()
			halted := v.halted
			if !halted {
				v.halted = true
				close(v.done)
			}
			v.mu.Unlock()

			if !halted && !v.cfg.Loop && v.cfg.OnEnded != nil {
				v.cfg.OnEnded()
			}
			return
		}
	}
}

// Stop halts output without firing OnEnded
func (v *otoVoice) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.halted {
		return nil
	}
	v.halted = true
	close(v.done)
	v.player.Pause()
	return nil
}

// Close stops the voice and releases the player
func (v *otoVoice) Close() error {
	if err := v.Stop(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	if err := v.player.Close(); err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}
	return nil
}
