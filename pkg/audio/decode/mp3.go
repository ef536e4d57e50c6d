// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes complete MP3 files to int32 samples using go-mp3
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/harperreed/soundbox/pkg/audio"
)

// MP3 decodes MP3 files
type MP3 struct{}

// Decode converts MP3 bytes to a buffer.
// go-mp3 always produces 16-bit little-endian stereo.
func (MP3) Decode(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// Drop a trailing partial frame
	pcm = pcm[:len(pcm)-len(pcm)%4]
	if len(pcm) == 0 {
		return nil, ErrNoFrames
	}

	samples, err := pcmToSamples(pcm, 16)
	if err != nil {
		return nil, err
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      FormatMP3,
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
		Samples: samples,
	}, nil
}
