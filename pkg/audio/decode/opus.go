// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes complete Ogg Opus files using libopusfile via hraban/opus
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/soundbox/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// libopusfile always decodes at 48kHz
const opusSampleRate = 48000

var ErrMissingOpusHead = errors.New("missing OpusHead identification header")

// Opus decodes Ogg Opus files
type Opus struct{}

// Decode converts Ogg Opus bytes to a buffer
func (Opus) Decode(data []byte) (*audio.Buffer, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open opus stream: %w", err)
	}
	defer stream.Close()

	// 120ms at 48kHz is the largest opus frame
	chunk := make([]int16, 5760*channels)
	var pcm []int16
	for {
		n, err := stream.Read(chunk)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		pcm = append(pcm, chunk[:n*channels]...)
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      FormatOpus,
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
		Samples: int16ToSamples(pcm),
	}, nil
}

// opusChannels reads the channel count from the OpusHead packet.
// Layout: "OpusHead" magic, 1 byte version, 1 byte channel count.
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || idx+9 >= len(data) {
		return 0, ErrMissingOpusHead
	}
	channels := int(data[idx+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("unsupported opus channel count: %d", channels)
	}
	return channels, nil
}
