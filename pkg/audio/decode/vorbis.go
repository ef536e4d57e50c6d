// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes complete Ogg Vorbis files using jfreymuth/oggvorbis
package decode

import (
	"bytes"
	"fmt"

	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// Vorbis decodes Ogg Vorbis files
type Vorbis struct{}

// Decode converts Ogg Vorbis bytes to a buffer
func (Vorbis) Decode(data []byte) (*audio.Buffer, error) {
	pcm, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("vorbis decode error: %w", err)
	}

	samples := make([]int32, len(pcm))
	for i, s := range pcm {
		samples[i] = audio.SampleFromFloat(s)
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      FormatVorbis,
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   24,
		},
		Samples: samples,
	}, nil
}
