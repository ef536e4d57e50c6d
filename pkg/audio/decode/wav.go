// ABOUTME: WAV audio decoder
// ABOUTME: Decodes integer PCM WAV files using go-audio/wav
package decode

import (
	"bytes"
	"errors"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/harperreed/soundbox/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var (
	ErrNotWAVFile        = errors.New("not a WAV file")
	ErrUnsupportedWAVPCM = errors.New("only integer PCM WAV supported")
)

// WAV decodes RIFF/WAVE files
type WAV struct{}

// Decode converts WAV bytes to a buffer
func (WAV) Decode(data []byte) (*audio.Buffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, ErrNotWAVFile
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w (format tag %d)", ErrUnsupportedWAVPCM, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav read error: %w", err)
	}

	bitDepth := int(d.BitDepth)
	channels := int(d.NumChans)
	if pcm.Format != nil && pcm.Format.NumChannels > 0 {
		channels = pcm.Format.NumChannels
	}

	return &audio.Buffer{
		Format: audio.Format{
			Codec:      FormatWAV,
			SampleRate: int(d.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
		Samples: intBufferSamples(pcm, bitDepth),
	}, nil
}

// intBufferSamples scales go-audio integer samples to the 24-bit range
func intBufferSamples(buf *goaudio.IntBuffer, bitDepth int) []int32 {
	samples := make([]int32, len(buf.Data))
	for i, s := range buf.Data {
		v := int32(s)
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples[i] = audio.SampleFromDepth(v, bitDepth)
	}
	return samples
}
