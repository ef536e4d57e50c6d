// ABOUTME: Raw PCM helpers shared by the codec decoders
// ABOUTME: Converts little-endian 16-bit and 24-bit PCM bytes to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/harperreed/soundbox/pkg/audio"
)

// pcmToSamples converts packed little-endian PCM bytes to int32 samples
func pcmToSamples(data []byte, bitDepth int) ([]int32, error) {
	switch bitDepth {
	case 16:
		numSamples := len(data) / 2
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = audio.SampleFromInt16(sample16)
		}
		return samples, nil
	case 24:
		numSamples := len(data) / 3
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			val := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(data[i*3+2])<<16
			// Sign extend from 24-bit
			if val&0x800000 != 0 {
				val |= ^0xFFFFFF
			}
			samples[i] = val
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
}

// int16ToSamples widens int16 PCM to the 24-bit range
func int16ToSamples(pcm []int16) []int32 {
	samples := make([]int32, len(pcm))
	for i, s := range pcm {
		samples[i] = audio.SampleFromInt16(s)
	}
	return samples
}
