// ABOUTME: Synthetic WAV files for tests
// ABOUTME: Builds 16-bit PCM RIFF data from a waveform function
package audiotest

import (
	"encoding/binary"
	"math"
)

// WAV returns a 16-bit PCM WAV file lasting seconds, filled by waveform.
// waveform returns values in [-1, 1].
func WAV(sampleRate, channels int, seconds float64, waveform func(sample, channel int) float32) []byte {
	frames := int(seconds * float64(sampleRate))
	dataSize := frames * channels * 2
	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	pos := 44
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			v := waveform(frame, ch)
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			binary.LittleEndian.PutUint16(buf[pos:], uint16(int16(v*math.MaxInt16)))
			pos += 2
		}
	}
	return buf
}

// SilentWAV returns a silent WAV file
func SilentWAV(sampleRate, channels int, seconds float64) []byte {
	return WAV(sampleRate, channels, seconds, func(int, int) float32 { return 0 })
}

// SineWAV returns a WAV file carrying a sine tone
func SineWAV(sampleRate, channels int, seconds, frequency float64) []byte {
	return WAV(sampleRate, channels, seconds, func(sample, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(0.5 * math.Sin(2*math.Pi*frequency*t))
	})
}
