// ABOUTME: Linear resampler and channel remixing for decoded buffers
// ABOUTME: Adapts buffers to the output device rate and channel layout
package resample

import "github.com/harperreed/soundbox/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	channels int
	ratio    float64
	position float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		channels: channels,
		ratio:    float64(inputRate) / float64(outputRate),
	}
}

// Resample converts input samples to output sample rate using linear interpolation.
// Both slices are interleaved; returns the number of output samples written.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels
	if inputFrames == 0 {
		return 0
	}

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx >= inputFrames {
			break
		}

		frac := r.position - float64(inputIdx)
		next := inputIdx + 1
		if next >= inputFrames {
			// Hold the final frame instead of reading past the end
			next = inputIdx
		}

		for ch := 0; ch < r.channels; ch++ {
			sample1 := input[inputIdx*r.channels+ch]
			sample2 := input[next*r.channels+ch]
			output[outIdx*r.channels+ch] = int32(float64(sample1)*(1.0-frac) + float64(sample2)*frac)
		}

		outIdx++
		r.position += r.ratio
	}

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames)/r.ratio + 0.5)
	return outputFrames * r.channels
}

// Buffer returns buf converted to sampleRate and channels.
// buf is returned unchanged when it already matches.
func Buffer(buf *audio.Buffer, sampleRate, channels int) *audio.Buffer {
	out := Remix(buf, channels)
	if out.Format.SampleRate == sampleRate {
		return out
	}

	r := New(out.Format.SampleRate, sampleRate, channels)
	samples := make([]int32, r.OutputSamplesNeeded(len(out.Samples)))
	n := r.Resample(out.Samples, samples)

	format := out.Format
	format.SampleRate = sampleRate
	return &audio.Buffer{
		Source:  buf.Source,
		Format:  format,
		Samples: samples[:n],
	}
}

// Remix converts between mono and multi-channel layouts.
// Mono is duplicated across outputs; downmixing averages the first channels.
func Remix(buf *audio.Buffer, channels int) *audio.Buffer {
	in := buf.Format.Channels
	if in == channels {
		return buf
	}

	frames := buf.Frames()
	samples := make([]int32, frames*channels)
	for f := 0; f < frames; f++ {
		frame := buf.Samples[f*in : (f+1)*in]
		if in == 1 {
			for ch := 0; ch < channels; ch++ {
				samples[f*channels+ch] = frame[0]
			}
			continue
		}
		if channels == 1 {
			var sum int64
			for _, s := range frame {
				sum += int64(s)
			}
			samples[f] = int32(sum / int64(in))
			continue
		}
		// Keep the leading channels, silence any extras
		for ch := 0; ch < channels && ch < in; ch++ {
			samples[f*channels+ch] = frame[ch]
		}
	}

	format := buf.Format
	format.Channels = channels
	return &audio.Buffer{
		Source:  buf.Source,
		Format:  format,
		Samples: samples,
	}
}
