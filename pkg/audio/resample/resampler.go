// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Interpolates interleaved float32 frames and carries the last frame across chunks
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
	lastFrame  []float32 // one sample per channel
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
		lastFrame:  make([]float32, channels),
	}
}

// InputRate returns the rate the resampler converts from
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the rate the resampler converts to
func (r *Resampler) OutputRate() int { return r.outputRate }

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate, sized with OutputSamplesNeeded
//
// The last input frame is held back and interpolated against the next chunk,
// so consecutive calls behave like one continuous stream.
func (r *Resampler) Resample(input []float32, output []float32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	outputFrames := len(output) / r.channels

	// frame 0 is the held-back frame once primed
	total := inputFrames
	if r.primed {
		total++
	}
	at := func(frame, ch int) float32 {
		if r.primed {
			if frame == 0 {
				return r.lastFrame[ch]
			}
			frame--
		}
		return input[frame*r.channels+ch]
	}

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx+1 >= total {
			break
		}
		frac := float32(r.position - float64(inputIdx))

		for ch := 0; ch < r.channels; ch++ {
			s1 := at(inputIdx, ch)
			s2 := at(inputIdx+1, ch)
			output[outIdx*r.channels+ch] = s1 + (s2-s1)*frac
		}

		outIdx++
		r.position += r.ratio
	}

	// rebase so the last input frame becomes frame 0 of the next call
	r.position -= float64(total - 1)
	if r.position < 0 {
		r.position = 0
	}
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:])
	r.primed = true

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
	r.primed = false
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}

// OutputSamplesNeeded returns an output size large enough for inputSamples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames+1)/r.ratio) + 1
	return outputFrames * r.channels
}
