// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between sample rates and validates conversion options
// Package resample provides audio sample rate conversion.
//
// Resampler uses linear interpolation for converting between sample rates and
// handles both upsampling and downsampling of interleaved float32 audio.
//
// Context records the input and output format of a decoded stream and checks
// them before playback.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	output := make([]float32, r.OutputSamplesNeeded(len(input)))
//	n := r.Resample(input, output)
package resample
