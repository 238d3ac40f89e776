// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines sample formats, packets, frames and sample conversion helpers
// Package audio provides the fundamental types shared by the playback pipeline.
//
// This package defines:
//   - SampleFormat: the twelve decoded sample representations (packed and planar
//     u8, s16, s32, s64, flt, dbl)
//   - WireFormat and SampleSpec: what an output sink is asked to play
//   - Stream, Format and Packet: what a container hands to a decoder
//   - Frame: decoded samples in host byte order, one plane per channel when planar
//
// View and Bytes reinterpret frame planes as typed sample slices without copying.
//
// Example:
//
//	var frame audio.Frame
//	frame.Alloc(audio.SampleFormatS16P, 2, 1024)
//	left := audio.View[int16](frame.Data[0])
//	left[0] = 1000
package audio
