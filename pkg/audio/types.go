// ABOUTME: Audio type definitions
// ABOUTME: Defines sample formats, stream parameters, packets and decoded frames
package audio

import (
	"fmt"
	"unsafe"
)

// SampleFormat identifies the numeric representation and layout of decoded samples
type SampleFormat int

const (
	SampleFormatNone SampleFormat = iota

	// Packed (interleaved) formats
	SampleFormatU8
	SampleFormatS16
	SampleFormatS32
	SampleFormatS64
	SampleFormatFLT
	SampleFormatDBL

	// Planar formats, one plane per channel
	SampleFormatU8P
	SampleFormatS16P
	SampleFormatS32P
	SampleFormatS64P
	SampleFormatFLTP
	SampleFormatDBLP

	sampleFormatCount
)

var sampleFormatNames = [sampleFormatCount]string{
	SampleFormatNone: "none",
	SampleFormatU8:   "u8",
	SampleFormatS16:  "s16",
	SampleFormatS32:  "s32",
	SampleFormatS64:  "s64",
	SampleFormatFLT:  "flt",
	SampleFormatDBL:  "dbl",
	SampleFormatU8P:  "u8p",
	SampleFormatS16P: "s16p",
	SampleFormatS32P: "s32p",
	SampleFormatS64P: "s64p",
	SampleFormatFLTP: "fltp",
	SampleFormatDBLP: "dblp",
}

// Valid reports whether f names a real sample format
func (f SampleFormat) Valid() bool {
	return f > SampleFormatNone && f < sampleFormatCount
}

// IsPlanar reports whether each channel is stored in its own plane
func (f SampleFormat) IsPlanar() bool {
	return f >= SampleFormatU8P && f < sampleFormatCount
}

// Packed returns the interleaved counterpart of f
func (f SampleFormat) Packed() SampleFormat {
	if f.IsPlanar() {
		return f - (SampleFormatU8P - SampleFormatU8)
	}
	return f
}

// Planar returns the planar counterpart of f
func (f SampleFormat) Planar() SampleFormat {
	if f.Valid() && !f.IsPlanar() {
		return f + (SampleFormatU8P - SampleFormatU8)
	}
	return f
}

// IsFloat reports whether samples are IEEE floats
func (f SampleFormat) IsFloat() bool {
	switch f.Packed() {
	case SampleFormatFLT, SampleFormatDBL:
		return true
	}
	return false
}

// BytesPerSample returns the width of one sample of one channel
func (f SampleFormat) BytesPerSample() int {
	switch f.Packed() {
	case SampleFormatU8:
		return 1
	case SampleFormatS16:
		return 2
	case SampleFormatS32, SampleFormatFLT:
		return 4
	case SampleFormatS64, SampleFormatDBL:
		return 8
	}
	return 0
}

func (f SampleFormat) String() string {
	if f >= SampleFormatNone && f < sampleFormatCount {
		return sampleFormatNames[f]
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// WireFormat is the sample encoding accepted by an output sink
type WireFormat int

const (
	WireS16LE WireFormat = iota
	WireF32LE
)

// BytesPerSample returns the width of one encoded sample
func (w WireFormat) BytesPerSample() int {
	switch w {
	case WireS16LE:
		return 2
	case WireF32LE:
		return 4
	}
	return 0
}

func (w WireFormat) String() string {
	switch w {
	case WireS16LE:
		return "s16le"
	case WireF32LE:
		return "f32le"
	}
	return fmt.Sprintf("WireFormat(%d)", int(w))
}

// WireFormatFor picks the sink encoding for a decoded sample format:
// float formats play as f32le, integer formats as s16le
func WireFormatFor(f SampleFormat) WireFormat {
	if f.IsFloat() {
		return WireF32LE
	}
	return WireS16LE
}

// ChannelLayout is a bit mask of speaker positions
type ChannelLayout uint64

const (
	ChannelFrontLeft   ChannelLayout = 0x1
	ChannelFrontRight  ChannelLayout = 0x2
	ChannelFrontCenter ChannelLayout = 0x4

	LayoutMono   = ChannelFrontCenter
	LayoutStereo = ChannelFrontLeft | ChannelFrontRight
)

// DefaultChannelLayout returns the layout for a channel count.
// Only mono and stereo are supported; other counts return 0.
func DefaultChannelLayout(channels int) ChannelLayout {
	switch channels {
	case 1:
		return LayoutMono
	case 2:
		return LayoutStereo
	}
	return 0
}

// SampleSpec describes what an output sink is asked to play
type SampleSpec struct {
	SampleRate int
	Channels   int
	Wire       WireFormat
}

func (s SampleSpec) String() string {
	return fmt.Sprintf("%dHz/%dch/%s", s.SampleRate, s.Channels, s.Wire)
}

// FrameBytes returns the size of one sample frame on the wire
func (s SampleSpec) FrameBytes() int {
	return s.Channels * s.Wire.BytesPerSample()
}

// MediaType classifies a container stream
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeAudio
	MediaTypeVideo
	MediaTypeData
)

// CodecID names a decoder in the codec registry
type CodecID string

// Format describes audio stream format
type Format struct {
	Codec        CodecID
	SampleRate   int
	Channels     int
	BitDepth     int
	SampleFormat SampleFormat // filled in by the decoder
}

// Stream is one elementary stream of an open container
type Stream struct {
	Index  int
	Type   MediaType
	Format Format
}

// Packet is one unit of stream data read from a container
type Packet struct {
	StreamIndex int
	Data        []byte
}

// Frame holds decoded samples. Packed formats use Data[0]; planar formats
// use one slice per channel. Samples are stored in host byte order.
type Frame struct {
	Format     SampleFormat
	Channels   int
	SampleRate int
	NbSamples  int
	Data       [][]byte
}

// Planes returns the number of data planes for the frame's format
func (f *Frame) Planes() int {
	if f.Format.IsPlanar() {
		return f.Channels
	}
	return 1
}

// PlaneSize returns the number of bytes used in each plane
func (f *Frame) PlaneSize() int {
	size := f.NbSamples * f.Format.BytesPerSample()
	if !f.Format.IsPlanar() {
		size *= f.Channels
	}
	return size
}

// Alloc shapes the frame for nbSamples samples of the given format,
// reusing existing plane capacity where possible
func (f *Frame) Alloc(format SampleFormat, channels, nbSamples int) {
	f.Format = format
	f.Channels = channels
	f.NbSamples = nbSamples

	planes := f.Planes()
	size := f.PlaneSize()
	if cap(f.Data) < planes {
		f.Data = make([][]byte, planes)
	}
	f.Data = f.Data[:planes]
	for i := range f.Data {
		if cap(f.Data[i]) < size {
			f.Data[i] = make([]byte, size)
		}
		f.Data[i] = f.Data[i][:size]
	}
}

// Unref forgets the frame's contents but keeps its buffers
func (f *Frame) Unref() {
	f.NbSamples = 0
	for i := range f.Data {
		f.Data[i] = f.Data[i][:0]
	}
}

// Sample is the set of element types a decoded sample can have
type Sample interface {
	~uint8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// View reinterprets a byte slice as a slice of samples in host byte order
func View[T Sample](b []byte) []T {
	var zero T
	n := len(b) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// Bytes reinterprets a slice of samples as raw bytes in host byte order
func Bytes[T Sample](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// SampleToInt16 converts a left-justified int32 sample to int16
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 16)
}

// SampleFrom24Bit converts 24-bit packed bytes (little-endian) to a left-justified int32
func SampleFrom24Bit(b [3]byte) int32 {
	return int32(uint32(b[0])<<8 | uint32(b[1])<<16 | uint32(b[2])<<24)
}
