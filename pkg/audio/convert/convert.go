// ABOUTME: Sample conversion engine: planar-to-interleaved, volume scaling and wire encoding
// ABOUTME: Dispatches through a strategy table keyed by sample format
package convert

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/NotCompsky/playwav/pkg/audio"
)

var ErrUnsupportedSampleFormat = errors.New("unsupported sample format")

// Engine converts decoded frames into interleaved, volume-scaled samples.
// It owns the scratch buffer used for planar input and the wire output buffer;
// both grow to the largest frame seen and are never shrunk.
type Engine struct {
	scratch []byte
	wire    []byte
}

// New creates a conversion engine
func New() *Engine {
	return &Engine{}
}

// Convert interleaves f and multiplies every sample by volume in the sample's
// own type. Packed frames are scaled in place and the frame's buffer is returned;
// planar frames are written into the engine's scratch buffer.
func (e *Engine) Convert(f *audio.Frame, volume float64) ([]byte, error) {
	s, ok := strategies[f.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSampleFormat, f.Format)
	}
	if len(f.Data) < f.Planes() {
		return nil, fmt.Errorf("frame has %d planes, %v/%dch needs %d", len(f.Data), f.Format, f.Channels, f.Planes())
	}
	return s.convert(e, f, volume), nil
}

// Encode packs interleaved samples of the given format into the little-endian
// wire representation. The returned slice is owned by the engine and is valid
// until the next call.
func (e *Engine) Encode(src []byte, format audio.SampleFormat, wire audio.WireFormat) ([]byte, error) {
	s, ok := strategies[format]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSampleFormat, format)
	}
	width := wire.BytesPerSample()
	if width == 0 {
		return nil, fmt.Errorf("unsupported wire format: %v", wire)
	}
	n := len(src) / format.BytesPerSample()
	dst := grow(&e.wire, n*width)
	s.encode(dst, src, wire)
	return dst, nil
}

// ScratchCap returns the capacity of the planar scratch buffer
func (e *Engine) ScratchCap() int {
	return cap(e.scratch)
}

// Release drops the engine's buffers
func (e *Engine) Release() {
	e.scratch = nil
	e.wire = nil
}

// Supported reports whether format has a conversion strategy
func Supported(format audio.SampleFormat) bool {
	_, ok := strategies[format]
	return ok
}

func grow(buf *[]byte, size int) []byte {
	if cap(*buf) < size {
		*buf = make([]byte, size)
	}
	*buf = (*buf)[:size]
	return *buf
}

type strategy struct {
	convert func(e *Engine, f *audio.Frame, volume float64) []byte
	encode  func(dst, src []byte, wire audio.WireFormat)
}

var strategies = map[audio.SampleFormat]strategy{
	audio.SampleFormatU8:  packed(u8Codec),
	audio.SampleFormatS16: packed(s16Codec),
	audio.SampleFormatS32: packed(s32Codec),
	audio.SampleFormatS64: packed(s64Codec),
	audio.SampleFormatFLT: packed(f32Codec),
	audio.SampleFormatDBL: packed(f64Codec),

	audio.SampleFormatU8P:  planar(u8Codec),
	audio.SampleFormatS16P: planar(s16Codec),
	audio.SampleFormatS32P: planar(s32Codec),
	audio.SampleFormatS64P: planar(s64Codec),
	audio.SampleFormatFLTP: planar(f32Codec),
	audio.SampleFormatDBLP: planar(f64Codec),
}

// sampleCodec carries the per-type arithmetic for one element type
type sampleCodec[T audio.Sample] struct {
	mul   func(x T, volume float64) T
	toS16 func(x T) int16
	toF32 func(x T) float32
}

func packed[T audio.Sample](c sampleCodec[T]) strategy {
	return strategy{
		convert: func(e *Engine, f *audio.Frame, volume float64) []byte {
			buf := f.Data[0][:f.PlaneSize()]
			if volume != 1 {
				s := audio.View[T](buf)
				for i, x := range s {
					s[i] = c.mul(x, volume)
				}
			}
			return buf
		},
		encode: c.encode,
	}
}

func planar[T audio.Sample](c sampleCodec[T]) strategy {
	return strategy{
		convert: func(e *Engine, f *audio.Frame, volume float64) []byte {
			channels := f.Channels
			out := grow(&e.scratch, f.PlaneSize()*channels)
			dst := audio.View[T](out)
			for ch := 0; ch < channels; ch++ {
				src := audio.View[T](f.Data[ch][:f.PlaneSize()])
				if volume == 1 {
					for i, x := range src {
						dst[i*channels+ch] = x
					}
					continue
				}
				for i, x := range src {
					dst[i*channels+ch] = c.mul(x, volume)
				}
			}
			return out
		},
		encode: c.encode,
	}
}

func (c sampleCodec[T]) encode(dst, src []byte, wire audio.WireFormat) {
	samples := audio.View[T](src)
	switch wire {
	case audio.WireS16LE:
		for i, x := range samples {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(c.toS16(x)))
		}
	case audio.WireF32LE:
		for i, x := range samples {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(c.toF32(x)))
		}
	}
}

// Integer samples are scaled without clamping: the product is truncated toward
// zero and wraps into the sample's width.
func mulInt[T ~uint8 | ~int16 | ~int32 | ~int64](x T, volume float64) T {
	return T(int64(float64(x) * volume))
}

func mulFloat[T ~float32 | ~float64](x T, volume float64) T {
	return x * T(volume)
}

func floatToS16(x float64) int16 {
	switch {
	case x >= 1:
		return math.MaxInt16
	case x <= -1:
		return math.MinInt16
	}
	return int16(x * math.MaxInt16)
}

var (
	u8Codec = sampleCodec[uint8]{
		mul:   mulInt[uint8],
		toS16: func(x uint8) int16 { return int16(int(x)-128) << 8 },
		toF32: func(x uint8) float32 { return float32(int(x)-128) / 128 },
	}
	s16Codec = sampleCodec[int16]{
		mul:   mulInt[int16],
		toS16: func(x int16) int16 { return x },
		toF32: func(x int16) float32 { return float32(x) / 32768 },
	}
	s32Codec = sampleCodec[int32]{
		mul:   mulInt[int32],
		toS16: audio.SampleToInt16,
		toF32: func(x int32) float32 { return float32(float64(x) / (1 << 31)) },
	}
	s64Codec = sampleCodec[int64]{
		mul:   mulInt[int64],
		toS16: func(x int64) int16 { return int16(x >> 48) },
		toF32: func(x int64) float32 { return float32(float64(x) / (1 << 63)) },
	}
	f32Codec = sampleCodec[float32]{
		mul:   mulFloat[float32],
		toS16: func(x float32) int16 { return floatToS16(float64(x)) },
		toF32: func(x float32) float32 { return x },
	}
	f64Codec = sampleCodec[float64]{
		mul:   mulFloat[float64],
		toS16: floatToS16,
		toF32: func(x float64) float32 { return float32(x) },
	}
)
