// ABOUTME: PCM audio decoders
// ABOUTME: Unpacks raw integer and float PCM of either byte order into host-order frames
package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/NotCompsky/playwav/pkg/audio"
)

// Raw PCM codec ids. Planar variants carry one block per channel, channel 0 first.
const (
	CodecPCMU8          audio.CodecID = "pcm_u8"
	CodecPCMS8          audio.CodecID = "pcm_s8"
	CodecPCMS16LE       audio.CodecID = "pcm_s16le"
	CodecPCMS16BE       audio.CodecID = "pcm_s16be"
	CodecPCMS24LE       audio.CodecID = "pcm_s24le"
	CodecPCMS24BE       audio.CodecID = "pcm_s24be"
	CodecPCMS32LE       audio.CodecID = "pcm_s32le"
	CodecPCMS32BE       audio.CodecID = "pcm_s32be"
	CodecPCMS64LE       audio.CodecID = "pcm_s64le"
	CodecPCMF32LE       audio.CodecID = "pcm_f32le"
	CodecPCMF32BE       audio.CodecID = "pcm_f32be"
	CodecPCMF64LE       audio.CodecID = "pcm_f64le"
	CodecPCMF64BE       audio.CodecID = "pcm_f64be"
	CodecPCMS16LEPlanar audio.CodecID = "pcm_s16le_planar"
	CodecPCMS32LEPlanar audio.CodecID = "pcm_s32le_planar"
)

// unpackFunc converts len(dst)/width samples from src into dst
type unpackFunc func(dst, src []byte)

// PCMCodec decodes one raw PCM layout
type PCMCodec struct {
	id     audio.CodecID
	format audio.SampleFormat
	width  int // bytes per input sample
	unpack unpackFunc
}

func init() {
	le, be := binary.LittleEndian, binary.BigEndian
	for _, c := range []*PCMCodec{
		{CodecPCMU8, audio.SampleFormatU8, 1, unpackU8},
		{CodecPCMS8, audio.SampleFormatU8, 1, unpackS8},
		{CodecPCMS16LE, audio.SampleFormatS16, 2, unpack16(le)},
		{CodecPCMS16BE, audio.SampleFormatS16, 2, unpack16(be)},
		{CodecPCMS24LE, audio.SampleFormatS32, 3, unpack24LE},
		{CodecPCMS24BE, audio.SampleFormatS32, 3, unpack24BE},
		{CodecPCMS32LE, audio.SampleFormatS32, 4, unpack32(le)},
		{CodecPCMS32BE, audio.SampleFormatS32, 4, unpack32(be)},
		{CodecPCMS64LE, audio.SampleFormatS64, 8, unpack64(le)},
		{CodecPCMF32LE, audio.SampleFormatFLT, 4, unpackF32(le)},
		{CodecPCMF32BE, audio.SampleFormatFLT, 4, unpackF32(be)},
		{CodecPCMF64LE, audio.SampleFormatDBL, 8, unpackF64(le)},
		{CodecPCMF64BE, audio.SampleFormatDBL, 8, unpackF64(be)},
		{CodecPCMS16LEPlanar, audio.SampleFormatS16P, 2, unpack16(le)},
		{CodecPCMS32LEPlanar, audio.SampleFormatS32P, 4, unpack32(le)},
	} {
		Register(c)
	}
}

// ID returns the codec id
func (c *PCMCodec) ID() audio.CodecID { return c.id }

// SampleFormat returns the format of decoded frames
func (c *PCMCodec) SampleFormat() audio.SampleFormat { return c.format }

// NewDecoder creates an unconfigured PCM decoder
func (c *PCMCodec) NewDecoder() Decoder {
	return &PCMDecoder{codec: c}
}

// PCMDecoder decodes PCM audio
type PCMDecoder struct {
	codec      *PCMCodec
	format     audio.Format
	configured bool
	open       bool
	pending    []byte
	hasPending bool
	flushing   bool
}

// Configure copies stream parameters into the decoder
func (d *PCMDecoder) Configure(format audio.Format) error {
	if format.Codec != d.codec.id {
		return fmt.Errorf("%w: codec %s for %s decoder", ErrInvalidParams, format.Codec, d.codec.id)
	}
	if format.Channels < 1 {
		return fmt.Errorf("%w: %d channels", ErrInvalidParams, format.Channels)
	}
	if format.SampleRate < 1 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, format.SampleRate)
	}

	format.SampleFormat = d.codec.format
	d.format = format
	d.configured = true
	d.open = false
	return nil
}

// Open prepares the decoder for packets
func (d *PCMDecoder) Open() error {
	if !d.configured {
		return ErrNotConfigured
	}
	d.open = true
	d.hasPending = false
	d.flushing = false
	return nil
}

// Format returns the configured stream format
func (d *PCMDecoder) Format() audio.Format {
	return d.format
}

// SendPacket queues one packet for decoding
func (d *PCMDecoder) SendPacket(pkt *audio.Packet) error {
	if !d.open {
		return ErrNotOpen
	}
	if d.flushing {
		return ErrAlreadyFlushed
	}
	if pkt == nil {
		d.flushing = true
		return nil
	}
	if d.hasPending {
		return ErrAgain
	}

	frameBytes := d.codec.width * d.format.Channels
	if len(pkt.Data)%frameBytes != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidData, len(pkt.Data), frameBytes)
	}
	// the container reuses its packet buffer
	d.pending = append(d.pending[:0], pkt.Data...)
	d.hasPending = true
	return nil
}

// ReceiveFrame converts the pending packet into f
func (d *PCMDecoder) ReceiveFrame(f *audio.Frame) error {
	if !d.open {
		return ErrNotOpen
	}
	if !d.hasPending {
		if d.flushing {
			return ErrEOF
		}
		return ErrAgain
	}
	d.hasPending = false

	channels := d.format.Channels
	n := len(d.pending) / (d.codec.width * channels)
	f.Alloc(d.codec.format, channels, n)
	f.SampleRate = d.format.SampleRate

	if !d.codec.format.IsPlanar() {
		d.codec.unpack(f.Data[0], d.pending)
		return nil
	}
	block := n * d.codec.width
	for ch := 0; ch < channels; ch++ {
		d.codec.unpack(f.Data[ch], d.pending[ch*block:(ch+1)*block])
	}
	return nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	d.open = false
	d.configured = false
	d.hasPending = false
	d.flushing = false
	d.pending = nil
	return nil
}

func unpackU8(dst, src []byte) {
	copy(dst, src)
}

// signed 8-bit is carried as offset-binary u8
func unpackS8(dst, src []byte) {
	for i := range dst {
		dst[i] = src[i] ^ 0x80
	}
}

func unpack16(order binary.ByteOrder) unpackFunc {
	return func(dst, src []byte) {
		out := audio.View[int16](dst)
		for i := range out {
			out[i] = int16(order.Uint16(src[i*2:]))
		}
	}
}

// 24-bit samples are left-justified into int32
func unpack24LE(dst, src []byte) {
	out := audio.View[int32](dst)
	for i := range out {
		out[i] = audio.SampleFrom24Bit([3]byte{src[i*3], src[i*3+1], src[i*3+2]})
	}
}

func unpack24BE(dst, src []byte) {
	out := audio.View[int32](dst)
	for i := range out {
		out[i] = audio.SampleFrom24Bit([3]byte{src[i*3+2], src[i*3+1], src[i*3]})
	}
}

func unpack32(order binary.ByteOrder) unpackFunc {
	return func(dst, src []byte) {
		out := audio.View[int32](dst)
		for i := range out {
			out[i] = int32(order.Uint32(src[i*4:]))
		}
	}
}

func unpack64(order binary.ByteOrder) unpackFunc {
	return func(dst, src []byte) {
		out := audio.View[int64](dst)
		for i := range out {
			out[i] = int64(order.Uint64(src[i*8:]))
		}
	}
}

func unpackF32(order binary.ByteOrder) unpackFunc {
	return func(dst, src []byte) {
		out := audio.View[float32](dst)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(src[i*4:]))
		}
	}
}

func unpackF64(order binary.ByteOrder) unpackFunc {
	return func(dst, src []byte) {
		out := audio.View[float64](dst)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(src[i*8:]))
		}
	}
}
