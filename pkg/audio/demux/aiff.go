// ABOUTME: AIFF container backed by go-audio/aiff
// ABOUTME: Repacks decoded integer buffers as little-endian PCM packets
package demux

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type aiffContainer struct {
	base
	openDecoder func(io.ReadSeeker) (aiffReader, int, error)
	dec         aiffReader
	bitDepth    int
	channels    int
	ints        *goaudio.IntBuffer
}

func newAIFF(src io.ReadSeekCloser, _ []byte) Container {
	return &aiffContainer{base: base{src: src}, openDecoder: openAIFF}
}

func openAIFF(r io.ReadSeeker) (aiffReader, int, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()
	return dec, int(dec.BitDepth), nil
}

func (c *aiffContainer) FindStreamInfo() error {
	if c.stream != nil {
		return nil
	}
	dec, bitDepth, err := c.openDecoder(c.src)
	if err != nil {
		return err
	}
	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return fmt.Errorf("%w: missing AIFF format", ErrInvalidFile)
	}
	if bitDepth < 1 || bitDepth > 32 {
		return fmt.Errorf("%w: %d-bit AIFF", ErrInvalidFile, bitDepth)
	}

	c.dec = dec
	c.bitDepth = bitDepth
	c.channels = format.NumChannels
	c.ints = &goaudio.IntBuffer{
		Data:   make([]int, packetFrames*c.channels),
		Format: format,
	}

	codec := decode.CodecPCMS32LE
	if bitDepth <= 16 {
		codec = decode.CodecPCMS16LE
	}
	c.setStream(audio.Format{
		Codec:      codec,
		SampleRate: format.SampleRate,
		Channels:   c.channels,
		BitDepth:   bitDepth,
	})
	return nil
}

func (c *aiffContainer) ReadPacket(pkt *audio.Packet) error {
	if err := c.ready(); err != nil {
		return err
	}

	c.ints.Data = c.ints.Data[:cap(c.ints.Data)]
	n, err := c.dec.PCMBuffer(c.ints)
	n -= n % c.channels
	if n == 0 {
		if err != nil && err != io.EOF {
			return err
		}
		return io.EOF
	}

	samples := c.ints.Data[:n]
	if c.bitDepth <= 16 {
		shift := 16 - c.bitDepth
		out := payload(pkt, n*2)
		for i, v := range samples {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v<<shift)))
		}
		return nil
	}
	// left-justify into 32 bits
	shift := 32 - c.bitDepth
	out := payload(pkt, n*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(v<<shift)))
	}
	return nil
}
