// ABOUTME: FLAC container backed by mewkiz/flac
// ABOUTME: Each FLAC frame becomes one planar packet, one block of samples per channel
package demux

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
)

// flacReader is an interface for flac.Stream to allow testing
type flacReader interface {
	ParseNext() (*frame.Frame, error)
}

type flacContainer struct {
	base
	openStream func(io.Reader) (flacReader, *meta.StreamInfo, error)
	dec        flacReader
	channels   int
	bitDepth   int
}

func newFLAC(src io.ReadSeekCloser, _ []byte) Container {
	return &flacContainer{
		base: base{src: src},
		openStream: func(r io.Reader) (flacReader, *meta.StreamInfo, error) {
			stream, err := flac.New(r)
			if err != nil {
				return nil, nil, err
			}
			return stream, stream.Info, nil
		},
	}
}

func (c *flacContainer) FindStreamInfo() error {
	if c.stream != nil {
		return nil
	}
	dec, info, err := c.openStream(c.src)
	if err != nil {
		return fmt.Errorf("failed to decode FLAC: %w", err)
	}
	if info == nil || info.NChannels == 0 {
		return fmt.Errorf("%w: missing FLAC stream info", ErrInvalidFile)
	}

	c.dec = dec
	c.channels = int(info.NChannels)
	c.bitDepth = int(info.BitsPerSample)

	codec := decode.CodecPCMS32LEPlanar
	if c.bitDepth <= 16 {
		codec = decode.CodecPCMS16LEPlanar
	}
	c.setStream(audio.Format{
		Codec:      codec,
		SampleRate: int(info.SampleRate),
		Channels:   c.channels,
		BitDepth:   c.bitDepth,
	})
	return nil
}

func (c *flacContainer) ReadPacket(pkt *audio.Packet) error {
	if err := c.ready(); err != nil {
		return err
	}
	f, err := c.dec.ParseNext()
	if err != nil {
		return err
	}
	if len(f.Subframes) < c.channels {
		return fmt.Errorf("%w: FLAC frame has %d subframes, want %d", ErrInvalidFile, len(f.Subframes), c.channels)
	}

	n := int(f.BlockSize)
	if c.bitDepth <= 16 {
		shift := 16 - c.bitDepth
		out := payload(pkt, n*2*c.channels)
		for ch := 0; ch < c.channels; ch++ {
			plane := out[ch*n*2:]
			for i, s := range f.Subframes[ch].Samples[:n] {
				binary.LittleEndian.PutUint16(plane[i*2:], uint16(int16(s<<shift)))
			}
		}
		return nil
	}

	shift := 32 - c.bitDepth
	out := payload(pkt, n*4*c.channels)
	for ch := 0; ch < c.channels; ch++ {
		plane := out[ch*n*4:]
		for i, s := range f.Subframes[ch].Samples[:n] {
			binary.LittleEndian.PutUint32(plane[i*4:], uint32(s<<shift))
		}
	}
	return nil
}
