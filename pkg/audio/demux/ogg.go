// ABOUTME: Ogg Vorbis and Ogg Opus containers backed by oggvorbis and libopusfile
// ABOUTME: Both decode to interleaved float32 and are passed on as pcm_f32le packets
package demux

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"
	"gopkg.in/hraban/opus.v2"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
)

// opusRate is the only output rate of libopusfile
const opusRate = 48000

// vorbisReader is an interface for oggvorbis.Reader to allow testing
type vorbisReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type vorbisContainer struct {
	base
	openReader func(io.Reader) (vorbisReader, error)
	dec        vorbisReader
	channels   int
	floats     []float32
}

func newVorbis(src io.ReadSeekCloser, _ []byte) Container {
	return &vorbisContainer{
		base: base{src: src},
		openReader: func(r io.Reader) (vorbisReader, error) {
			return oggvorbis.NewReader(r)
		},
	}
}

func (c *vorbisContainer) FindStreamInfo() error {
	if c.stream != nil {
		return nil
	}
	dec, err := c.openReader(c.src)
	if err != nil {
		return fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}
	if dec.Channels() < 1 {
		return fmt.Errorf("%w: %d Vorbis channels", ErrInvalidFile, dec.Channels())
	}

	c.dec = dec
	c.channels = dec.Channels()
	c.floats = make([]float32, packetFrames*c.channels)
	c.setStream(audio.Format{
		Codec:      decode.CodecPCMF32LE,
		SampleRate: dec.SampleRate(),
		Channels:   c.channels,
		BitDepth:   32,
	})
	return nil
}

func (c *vorbisContainer) ReadPacket(pkt *audio.Packet) error {
	if err := c.ready(); err != nil {
		return err
	}

	// Read returns a count of interleaved values
	var n int
	var err error
	for n == 0 && err == nil {
		n, err = c.dec.Read(c.floats)
	}
	n -= n % c.channels
	if n == 0 {
		if err == io.EOF {
			return io.EOF
		}
		return err
	}
	putFloats(payload(pkt, n*4), c.floats[:n])
	return nil
}

// opusReader is an interface for opus.Stream to allow testing
type opusReader interface {
	ReadFloat32(pcm []float32) (int, error)
	Close() error
}

type opusContainer struct {
	base
	header     []byte
	openStream func(io.Reader) (opusReader, error)
	dec        opusReader
	channels   int
	floats     []float32
}

func newOpus(src io.ReadSeekCloser, header []byte) Container {
	return &opusContainer{
		base:   base{src: src},
		header: header,
		openStream: func(r io.Reader) (opusReader, error) {
			// hide Close so the stream never closes the file
			return opus.NewStream(struct{ io.Reader }{r})
		},
	}
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(header []byte) int {
	i := bytes.Index(header, []byte("OpusHead"))
	if i < 0 || len(header) < i+10 {
		return 0
	}
	return int(header[i+9])
}

func (c *opusContainer) FindStreamInfo() error {
	if c.stream != nil {
		return nil
	}
	channels := opusChannels(c.header)
	if channels < 1 {
		return fmt.Errorf("%w: missing OpusHead", ErrInvalidFile)
	}
	dec, err := c.openStream(c.src)
	if err != nil {
		return fmt.Errorf("failed to decode Ogg Opus: %w", err)
	}

	c.dec = dec
	c.channels = channels
	c.floats = make([]float32, packetFrames*channels)
	c.setStream(audio.Format{
		Codec:      decode.CodecPCMF32LE,
		SampleRate: opusRate,
		Channels:   channels,
		BitDepth:   32,
	})
	return nil
}

func (c *opusContainer) ReadPacket(pkt *audio.Packet) error {
	if err := c.ready(); err != nil {
		return err
	}

	// ReadFloat32 returns samples per channel
	var n int
	var err error
	for n == 0 && err == nil {
		n, err = c.dec.ReadFloat32(c.floats)
	}
	if n == 0 {
		if err == io.EOF {
			return io.EOF
		}
		return err
	}
	n *= c.channels
	putFloats(payload(pkt, n*4), c.floats[:n])
	return nil
}

func (c *opusContainer) Close() error {
	if c.dec != nil {
		c.dec.Close()
		c.dec = nil
	}
	return c.base.Close()
}

func putFloats(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
