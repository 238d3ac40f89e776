// ABOUTME: MP3 container backed by go-mp3
// ABOUTME: The library decodes to stereo 16-bit PCM, which is passed on as pcm_s16le packets
package demux

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
)

// mp3Reader is an interface for mp3.Decoder to allow testing
type mp3Reader interface {
	io.Reader
	SampleRate() int
}

type mp3Container struct {
	base
	openDecoder func(io.Reader) (mp3Reader, error)
	dec         mp3Reader
	buf         []byte
}

// go-mp3 always outputs stereo int16
const mp3FrameBytes = 4

func newMP3(src io.ReadSeekCloser, _ []byte) Container {
	return &mp3Container{
		base: base{src: src},
		openDecoder: func(r io.Reader) (mp3Reader, error) {
			return mp3.NewDecoder(r)
		},
	}
}

func (c *mp3Container) FindStreamInfo() error {
	if c.stream != nil {
		return nil
	}
	dec, err := c.openDecoder(c.src)
	if err != nil {
		return fmt.Errorf("failed to decode MP3: %w", err)
	}

	c.dec = dec
	c.buf = make([]byte, packetFrames*mp3FrameBytes)
	c.setStream(audio.Format{
		Codec:      decode.CodecPCMS16LE,
		SampleRate: dec.SampleRate(),
		Channels:   2,
		BitDepth:   16,
	})
	return nil
}

func (c *mp3Container) ReadPacket(pkt *audio.Packet) error {
	if err := c.ready(); err != nil {
		return err
	}
	n, err := readFrames(c.dec, c.buf, mp3FrameBytes)
	if err != nil {
		return err
	}
	copy(payload(pkt, n), c.buf[:n])
	return nil
}
