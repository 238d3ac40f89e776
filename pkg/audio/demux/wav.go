// ABOUTME: WAV container backed by go-audio/wav
// ABOUTME: Hands out the raw data chunk as PCM packets tagged with the matching codec id
package demux

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
)

const (
	wavFormatPCM        = 1
	wavFormatADPCM      = 2
	wavFormatFloat      = 3
	wavFormatALaw       = 6
	wavFormatMuLaw      = 7
	wavFormatExtensible = 0xfffe
)

type wavContainer struct {
	base
	pcm        io.Reader
	frameBytes int
	buf        []byte
}

func newWAV(src io.ReadSeekCloser, _ []byte) Container {
	return &wavContainer{base: base{src: src}}
}

func (c *wavContainer) FindStreamInfo() error {
	if c.stream != nil {
		return nil
	}
	hdr := wav.NewDecoder(c.src)
	if !hdr.IsValidFile() {
		return fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}
	format := int(hdr.WavAudioFormat)
	if format == wavFormatExtensible {
		sub, err := wavSubFormat(c.src)
		if err != nil {
			return fmt.Errorf("failed to read WAV sub-format: %w", err)
		}
		format = sub
	}
	if _, err := c.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind: %w", err)
	}

	dec := wav.NewDecoder(c.src)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return fmt.Errorf("failed to read WAV header: %w", err)
	}
	if err := dec.FwdToPCM(); err != nil {
		return fmt.Errorf("failed to find WAV data chunk: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	c.frameBytes = channels * ((bitDepth + 7) / 8)
	if c.frameBytes == 0 {
		return fmt.Errorf("%w: %d channels at %d bits", ErrInvalidFile, channels, bitDepth)
	}
	c.pcm = io.LimitReader(dec.PCMChunk, int64(dec.PCMChunk.Size))
	c.buf = make([]byte, packetFrames*c.frameBytes)

	c.setStream(audio.Format{
		Codec:      wavCodec(format, bitDepth),
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	})
	return nil
}

func (c *wavContainer) ReadPacket(pkt *audio.Packet) error {
	if err := c.ready(); err != nil {
		return err
	}
	n, err := readFrames(c.pcm, c.buf, c.frameBytes)
	if err != nil {
		return err
	}
	copy(payload(pkt, n), c.buf[:n])
	return nil
}

// wavSubFormat reads the format tag carried in the sub-format GUID of a
// WAVE_FORMAT_EXTENSIBLE fmt chunk. go-audio/wav skips the extension bytes.
func wavSubFormat(r io.ReadSeeker) (int, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}
	for {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, err
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}
		// tag, channels, rate, byte rate, align, bits, cbSize, valid bits, mask, GUID
		if ch.Size < 40 {
			return 0, fmt.Errorf("%w: %d byte extensible fmt chunk", ErrInvalidFile, ch.Size)
		}
		body := make([]byte, 40)
		if _, err := io.ReadFull(ch, body); err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint16(body[24:26])), nil
	}
}

// wavCodec maps a WAVE format tag and bit depth to a codec id. Encodings
// without a decoder still get a distinct id so lookup fails cleanly.
func wavCodec(format, bitDepth int) audio.CodecID {
	switch format {
	case wavFormatPCM:
		switch bitDepth {
		case 8:
			return decode.CodecPCMU8
		case 16:
			return decode.CodecPCMS16LE
		case 24:
			return decode.CodecPCMS24LE
		case 32:
			return decode.CodecPCMS32LE
		case 64:
			return decode.CodecPCMS64LE
		}
	case wavFormatFloat:
		switch bitDepth {
		case 32:
			return decode.CodecPCMF32LE
		case 64:
			return decode.CodecPCMF64LE
		}
	case wavFormatADPCM:
		return "adpcm_ms"
	case wavFormatALaw:
		return "pcm_alaw"
	case wavFormatMuLaw:
		return "pcm_mulaw"
	}
	return audio.CodecID(fmt.Sprintf("wav_0x%04x_%d", format, bitDepth))
}
