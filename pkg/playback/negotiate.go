// ABOUTME: Opens a media file and negotiates decoder, resampler and sink formats
// ABOUTME: Picks the first audio stream and derives the sample spec sent to the output
package playback

import (
	"fmt"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/convert"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
	"github.com/NotCompsky/playwav/pkg/audio/demux"
	"github.com/NotCompsky/playwav/pkg/audio/resample"
)

// decodeContext is shared by every file a session plays
type decodeContext struct {
	decoder   decode.Decoder
	frame     *audio.Frame
	resampler *resample.Context
	format    audio.Format
}

func newDecodeContext() *decodeContext {
	return &decodeContext{
		frame:     &audio.Frame{},
		resampler: resample.NewContext(),
	}
}

// reset replaces the decoder with a fresh one for format
func (d *decodeContext) reset(codec decode.Codec, format audio.Format) error {
	if err := d.closeDecoder(); err != nil {
		return err
	}

	dec := codec.NewDecoder()
	if err := dec.Configure(format); err != nil {
		return err
	}
	if err := dec.Open(); err != nil {
		dec.Close()
		return err
	}

	d.decoder = dec
	d.format = dec.Format()
	d.frame.Unref()
	return nil
}

func (d *decodeContext) closeDecoder() error {
	if d.decoder == nil {
		return nil
	}
	err := d.decoder.Close()
	d.decoder = nil
	return err
}

// openedFile is a container ready for the playback loop
type openedFile struct {
	container demux.Container
	stream    *audio.Stream
	spec      audio.SampleSpec
}

func firstAudioStream(streams []*audio.Stream) *audio.Stream {
	for _, st := range streams {
		if st.Type == audio.MediaTypeAudio {
			return st
		}
	}
	return nil
}

// open prepares path for playback. The container is closed again on any
// failure after it was opened.
func (s *Session) open(path string) (_ *openedFile, err error) {
	c, err := s.config.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileOpen, err)
	}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if err := c.FindStreamInfo(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamInfo, err)
	}

	stream := firstAudioStream(c.Streams())
	if stream == nil {
		return nil, ErrNoAudioStream
	}

	codec, ok := decode.Find(stream.Format.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, stream.Format.Codec)
	}

	if err := s.dec.reset(codec, stream.Format); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoderInit, err)
	}
	format := s.dec.format
	if !convert.Supported(format.SampleFormat) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSampleFormat, format.SampleFormat)
	}

	layout := audio.DefaultChannelLayout(format.Channels)
	if layout == 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannelLayout, format.Channels)
	}

	s.dec.resampler.SetOptions(resample.Options{
		InLayout:  layout,
		OutLayout: layout,
		InRate:    format.SampleRate,
		OutRate:   format.SampleRate,
		InFormat:  format.SampleFormat,
		OutFormat: format.SampleFormat,
	})
	if err := s.dec.resampler.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResamplerInit, err)
	}

	return &openedFile{
		container: c,
		stream:    stream,
		spec: audio.SampleSpec{
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			Wire:       audio.WireFormatFor(format.SampleFormat),
		},
	}, nil
}
