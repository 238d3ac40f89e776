// ABOUTME: PulseAudio output implementation using the native protocol client
// ABOUTME: Opens one playback stream per connection in the stream's own format
package output

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// Pulse output implementation using a PulseAudio server
type Pulse struct {
	opts Options
}

func newPulse(opts Options) Backend {
	return &Pulse{opts: opts}
}

func pingPulse() error {
	c, err := pulse.NewClient()
	if err != nil {
		return err
	}
	c.Close()
	return nil
}

func (p *Pulse) Name() string {
	return "pulse"
}

// pulseReader hands pipe bytes to the playback stream
type pulseReader struct {
	io.Reader
	format byte
}

func (r pulseReader) Format() byte {
	return r.format
}

func (r pulseReader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	if errors.Is(err, io.EOF) {
		err = pulse.EndOfData
	}
	return n, err
}

func pulseFormat(w audio.WireFormat) byte {
	if w == audio.WireF32LE {
		return proto.FormatFloat32LE
	}
	return proto.FormatInt16LE
}

func pulseChannels(channels int) proto.ChannelMap {
	if channels == 1 {
		return proto.ChannelMap{proto.ChannelMono}
	}
	return proto.ChannelMap{proto.ChannelLeft, proto.ChannelRight}
}

// Connect opens a playback stream for spec
func (p *Pulse) Connect(spec audio.SampleSpec) (Conn, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}

	client, err := pulse.NewClient(pulse.ClientApplicationName(p.opts.AppName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PulseAudio: %w", err)
	}

	pr, pw := io.Pipe()
	stream, err := client.NewPlayback(
		pulseReader{Reader: pr, format: pulseFormat(spec.Wire)},
		pulse.PlaybackSampleRate(spec.SampleRate),
		pulse.PlaybackChannels(pulseChannels(spec.Channels)),
		pulse.PlaybackLatency(p.opts.Latency.Seconds()),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create playback stream: %w", err)
	}
	stream.Start()

	log.Printf("Audio output initialized: %s via PulseAudio", spec)

	conn := newPipeConn(pw,
		func() error {
			stream.Drain()
			if stream.Underflow() {
				log.Printf("PulseAudio reported an underflow")
			}
			return stream.Error()
		},
		func() error {
			pr.Close()
			stream.Close()
			client.Close()
			return nil
		},
	)
	go watchErrors(pr, stream.Error, conn.done)
	return conn, nil
}

func (p *Pulse) Close() error {
	return nil
}
