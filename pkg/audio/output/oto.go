// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds a persistent oto player through a pipe, adapting every stream to float32 stereo
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/resample"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; it is created for the first stream's
// rate and every later stream is adapted to it
var (
	otoContext     *oto.Context
	otoContextRate int
	otoContextMu   sync.Mutex
)

const otoChannels = 2

// drainPoll is how often a draining player is checked for completion
const drainPoll = 10 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	opts Options
}

func newOto(opts Options) Backend {
	return &Oto{opts: opts}
}

func (o *Oto) Name() string {
	return "oto"
}

func otoContextFor(sampleRate int, latency time.Duration) (*oto.Context, int, error) {
	otoContextMu.Lock()
	defer otoContextMu.Unlock()

	if otoContext != nil {
		return otoContext, otoContextRate, nil
	}

	ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: otoChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoContext = ctx
	otoContextRate = sampleRate
	return ctx, sampleRate, nil
}

// Connect opens a player for spec
func (o *Oto) Connect(spec audio.SampleSpec) (Conn, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}

	ctx, rate, err := otoContextFor(spec.SampleRate, o.opts.Latency)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	player := ctx.NewPlayer(newAdaptReader(pr, spec, rate))
	player.Play()

	log.Printf("Audio output initialized: %s via oto at %dHz", spec, rate)

	conn := newPipeConn(pw,
		func() error {
			for player.IsPlaying() {
				time.Sleep(drainPoll)
			}
			return player.Err()
		},
		func() error {
			pr.Close()
			return player.Close()
		},
	)
	go watchErrors(pr, player.Err, conn.done)
	return conn, nil
}

// Close leaves the process-wide context alive; oto cannot recreate it
func (o *Oto) Close() error {
	return nil
}

// adaptReader turns s16le or f32le mono/stereo into f32le stereo at the
// device rate
type adaptReader struct {
	src       io.Reader
	spec      audio.SampleSpec
	resampler *resample.Resampler

	raw     []byte
	carry   int
	in      []float32
	out     []float32
	encoded []byte
	pending []byte
}

func newAdaptReader(src io.Reader, spec audio.SampleSpec, deviceRate int) *adaptReader {
	a := &adaptReader{src: src, spec: spec}
	if spec.SampleRate != deviceRate {
		a.resampler = resample.New(spec.SampleRate, deviceRate, otoChannels)
		log.Printf("Warning: oto context is fixed at %dHz, resampling %dHz stream",
			a.resampler.OutputRate(), a.resampler.InputRate())
	}
	return a
}

func (a *adaptReader) Read(p []byte) (int, error) {
	for len(a.pending) == 0 {
		if err := a.fill(len(p)); err != nil {
			return 0, err
		}
	}
	n := copy(p, a.pending)
	a.pending = a.pending[n:]
	return n, nil
}

func (a *adaptReader) fill(want int) error {
	frameBytes := a.spec.FrameBytes()
	size := max(want/(otoChannels*4), 1) * frameBytes
	if cap(a.raw) < size {
		grown := make([]byte, size)
		copy(grown, a.raw[:a.carry])
		a.raw = grown
	}
	a.raw = a.raw[:size]

	n, err := a.src.Read(a.raw[a.carry:])
	n += a.carry
	whole := n - n%frameBytes
	if whole == 0 {
		a.carry = n
		return err
	}

	a.toStereo(a.raw[:whole])
	a.carry = copy(a.raw, a.raw[whole:n])

	samples := a.in
	if a.resampler != nil {
		need := a.resampler.OutputSamplesNeeded(len(a.in))
		if cap(a.out) < need {
			a.out = make([]float32, need)
		}
		samples = a.out[:a.resampler.Resample(a.in, a.out[:need])]
	}

	if cap(a.encoded) < len(samples)*4 {
		a.encoded = make([]byte, len(samples)*4)
	}
	a.encoded = a.encoded[:len(samples)*4]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(a.encoded[i*4:], math.Float32bits(s))
	}
	a.pending = a.encoded
	return nil
}

func (a *adaptReader) toStereo(b []byte) {
	channels := a.spec.Channels
	width := a.spec.Wire.BytesPerSample()
	frames := len(b) / (channels * width)

	if cap(a.in) < frames*otoChannels {
		a.in = make([]float32, frames*otoChannels)
	}
	a.in = a.in[:frames*otoChannels]

	for i := 0; i < frames; i++ {
		for ch := 0; ch < otoChannels; ch++ {
			off := (i*channels + min(ch, channels-1)) * width
			a.in[i*otoChannels+ch] = a.sample(b[off:])
		}
	}
}

func (a *adaptReader) sample(b []byte) float32 {
	if a.spec.Wire == audio.WireF32LE {
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
	return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
}
