// ABOUTME: Tests for the playback session and loop
// ABOUTME: Uses fake containers, a fake codec and a recording output backend
package playback

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
	"github.com/NotCompsky/playwav/pkg/audio/demux"
	"github.com/NotCompsky/playwav/pkg/audio/output"
)

// fakeContainer serves prepared packets
type fakeContainer struct {
	streams  []*audio.Stream
	packets  []audio.Packet
	infoErr  error
	next     int
	closed   bool
}

func (c *fakeContainer) FindStreamInfo() error { return c.infoErr }

func (c *fakeContainer) Streams() []*audio.Stream { return c.streams }

func (c *fakeContainer) ReadPacket(pkt *audio.Packet) error {
	if c.next >= len(c.packets) {
		return io.EOF
	}
	p := c.packets[c.next]
	c.next++
	pkt.StreamIndex = p.StreamIndex
	pkt.Data = append(pkt.Data[:0], p.Data...)
	return nil
}

func (c *fakeContainer) Close() error {
	c.closed = true
	return nil
}

// recordingBackend keeps everything written to it
type recordingBackend struct {
	specs      []audio.SampleSpec
	conns      []*recordingConn
	connectErr error
	writeErrs  []error
	closed     int
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) Connect(spec audio.SampleSpec) (output.Conn, error) {
	if b.connectErr != nil {
		return nil, b.connectErr
	}
	b.specs = append(b.specs, spec)
	c := &recordingConn{errs: b.writeErrs}
	b.conns = append(b.conns, c)
	return c, nil
}

func (b *recordingBackend) Close() error {
	b.closed++
	return nil
}

type recordingConn struct {
	data    []byte
	writes  int
	errs    []error
	drained bool
	closed  bool
}

func (c *recordingConn) Write(p []byte) error {
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return err
		}
	}
	c.writes++
	c.data = append(c.data, p...)
	return nil
}

func (c *recordingConn) Drain() error {
	c.drained = true
	return nil
}

func (c *recordingConn) Close() error {
	c.closed = true
	return nil
}

func (c *recordingConn) int16s() []int16 {
	out := make([]int16, len(c.data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(c.data[i*2:]))
	}
	return out
}

func audioStream(index int, codec audio.CodecID, rate, channels int) *audio.Stream {
	return &audio.Stream{
		Index: index,
		Type:  audio.MediaTypeAudio,
		Format: audio.Format{
			Codec:      codec,
			SampleRate: rate,
			Channels:   channels,
		},
	}
}

// s16File builds a pcm_s16le container whose samples hold their packet number
func s16File(rate, channels, packetFrames, packets int) *fakeContainer {
	c := &fakeContainer{streams: []*audio.Stream{audioStream(0, decode.CodecPCMS16LE, rate, channels)}}
	for p := 0; p < packets; p++ {
		data := make([]byte, packetFrames*channels*2)
		for i := 0; i < packetFrames*channels; i++ {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(p))
		}
		c.packets = append(c.packets, audio.Packet{StreamIndex: 0, Data: data})
	}
	return c
}

// f32File builds a pcm_f32le container of silence
func f32File(rate, channels, packetFrames, packets int) *fakeContainer {
	c := &fakeContainer{streams: []*audio.Stream{audioStream(0, decode.CodecPCMF32LE, rate, channels)}}
	for p := 0; p < packets; p++ {
		c.packets = append(c.packets, audio.Packet{StreamIndex: 0, Data: make([]byte, packetFrames*channels*4)})
	}
	return c
}

func newTestSession(t *testing.T, backend output.Backend, files map[string]demux.Container) (*Session, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	s, err := New(Config{
		Backend: backend,
		Logger:  log.New(&logs, "", 0),
		Open: func(path string) (demux.Container, error) {
			c, ok := files[path]
			if !ok {
				return nil, errors.New("no such file")
			}
			return c, nil
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, &logs
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrInitialization) {
		t.Errorf("expected ErrInitialization, got %v", err)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Duration
		want       Window
	}{
		{"trimmed", 2 * time.Second, 5 * time.Second, Window{Start: 88200, End: 220500}},
		{"open end", time.Second, 0, Window{Start: 44100, End: Unbounded}},
		{"whole file", 0, 0, Window{Start: 0, End: Unbounded}},
		{"end before start", 5 * time.Second, 2 * time.Second, Window{Start: 220500, End: 220500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWindow(tt.start, tt.end, 44100)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPlayTrimsToWindow(t *testing.T) {
	backend := &recordingBackend{}
	// 10 s at 44100 Hz in 4410-frame packets
	file := s16File(44100, 2, 4410, 100)
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	if err := s.Play("a.wav", 2*time.Second, 5*time.Second, 1.0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	conn := backend.conns[0]
	samples := conn.int16s()
	if got := len(samples) / 2; got != 220500-88200 {
		t.Fatalf("expected %d frames, got %d", 220500-88200, got)
	}
	// packet 20 starts at frame 88200, packet 49 ends at 220500
	if samples[0] != 20 || samples[len(samples)-1] != 49 {
		t.Errorf("expected packets 20..49, got %d..%d", samples[0], samples[len(samples)-1])
	}
	if !conn.drained || !conn.closed || !file.closed {
		t.Errorf("expected sink drained and closed and file closed")
	}
	if file.next != 50 {
		t.Errorf("expected reading to stop after packet 50, read %d", file.next)
	}
}

func TestPlayUnboundedEnd(t *testing.T) {
	backend := &recordingBackend{}
	file := s16File(44100, 1, 4410, 10)
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	if err := s.Play("a.wav", 0, 0, 1.0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if got := len(backend.conns[0].int16s()); got != 44100 {
		t.Errorf("expected the whole file (44100 frames), got %d", got)
	}
	if s.Stats().FramesWritten != 44100 || s.Stats().FilesPlayed != 1 {
		t.Errorf("unexpected stats %+v", s.Stats())
	}

	spec := backend.specs[0]
	if spec != (audio.SampleSpec{SampleRate: 44100, Channels: 1, Wire: audio.WireS16LE}) {
		t.Errorf("unexpected sink spec %v", spec)
	}
}

func TestPlayAppliesVolume(t *testing.T) {
	backend := &recordingBackend{}
	file := s16File(8000, 2, 100, 3)
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	if err := s.Play("a.wav", 0, 0, 2.0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	samples := backend.conns[0].int16s()
	if samples[len(samples)-1] != 4 {
		t.Errorf("expected packet 2 doubled to 4, got %d", samples[len(samples)-1])
	}
}

func TestPlayFloatUsesF32Wire(t *testing.T) {
	backend := &recordingBackend{}
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-0.5))
	file := &fakeContainer{
		streams: []*audio.Stream{audioStream(0, decode.CodecPCMF32LE, 48000, 2)},
		packets: []audio.Packet{{Data: data}},
	}
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.ogg": file})

	if err := s.Play("a.ogg", 0, 0, 0.5); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if backend.specs[0].Wire != audio.WireF32LE {
		t.Errorf("expected f32le wire, got %v", backend.specs[0].Wire)
	}
	got := math.Float32frombits(binary.LittleEndian.Uint32(backend.conns[0].data))
	if got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
}

func TestPlayRejectsSixChannels(t *testing.T) {
	backend := &recordingBackend{}
	file := s16File(48000, 6, 100, 1)
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	err := s.Play("a.wav", 0, 0, 1.0)
	if !errors.Is(err, ErrUnsupportedChannelLayout) {
		t.Fatalf("expected ErrUnsupportedChannelLayout, got %v", err)
	}
	if len(backend.specs) != 0 {
		t.Error("sink must not be connected")
	}
	if !file.closed {
		t.Error("expected container to be closed")
	}
}

func TestPlayOpenErrors(t *testing.T) {
	noAudio := &fakeContainer{streams: []*audio.Stream{{Index: 0, Type: audio.MediaTypeVideo}}}
	badInfo := &fakeContainer{infoErr: errors.New("truncated header")}
	unknownCodec := &fakeContainer{streams: []*audio.Stream{audioStream(0, "pcm_s12le", 44100, 2)}}
	badParams := &fakeContainer{streams: []*audio.Stream{audioStream(0, decode.CodecPCMS16LE, 0, 2)}}

	files := map[string]demux.Container{
		"noaudio.mkv": noAudio,
		"info.wav":    badInfo,
		"codec.wav":   unknownCodec,
		"params.wav":  badParams,
	}

	tests := []struct {
		path string
		want error
		file *fakeContainer
	}{
		{"missing.wav", ErrFileOpen, nil},
		{"info.wav", ErrStreamInfo, badInfo},
		{"noaudio.mkv", ErrNoAudioStream, noAudio},
		{"codec.wav", ErrUnsupportedCodec, unknownCodec},
		{"params.wav", ErrDecoderInit, badParams},
	}

	backend := &recordingBackend{}
	s, logs := newTestSession(t, backend, files)

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := s.Play(tt.path, 0, 0, 1.0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.file != nil && !tt.file.closed {
				t.Error("expected container to be closed")
			}
			if !strings.Contains(logs.String(), tt.path) {
				t.Errorf("expected the path in the log, got %q", logs.String())
			}
		})
	}
	if len(backend.specs) != 0 {
		t.Error("no sink connection expected")
	}
}

func TestPlaySinkConnectError(t *testing.T) {
	backend := &recordingBackend{connectErr: errors.New("connection refused")}
	file := s16File(44100, 2, 100, 1)
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	if err := s.Play("a.wav", 0, 0, 1.0); !errors.Is(err, ErrSinkConnect) {
		t.Fatalf("expected ErrSinkConnect, got %v", err)
	}
	if !file.closed {
		t.Error("expected container to be closed")
	}
}

func TestWriteErrorsAreCollapsed(t *testing.T) {
	failure := &output.WriteError{Code: output.ErrnoIO, Err: errors.New("device gone")}
	backend := &recordingBackend{writeErrs: []error{failure, failure, failure, nil}}
	file := s16File(44100, 2, 100, 4)
	s, logs := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	if err := s.Play("a.wav", 0, 0, 1.0); err != nil {
		t.Fatalf("sink errors must not end the file: %v", err)
	}

	out := logs.String()
	if n := strings.Count(out, "writing to audio sink"); n != 1 {
		t.Errorf("expected one error line, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "Error 3 writing to audio sink: device gone") {
		t.Errorf("unexpected error line:\n%s", out)
	}
	if !strings.Contains(out, "Previous error was repeated 2 times") {
		t.Errorf("expected repeat summary:\n%s", out)
	}
	if backend.conns[0].writes != 1 {
		t.Errorf("expected the last packet to be written, got %d writes", backend.conns[0].writes)
	}
}

func TestWriteErrorReporter(t *testing.T) {
	var logs bytes.Buffer
	r := &writeErrorReporter{logger: log.New(&logs, "", 0)}

	closed := &output.WriteError{Code: output.ErrnoClosed, Err: errors.New("closed")}
	ioErr := &output.WriteError{Code: output.ErrnoIO, Err: errors.New("io")}

	r.report(closed)
	r.report(closed)
	r.report(ioErr)
	r.success()
	r.success()
	r.report(errors.New("plain"))
	r.flush()

	want := "Error 2 writing to audio sink: closed\n" +
		"Previous error was repeated 1 times\n" +
		"Error 3 writing to audio sink: io\n" +
		"Error 3 writing to audio sink: plain\n"
	if logs.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, logs.String())
	}
}

func TestFifoReuse(t *testing.T) {
	backend := &recordingBackend{}
	files := map[string]demux.Container{
		"a.wav": s16File(44100, 2, 100, 2),
		"b.wav": s16File(48000, 2, 100, 2),
		"c.wav": s16File(44100, 1, 100, 2),
		"d.wav": s16File(44100, 1, 100, 2),
		"e.wav": f32File(44100, 1, 100, 2),
		"f.wav": s16File(44100, 2, 100, 2),
		"g.wav": f32File(44100, 2, 100, 2),
	}
	s, _ := newTestSession(t, backend, files)

	tests := []struct {
		path        string
		allocations int
	}{
		{"a.wav", 1},
		{"b.wav", 1}, // rate does not matter
		{"c.wav", 2},
		{"d.wav", 2},
		{"e.wav", 3}, // same channels, new representation
		{"f.wav", 4},
		{"g.wav", 5},
	}

	for _, tt := range tests {
		if err := s.Play(tt.path, 0, 0, 1.0); err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		if got := s.Stats().FifoAllocations; got != tt.allocations {
			t.Errorf("after %s: expected %d allocations, got %d", tt.path, tt.allocations, got)
		}
		if s.fifo.Size() != 0 {
			t.Errorf("after %s: FIFO not drained", tt.path)
		}
	}
}

func TestFifoResetBetweenFiles(t *testing.T) {
	backend := &recordingBackend{}
	files := map[string]demux.Container{
		"a.wav": s16File(44100, 1, 100, 1),
		"b.wav": s16File(44100, 1, 100, 1),
	}
	s, _ := newTestSession(t, backend, files)

	if err := s.Play("a.wav", 0, 0, 1.0); err != nil {
		t.Fatal(err)
	}

	// leave stale samples behind
	stale := &audio.Frame{}
	stale.Alloc(audio.SampleFormatS16, 1, 50)
	if err := s.fifo.Write(stale); err != nil {
		t.Fatal(err)
	}

	if err := s.Play("b.wav", 0, 0, 1.0); err != nil {
		t.Fatal(err)
	}
	if got := len(backend.conns[1].data) / 2; got != 100 {
		t.Errorf("expected only the second file's 100 frames, got %d", got)
	}
	if s.Stats().FifoAllocations != 1 {
		t.Errorf("expected the FIFO to be reused")
	}
}

func TestOtherStreamsAreSkipped(t *testing.T) {
	backend := &recordingBackend{}
	file := &fakeContainer{
		streams: []*audio.Stream{
			{Index: 0, Type: audio.MediaTypeVideo},
			audioStream(1, decode.CodecPCMS16LE, 44100, 1),
		},
		packets: []audio.Packet{
			{StreamIndex: 0, Data: []byte{1, 2, 3}},
			{StreamIndex: 1, Data: make([]byte, 20)},
			{StreamIndex: 0, Data: []byte{4, 5, 6}},
			{StreamIndex: 1, Data: make([]byte, 20)},
		},
	}
	s, logs := newTestSession(t, backend, map[string]demux.Container{"a.mp4": file})

	if err := s.Play("a.mp4", 0, 0, 1.0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if got := len(backend.conns[0].data); got != 40 {
		t.Errorf("expected 40 bytes of audio, got %d", got)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output %q", logs.String())
	}
}

func TestBadPacketIsSkipped(t *testing.T) {
	backend := &recordingBackend{}
	file := &fakeContainer{
		streams: []*audio.Stream{audioStream(0, decode.CodecPCMS16LE, 44100, 2)},
		packets: []audio.Packet{{Data: make([]byte, 8)}, {Data: make([]byte, 3)}, {Data: make([]byte, 8)}},
	}
	s, logs := newTestSession(t, backend, map[string]demux.Container{"a.wav": file})

	if err := s.Play("a.wav", 0, 0, 1.0); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !strings.Contains(logs.String(), "Error sending packet to decoder") {
		t.Errorf("expected the bad packet to be logged, got %q", logs.String())
	}
	if got := len(backend.conns[0].data); got != 16 {
		t.Errorf("expected both good packets, got %d bytes", got)
	}
}

// failingCodec produces one frame per packet and fails on the given packet.
// A zero format means s16 output.
type failingCodec struct {
	id      audio.CodecID
	failAt  int
	failErr error
	format  audio.SampleFormat
}

func (c failingCodec) ID() audio.CodecID { return c.id }

func (c failingCodec) NewDecoder() decode.Decoder { return &failingDecoder{codec: c} }

type failingDecoder struct {
	codec   failingCodec
	format  audio.Format
	packets int
	pending bool
	flushed bool
}

func (d *failingDecoder) Configure(f audio.Format) error {
	f.SampleFormat = audio.SampleFormatS16
	if d.codec.format != 0 {
		f.SampleFormat = d.codec.format
	}
	d.format = f
	return nil
}

func (d *failingDecoder) Open() error { return nil }

func (d *failingDecoder) Format() audio.Format { return d.format }

func (d *failingDecoder) SendPacket(pkt *audio.Packet) error {
	if pkt == nil {
		d.flushed = true
		return nil
	}
	d.packets++
	d.pending = true
	return nil
}

func (d *failingDecoder) ReceiveFrame(f *audio.Frame) error {
	if !d.pending {
		if d.flushed {
			return decode.ErrEOF
		}
		return decode.ErrAgain
	}
	d.pending = false
	if d.packets == d.codec.failAt {
		return d.codec.failErr
	}
	f.Alloc(audio.SampleFormatS16, d.format.Channels, 10)
	return nil
}

func (d *failingDecoder) Close() error { return nil }

func TestDecodeErrors(t *testing.T) {
	decode.Register(failingCodec{id: "test_transient", failAt: 2, failErr: decode.ErrAgain})
	decode.Register(failingCodec{id: "test_fatal", failAt: 2, failErr: errors.New("corrupt bitstream")})

	tests := []struct {
		codec     audio.CodecID
		wantErr   error
		wantBytes int
	}{
		{"test_transient", nil, 2 * 10 * 2},
		{"test_fatal", ErrDecodeFatal, 1 * 10 * 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec), func(t *testing.T) {
			backend := &recordingBackend{}
			file := &fakeContainer{
				streams: []*audio.Stream{audioStream(0, tt.codec, 44100, 1)},
				packets: []audio.Packet{{}, {}, {}},
			}
			s, _ := newTestSession(t, backend, map[string]demux.Container{"a.raw": file})

			err := s.Play("a.raw", 0, 0, 1.0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := len(backend.conns[0].data); got != tt.wantBytes {
				t.Errorf("expected %d bytes written, got %d", tt.wantBytes, got)
			}
		})
	}
}

func TestPlayUnsupportedSampleFormat(t *testing.T) {
	decode.Register(failingCodec{id: "test_odd_format", format: audio.SampleFormat(99)})

	backend := &recordingBackend{}
	file := &fakeContainer{
		streams: []*audio.Stream{audioStream(0, "test_odd_format", 44100, 2)},
		packets: []audio.Packet{{}},
	}
	s, _ := newTestSession(t, backend, map[string]demux.Container{"a.raw": file})

	err := s.Play("a.raw", 0, 0, 1.0)
	if !errors.Is(err, ErrUnsupportedSampleFormat) {
		t.Fatalf("expected ErrUnsupportedSampleFormat, got %v", err)
	}
	if len(backend.specs) != 0 {
		t.Errorf("expected no sink connection, got %d", len(backend.specs))
	}
	if !file.closed {
		t.Error("expected container to be closed")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	backend := &recordingBackend{}
	s, err := New(Config{Backend: backend})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if backend.closed != 1 {
		t.Errorf("expected backend closed once, got %d", backend.closed)
	}
	if err := s.Play("a.wav", 0, 0, 1.0); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestOnProgress(t *testing.T) {
	backend := &recordingBackend{}
	var updates []Progress
	s, err := New(Config{
		Backend:    backend,
		Logger:     log.New(io.Discard, "", 0),
		OnProgress: func(p Progress) { updates = append(updates, p) },
		Open: func(string) (demux.Container, error) {
			// 1 s in 100 ms packets
			return s16File(8000, 1, 800, 10), nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Play("a.wav", 0, 0, 0.5); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if len(updates) != 12 {
		t.Fatalf("expected start, 10 updates and done, got %d", len(updates))
	}
	first, last := updates[0], updates[len(updates)-1]
	if first.Window.Current != 0 || first.Done || first.Codec != decode.CodecPCMS16LE || first.Volume != 0.5 {
		t.Errorf("unexpected first update %+v", first)
	}
	if !last.Done || last.Window.Current != 8000 || last.Path != "a.wav" {
		t.Errorf("unexpected last update %+v", last)
	}
}

// interruptingBackend interrupts the session after a number of writes
type interruptingBackend struct {
	recordingBackend
	session *Session
	after   int
}

func (b *interruptingBackend) Connect(spec audio.SampleSpec) (output.Conn, error) {
	conn, _ := b.recordingBackend.Connect(spec)
	return &interruptingConn{recordingConn: conn.(*recordingConn), backend: b}, nil
}

type interruptingConn struct {
	*recordingConn
	backend *interruptingBackend
}

func (c *interruptingConn) Write(p []byte) error {
	err := c.recordingConn.Write(p)
	if c.writes == c.backend.after {
		c.backend.session.Interrupt()
	}
	return err
}

func TestInterrupt(t *testing.T) {
	backend := &interruptingBackend{after: 3}
	s, _ := newTestSession(t, backend, map[string]demux.Container{
		"a.wav": s16File(44100, 2, 100, 10),
		"b.wav": s16File(44100, 2, 100, 10),
	})
	backend.session = s

	if err := s.Play("a.wav", 0, 0, 1.0); err != nil {
		t.Fatalf("an interrupted file is not an error: %v", err)
	}
	conn := backend.conns[0]
	if conn.writes != 3 {
		t.Errorf("expected playback to stop after 3 writes, got %d", conn.writes)
	}
	if conn.drained {
		t.Error("an interrupted file must not be drained")
	}

	// the next file plays normally
	backend.after = -1
	if err := s.Play("b.wav", 0, 0, 1.0); err != nil {
		t.Fatal(err)
	}
	if backend.conns[1].writes != 10 {
		t.Errorf("expected the next file to play fully, got %d writes", backend.conns[0].writes)
	}
}
