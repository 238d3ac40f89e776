// ABOUTME: Playback loop moving packets through decoder, FIFO, converter and sink
// ABOUTME: Applies the trim window and collapses repeated sink write errors in the log
package playback

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/convert"
	"github.com/NotCompsky/playwav/pkg/audio/decode"
	"github.com/NotCompsky/playwav/pkg/audio/output"
)

// Unbounded is the window end when no end time was given
const Unbounded = math.MaxInt64

// Window is the part of a file that is played, in sample frames.
// Current counts frames taken from the FIFO, played or not.
type Window struct {
	Start   int64
	End     int64
	Current int64
}

// NewWindow converts start and end times to frames at rate.
// A zero end leaves the window open.
func NewWindow(start, end time.Duration, rate int) Window {
	w := Window{Start: frames(start, rate), End: Unbounded}
	if end > 0 {
		w.End = max(frames(end, rate), w.Start)
	}
	return w
}

func frames(d time.Duration, rate int) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d.Seconds() * float64(rate))
}

// Done reports whether the end has been reached
func (w *Window) Done() bool {
	return w.Current >= w.End
}

// Playing reports whether the frames at Current are inside the window
func (w *Window) Playing() bool {
	return w.Current >= w.Start
}

// writeErrorReporter logs the first sink error of a run and counts repeats
type writeErrorReporter struct {
	logger  *log.Logger
	last    output.Errno
	repeats int
	total   int
}

func (r *writeErrorReporter) report(err error) {
	code := output.ErrnoIO
	msg := err
	var we *output.WriteError
	if errors.As(err, &we) {
		code = we.Code
		msg = we.Err
	}
	r.total++

	if code == r.last {
		r.repeats++
		return
	}
	r.flush()
	r.logger.Printf("Error %d writing to audio sink: %v", int(code), msg)
	r.last = code
}

// success ends a run of errors
func (r *writeErrorReporter) success() {
	if r.last != 0 {
		r.flush()
	}
}

func (r *writeErrorReporter) flush() {
	if r.repeats > 0 {
		r.logger.Printf("Previous error was repeated %d times", r.repeats)
	}
	r.last = 0
	r.repeats = 0
}

// run carries the per-file state of one loop
type run struct {
	path       string
	file       *openedFile
	conn       output.Conn
	window     *Window
	volume     float64
	reporter   *writeErrorReporter
	nextReport int64
}

// Progress describes the file being played
type Progress struct {
	Path        string
	Codec       audio.CodecID
	Spec        audio.SampleSpec
	Volume      float64
	Window      Window
	WriteErrors int
	Done        bool
}

// progressStep is how many OnProgress calls a second of audio produces
const progressStep = 10

func (s *Session) notify(r *run, done bool) {
	if s.config.OnProgress == nil {
		return
	}
	if !done && r.window.Current < r.nextReport {
		return
	}
	r.nextReport = r.window.Current + int64(max(r.file.spec.SampleRate/progressStep, 1))
	s.config.OnProgress(Progress{
		Path:        r.path,
		Codec:       r.file.stream.Format.Codec,
		Spec:        r.file.spec,
		Volume:      r.volume,
		Window:      *r.window,
		WriteErrors: r.reporter.total,
		Done:        done,
	})
}

// active reports whether the loop should keep going
func (s *Session) active(r *run) bool {
	return !r.window.Done() && !s.interrupted.Load()
}

func (s *Session) loop(r *run) error {
	defer r.reporter.flush()

	dec := s.dec.decoder
	pkt := &s.packet

	for s.active(r) {
		err := r.file.container.ReadPacket(pkt)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Printf("Error reading packet: %v", err)
			break
		}
		if pkt.StreamIndex != r.file.stream.Index {
			continue
		}

		if err := dec.SendPacket(pkt); err != nil {
			s.logger.Printf("Error sending packet to decoder: %v", err)
			continue
		}
		if err := s.receiveFrames(r); err != nil {
			return err
		}
	}

	if s.active(r) {
		if err := dec.SendPacket(nil); err == nil {
			if err := s.receiveFrames(r); err != nil {
				return err
			}
		}
	}

	r.reporter.flush()
	if s.interrupted.Load() {
		s.logger.Printf("Stopped %s", r.path)
		return nil
	}
	if err := r.conn.Drain(); err != nil {
		s.logger.Printf("Error draining audio sink: %v", err)
	}
	return nil
}

// receiveFrames hands every frame the decoder has ready to the FIFO
func (s *Session) receiveFrames(r *run) error {
	frame := s.dec.frame
	for s.active(r) {
		err := s.dec.decoder.ReceiveFrame(frame)
		if errors.Is(err, decode.ErrAgain) || errors.Is(err, decode.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecodeFatal, err)
		}
		if frame.NbSamples == 0 {
			continue
		}
		if err := s.emit(r, frame); err != nil {
			return err
		}
	}
	return nil
}

// emit queues frame and plays FIFO contents in quanta of the frame's size
func (s *Session) emit(r *run, frame *audio.Frame) error {
	if err := s.fifo.Write(frame); err != nil {
		return fmt.Errorf("%w: %w", ErrBufferAlloc, err)
	}

	quantum := frame.NbSamples
	chunk := &s.chunk
	for s.fifo.Size() >= quantum && s.active(r) {
		if err := s.fifo.Read(chunk, quantum); err != nil {
			return fmt.Errorf("%w: %w", ErrBufferAlloc, err)
		}

		playing := r.window.Playing()
		r.window.Current += int64(quantum)
		if !playing {
			continue
		}

		interleaved, err := s.engine.Convert(chunk, r.volume)
		if err != nil {
			return s.convertError(err)
		}
		wire, err := s.engine.Encode(interleaved, chunk.Format, r.file.spec.Wire)
		if err != nil {
			return s.convertError(err)
		}

		if err := r.conn.Write(wire); err != nil {
			r.reporter.report(err)
			break
		}
		r.reporter.success()
		s.stats.FramesWritten += int64(quantum)
		s.notify(r, false)
	}
	return nil
}

func (s *Session) convertError(err error) error {
	if errors.Is(err, convert.ErrUnsupportedSampleFormat) {
		return fmt.Errorf("%w: %w", ErrUnsupportedSampleFormat, err)
	}
	return fmt.Errorf("%w: %w", ErrDecodeFatal, err)
}
