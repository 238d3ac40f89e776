// ABOUTME: Playback session owning decoder, FIFO, converter and output backend
// ABOUTME: Plays files one at a time and reuses buffers between them
package playback

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/audio/convert"
	"github.com/NotCompsky/playwav/pkg/audio/demux"
	"github.com/NotCompsky/playwav/pkg/audio/fifo"
	"github.com/NotCompsky/playwav/pkg/audio/output"
	"github.com/hashicorp/go-multierror"
)

// DefaultFifoCapacity is the initial FIFO size in samples per channel
const DefaultFifoCapacity = 1

// Config configures a playback session
type Config struct {
	// Backend receives the decoded audio (required). The session closes it.
	Backend output.Backend

	// Open opens media files (default: demux.Open)
	Open func(path string) (demux.Container, error)

	// Logger receives diagnostics (default: log.Default())
	Logger *log.Logger

	// FifoCapacity is the initial FIFO capacity; it grows as needed
	FifoCapacity int

	// OnProgress, if set, is called from the playing goroutine when a file
	// starts, about ten times per second of audio, and when it ends
	OnProgress func(Progress)
}

// Stats counts work done by a session
type Stats struct {
	FilesPlayed     int
	FramesWritten   int64
	FifoAllocations int
}

// Session plays files sequentially. It is not safe for concurrent use.
type Session struct {
	config Config
	logger *log.Logger

	dec    *decodeContext
	fifo   *fifo.Buffer
	engine *convert.Engine
	packet audio.Packet
	chunk  audio.Frame

	stats       Stats
	closed      bool
	interrupted atomic.Bool
}

// New creates a session
func New(config Config) (*Session, error) {
	if config.Backend == nil {
		return nil, fmt.Errorf("%w: no output backend", ErrInitialization)
	}
	if config.Open == nil {
		config.Open = demux.Open
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.FifoCapacity < 1 {
		config.FifoCapacity = DefaultFifoCapacity
	}

	return &Session{
		config: config,
		logger: config.Logger,
		dec:    newDecodeContext(),
		engine: convert.New(),
	}, nil
}

// Play decodes path and plays the part between start and end (zero end
// means the rest of the file) at the given volume. Errors are logged with
// the path and returned; they only concern this file.
func (s *Session) Play(path string, start, end time.Duration, volume float64) error {
	if s.closed {
		return ErrSessionClosed
	}
	defer s.interrupted.Store(false)
	err := s.play(path, start, end, volume)
	if err != nil {
		s.logger.Printf("%s: %v", path, err)
	}
	return err
}

func (s *Session) play(path string, start, end time.Duration, volume float64) error {
	file, err := s.open(path)
	if err != nil {
		return err
	}
	defer file.container.Close()

	conn, err := s.config.Backend.Connect(file.spec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkConnect, err)
	}
	defer conn.Close()

	if err := s.prepareFifo(s.dec.format.SampleFormat, s.dec.format.Channels); err != nil {
		return err
	}

	window := NewWindow(start, end, file.spec.SampleRate)
	r := &run{
		path:     path,
		file:     file,
		conn:     conn,
		window:   &window,
		volume:   volume,
		reporter: &writeErrorReporter{logger: s.logger},
	}
	s.notify(r, false)
	err = s.loop(r)
	s.notify(r, true)
	if err != nil {
		return err
	}
	s.stats.FilesPlayed++
	return nil
}

// prepareFifo reuses the FIFO when the format is unchanged and empties it
func (s *Session) prepareFifo(format audio.SampleFormat, channels int) error {
	if s.fifo != nil && s.fifo.Matches(format, channels) {
		s.fifo.Reset()
		return nil
	}

	b, err := fifo.New(format, channels, s.config.FifoCapacity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBufferAlloc, err)
	}
	s.fifo = b
	s.stats.FifoAllocations++
	return nil
}

// Interrupt makes the current Play, or the next one when none is running,
// return early without draining the sink. It may be called from any
// goroutine.
func (s *Session) Interrupt() {
	s.interrupted.Store(true)
}

// Stats returns counters for the session so far
func (s *Session) Stats() Stats {
	return s.stats
}

// Close releases everything the session holds, including the backend.
// Calling it again is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var result *multierror.Error
	if err := s.dec.closeDecoder(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close decoder: %w", err))
	}
	s.dec.resampler.Close()
	s.fifo = nil
	s.engine.Release()
	if err := s.config.Backend.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close %s output: %w", s.config.Backend.Name(), err))
	}
	return result.ErrorOrNil()
}
