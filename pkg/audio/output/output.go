// ABOUTME: Audio output interface definition and backend registry
// ABOUTME: Common contract for blocking playback sinks and their write errors
package output

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/NotCompsky/playwav/pkg/audio"
)

// Backend opens playback connections on one audio system
type Backend interface {
	// Name identifies the backend, e.g. "pulse"
	Name() string

	// Connect opens a playback stream for spec
	Connect(spec audio.SampleSpec) (Conn, error)

	// Close releases backend-wide resources
	Close() error
}

// Conn is one open playback stream
type Conn interface {
	// Write blocks until the device has accepted all of p.
	// Failures are returned as *WriteError.
	Write(p []byte) error

	// Drain blocks until everything written has been played
	Drain() error

	// Close releases the stream
	Close() error
}

// Errno classifies a write failure
type Errno int

const (
	ErrnoNotConnected Errno = iota + 1
	ErrnoClosed
	ErrnoIO
	ErrnoInvalid
)

func (e Errno) String() string {
	switch e {
	case ErrnoNotConnected:
		return "not connected"
	case ErrnoClosed:
		return "connection closed"
	case ErrnoIO:
		return "i/o error"
	case ErrnoInvalid:
		return "invalid argument"
	}
	return fmt.Sprintf("Errno(%d)", int(e))
}

// WriteError is returned by Conn.Write
type WriteError struct {
	Code Errno
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

var (
	ErrUnknownBackend  = errors.New("unknown output backend")
	ErrUnsupportedSpec = errors.New("unsupported sample spec")
	errConnClosed      = errors.New("playback stream closed")
)

// Options configures every backend
type Options struct {
	// Latency is the target device buffer length
	Latency time.Duration

	// AppName is reported to sound servers that show client names
	AppName string
}

// DefaultLatency is used when Options.Latency is zero
const DefaultLatency = 100 * time.Millisecond

func (o Options) withDefaults() Options {
	if o.Latency <= 0 {
		o.Latency = DefaultLatency
	}
	if o.AppName == "" {
		o.AppName = "playwav"
	}
	return o
}

type factory func(opts Options) Backend

var factories = map[string]factory{
	"oto":   newOto,
	"pulse": newPulse,
	"malgo": newMalgo,
	"null":  newNull,
}

// pulsePing reports whether a PulseAudio server answers
var pulsePing = pingPulse

// Names lists the selectable backends, including "auto"
func Names() []string {
	names := []string{"auto"}
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// Valid reports whether name selects a backend
func Valid(name string) bool {
	if name == "" || name == "auto" {
		return true
	}
	_, ok := factories[name]
	return ok
}

// New creates the named backend. "auto" (or "") picks PulseAudio when a
// server answers and oto otherwise.
func New(name string, opts Options) (Backend, error) {
	opts = opts.withDefaults()
	if name == "" || name == "auto" {
		if pulsePing() == nil {
			return newPulse(opts), nil
		}
		return newOto(opts), nil
	}

	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return f(opts), nil
}

func checkSpec(spec audio.SampleSpec) error {
	if spec.SampleRate < 1 || spec.Channels < 1 || spec.Channels > 2 || spec.Wire.BytesPerSample() == 0 {
		return fmt.Errorf("%w: %v", ErrUnsupportedSpec, spec)
	}
	return nil
}
