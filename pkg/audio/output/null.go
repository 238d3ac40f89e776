// ABOUTME: Null audio output that accepts and discards every sample
// ABOUTME: Lets playback run without a sound device
package output

import (
	"sync/atomic"

	"github.com/NotCompsky/playwav/pkg/audio"
)

// Null discards audio
type Null struct {
	written atomic.Int64
}

func newNull(Options) Backend {
	return &Null{}
}

func (n *Null) Name() string {
	return "null"
}

func (n *Null) Connect(spec audio.SampleSpec) (Conn, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}
	return &nullConn{backend: n}, nil
}

func (n *Null) Close() error {
	return nil
}

// Written returns the number of bytes accepted across all connections
func (n *Null) Written() int64 {
	return n.written.Load()
}

type nullConn struct {
	backend *Null
	closed  bool
}

func (c *nullConn) Write(p []byte) error {
	if c.closed {
		return &WriteError{Code: ErrnoNotConnected, Err: errConnClosed}
	}
	c.backend.written.Add(int64(len(p)))
	return nil
}

func (c *nullConn) Drain() error {
	return nil
}

func (c *nullConn) Close() error {
	c.closed = true
	return nil
}
