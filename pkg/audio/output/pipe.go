// ABOUTME: Pipe-backed playback connection shared by pull-based backends
// ABOUTME: Blocks writers until the library's reader goroutine has consumed the bytes
package output

import (
	"errors"
	"io"
	"time"
)

// errorPoll is how often a backend's asynchronous error state is checked
const errorPoll = 50 * time.Millisecond

// pipeConn feeds a library that pulls samples from an io.Reader
type pipeConn struct {
	pw      *io.PipeWriter
	closed  bool
	done    chan struct{}
	drain   func() error
	release func() error
}

func newPipeConn(pw *io.PipeWriter, drain, release func() error) *pipeConn {
	return &pipeConn{
		pw:      pw,
		done:    make(chan struct{}),
		drain:   drain,
		release: release,
	}
}

func (c *pipeConn) Write(p []byte) error {
	if c.closed {
		return &WriteError{Code: ErrnoNotConnected, Err: errConnClosed}
	}
	if _, err := c.pw.Write(p); err != nil {
		code := ErrnoIO
		if errors.Is(err, io.ErrClosedPipe) {
			code = ErrnoClosed
		}
		return &WriteError{Code: code, Err: err}
	}
	return nil
}

func (c *pipeConn) Drain() error {
	if c.closed {
		return nil
	}
	c.pw.Close()
	return c.drain()
}

func (c *pipeConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	c.pw.Close()
	return c.release()
}

// watchErrors fails the pipe once the library reports an error, so a writer
// blocked on a dead stream returns instead of hanging
func watchErrors(pr *io.PipeReader, check func() error, done <-chan struct{}) {
	ticker := time.NewTicker(errorPoll)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := check(); err != nil {
				pr.CloseWithError(err)
				return
			}
		}
	}
}
