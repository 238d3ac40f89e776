// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo with a blocking ring buffer between writer and device callback
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/gen2brain/malgo"
)

// ringMillis is the ring buffer length per connection
const ringMillis = 500

var errRingClosed = errors.New("ring buffer closed")

// RingBuffer is a byte FIFO between a writer and the device callback.
// Writes block while the buffer is full; reads never block and zero-fill
// on underrun.
type RingBuffer struct {
	buffer   []byte
	readPos  int
	writePos int
	size     int
	count    int // Number of bytes currently in buffer
	closed   bool
	mu       sync.Mutex
	cond     *sync.Cond
}

// NewRingBuffer creates a ring buffer with given capacity (in bytes)
func NewRingBuffer(capacity int) *RingBuffer {
	rb := &RingBuffer{
		buffer: make([]byte, capacity),
		size:   capacity,
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write adds p to the ring buffer, waiting for room as needed
func (rb *RingBuffer) Write(p []byte) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for len(p) > 0 {
		for rb.count == rb.size && !rb.closed {
			rb.cond.Wait()
		}
		if rb.closed {
			return errRingClosed
		}

		n := min(len(p), rb.size-rb.count)
		first := min(n, rb.size-rb.writePos)
		copy(rb.buffer[rb.writePos:], p[:first])
		copy(rb.buffer, p[first:n])
		rb.writePos = (rb.writePos + n) % rb.size
		rb.count += n
		p = p[n:]
		rb.cond.Broadcast()
	}
	return nil
}

// Read retrieves up to len(dst) bytes and zero-fills the rest
func (rb *RingBuffer) Read(dst []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := min(len(dst), rb.count)
	first := min(n, rb.size-rb.readPos)
	copy(dst, rb.buffer[rb.readPos:rb.readPos+first])
	copy(dst[first:n], rb.buffer)
	rb.readPos = (rb.readPos + n) % rb.size
	rb.count -= n

	// Zero-fill remaining if underrun
	clear(dst[n:])

	if n > 0 {
		rb.cond.Broadcast()
	}
	return n
}

// WaitEmpty blocks until every written byte has been read
func (rb *RingBuffer) WaitEmpty() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for rb.count > 0 && !rb.closed {
		rb.cond.Wait()
	}
}

// Close wakes blocked writers; later writes fail
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	opts     Options
	malgoCtx *malgo.AllocatedContext
	mu       sync.Mutex
}

func newMalgo(opts Options) Backend {
	return &Malgo{opts: opts}
}

func (m *Malgo) Name() string {
	return "malgo"
}

func malgoFormat(w audio.WireFormat) malgo.FormatType {
	if w == audio.WireF32LE {
		return malgo.FormatF32
	}
	return malgo.FormatS16
}

// Connect initializes and starts a playback device for spec
func (m *Malgo) Connect(spec audio.SampleSpec) (Conn, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Create malgo context if needed
	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	frameBytes := spec.FrameBytes()
	ring := NewRingBuffer(max(spec.SampleRate*ringMillis/1000, 1) * frameBytes)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgoFormat(spec.Wire)
	deviceConfig.Playback.Channels = uint32(spec.Channels)
	deviceConfig.SampleRate = uint32(spec.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = uint32(m.opts.Latency.Milliseconds())
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, _ []byte, _ uint32) {
			ring.Read(pOutputSample)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start device: %w", err)
	}

	log.Printf("Audio output initialized: %s via malgo", spec)

	return &malgoConn{ring: ring, device: device}, nil
}

// Close releases the malgo context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

type malgoConn struct {
	ring   *RingBuffer
	device *malgo.Device
	closed bool
}

func (c *malgoConn) Write(p []byte) error {
	if c.closed {
		return &WriteError{Code: ErrnoNotConnected, Err: errConnClosed}
	}
	if err := c.ring.Write(p); err != nil {
		return &WriteError{Code: ErrnoClosed, Err: err}
	}
	return nil
}

func (c *malgoConn) Drain() error {
	if !c.closed {
		c.ring.WaitEmpty()
	}
	return nil
}

func (c *malgoConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.ring.Close()
	if err := c.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	c.device.Uninit()
	return nil
}
