// ABOUTME: Sample FIFO that re-chunks decoded frames into fixed-size reads
// ABOUTME: Ring buffer per plane, tagged with one sample format and channel count
package fifo

import (
	"errors"
	"fmt"

	"github.com/NotCompsky/playwav/pkg/audio"
)

var (
	ErrInvalidFormat  = errors.New("invalid fifo format")
	ErrFormatMismatch = errors.New("frame format does not match fifo")
	ErrUnderflow      = errors.New("not enough samples in fifo")
)

// Buffer queues samples of a single format and channel count.
// Sizes and positions are counted in samples per channel.
type Buffer struct {
	format   audio.SampleFormat
	channels int
	stride   int // bytes per sample per plane
	planes   [][]byte
	readPos  int
	writePos int
	capacity int
	count    int
}

// New creates a FIFO able to hold capacity samples per channel before growing
func New(format audio.SampleFormat, channels, capacity int) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: sample format %v", ErrInvalidFormat, format)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	}
	if capacity < 1 {
		capacity = 1
	}

	b := &Buffer{
		format:   format,
		channels: channels,
		stride:   format.BytesPerSample(),
	}
	nbPlanes := 1
	if format.IsPlanar() {
		nbPlanes = channels
	} else {
		b.stride *= channels
	}
	b.planes = make([][]byte, nbPlanes)
	b.realloc(capacity)
	return b, nil
}

// Format returns the sample format held by the buffer
func (b *Buffer) Format() audio.SampleFormat { return b.format }

// Channels returns the channel count held by the buffer
func (b *Buffer) Channels() int { return b.channels }

// Matches reports whether frames of this shape can be written without reallocation
func (b *Buffer) Matches(format audio.SampleFormat, channels int) bool {
	return b.format == format && b.channels == channels
}

// Size returns the number of samples per channel available to read
func (b *Buffer) Size() int { return b.count }

// Space returns the number of samples per channel that fit before the next growth
func (b *Buffer) Space() int { return b.capacity - b.count }

// Write appends all samples of f to the tail of the queue
func (b *Buffer) Write(f *audio.Frame) error {
	if !b.Matches(f.Format, f.Channels) {
		return fmt.Errorf("%w: got %v/%dch, want %v/%dch",
			ErrFormatMismatch, f.Format, f.Channels, b.format, b.channels)
	}
	n := f.NbSamples
	if n == 0 {
		return nil
	}
	if len(f.Data) < len(b.planes) {
		return fmt.Errorf("%w: frame has %d planes, want %d", ErrFormatMismatch, len(f.Data), len(b.planes))
	}
	if b.Space() < n {
		b.grow(b.count + n)
	}

	for p, plane := range b.planes {
		src := f.Data[p][:n*b.stride]
		// first segment up to the end of the ring, then wrap
		first := min(n, b.capacity-b.writePos)
		copy(plane[b.writePos*b.stride:], src[:first*b.stride])
		if first < n {
			copy(plane, src[first*b.stride:])
		}
	}
	b.writePos = (b.writePos + n) % b.capacity
	b.count += n
	return nil
}

// Read removes exactly n samples per channel from the head of the queue into dst
func (b *Buffer) Read(dst *audio.Frame, n int) error {
	if n > b.count {
		return fmt.Errorf("%w: want %d, have %d", ErrUnderflow, n, b.count)
	}
	dst.Alloc(b.format, b.channels, n)
	if n == 0 {
		return nil
	}

	for p, plane := range b.planes {
		out := dst.Data[p]
		first := min(n, b.capacity-b.readPos)
		copy(out, plane[b.readPos*b.stride:(b.readPos+first)*b.stride])
		if first < n {
			copy(out[first*b.stride:], plane[:(n-first)*b.stride])
		}
	}
	b.readPos = (b.readPos + n) % b.capacity
	b.count -= n
	return nil
}

// Reset discards all queued samples, keeping the allocation
func (b *Buffer) Reset() {
	b.readPos = 0
	b.writePos = 0
	b.count = 0
}

// grow reallocates to hold at least need samples, unwrapping the ring
func (b *Buffer) grow(need int) {
	capacity := b.capacity * 2
	if capacity < need {
		capacity = need
	}
	b.realloc(capacity)
}

func (b *Buffer) realloc(capacity int) {
	for p, old := range b.planes {
		plane := make([]byte, capacity*b.stride)
		if b.count > 0 {
			first := min(b.count, b.capacity-b.readPos)
			copy(plane, old[b.readPos*b.stride:(b.readPos+first)*b.stride])
			if first < b.count {
				copy(plane[first*b.stride:], old[:(b.count-first)*b.stride])
			}
		}
		b.planes[p] = plane
	}
	b.capacity = capacity
	b.readPos = 0
	b.writePos = b.count % capacity
}
