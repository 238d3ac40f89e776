// ABOUTME: Decoder interface definition and codec registry
// ABOUTME: Packet-in, frame-out contract shared by all audio decoders
package decode

import (
	"errors"
	"sort"
	"sync"

	"github.com/NotCompsky/playwav/pkg/audio"
)

var (
	// ErrAgain means the decoder has no frame ready and needs another packet
	ErrAgain = errors.New("decoder needs more input")
	// ErrEOF means the decoder was flushed and has no frames left
	ErrEOF = errors.New("decoder fully flushed")

	ErrNotConfigured  = errors.New("decoder not configured")
	ErrNotOpen        = errors.New("decoder not open")
	ErrInvalidData    = errors.New("invalid packet data")
	ErrInvalidParams  = errors.New("invalid codec parameters")
	ErrAlreadyFlushed = errors.New("decoder already flushed")
)

// Decoder turns packets of one stream into frames of decoded samples.
//
// The usual sequence is Configure, Open, then SendPacket/ReceiveFrame until the
// container is exhausted, then SendPacket(nil) and ReceiveFrame until ErrEOF.
// A decoder holds at most one pending packet; SendPacket returns ErrAgain while
// it still has frames to hand out.
type Decoder interface {
	// Configure copies stream parameters into the decoder
	Configure(format audio.Format) error

	// Open prepares the decoder for packets
	Open() error

	// Format returns the configured stream format with SampleFormat filled in
	Format() audio.Format

	// SendPacket submits one packet; nil starts flushing
	SendPacket(pkt *audio.Packet) error

	// ReceiveFrame fills f with the next decoded frame
	ReceiveFrame(f *audio.Frame) error

	// Close releases decoder resources
	Close() error
}

// Codec creates decoders for one codec id
type Codec interface {
	ID() audio.CodecID
	NewDecoder() Decoder
}

var (
	registryMu sync.RWMutex
	registry   = make(map[audio.CodecID]Codec)
)

// Register makes a codec available to Find. A later registration with the
// same id replaces the earlier one.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.ID()] = c
}

// Find looks up the codec registered for id
func Find(id audio.CodecID) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[id]
	return c, ok
}

// Codecs lists registered codec ids in sorted order
func Codecs() []audio.CodecID {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]audio.CodecID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
