// ABOUTME: Container demuxer interface and format detection
// ABOUTME: Opens media files by magic bytes or extension and exposes their streams as packets
package demux

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/NotCompsky/playwav/pkg/audio"
)

var (
	ErrUnknownFormat = errors.New("unrecognized container format")
	ErrNoStreamInfo  = errors.New("stream info has not been read")
	ErrInvalidFile   = errors.New("invalid file")
)

// packetFrames is the number of sample frames per packet for containers
// whose library hands out a continuous sample stream
const packetFrames = 4096

// detectSize is how much of the file is read for format detection
const detectSize = 64

// Container is an open media file
type Container interface {
	// FindStreamInfo reads headers until the streams are known
	FindStreamInfo() error

	// Streams lists the streams in declared order
	Streams() []*audio.Stream

	// ReadPacket fills pkt with the next packet of any stream; io.EOF at the end
	ReadPacket(pkt *audio.Packet) error

	// Close releases the container and its file
	Close() error
}

type containerFormat struct {
	name  string
	exts  []string
	match func(header []byte) bool
	open  func(src io.ReadSeekCloser, header []byte) Container
}

// Ordered by how specific the magic is; mp3 sync words are checked last.
var formats = []containerFormat{
	{"wav", []string{".wav", ".wave"}, isWAV, newWAV},
	{"aiff", []string{".aif", ".aiff", ".aifc"}, isAIFF, newAIFF},
	{"flac", []string{".flac"}, isFLAC, newFLAC},
	{"opus", []string{".opus"}, isOggOpus, newOpus},
	{"ogg", []string{".ogg", ".oga"}, isOggVorbis, newVorbis},
	{"mp3", []string{".mp3"}, isMP3, newMP3},
}

// Open opens path and detects its container format
func Open(path string) (Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	c, err := OpenReader(f, filepath.Ext(path))
	if err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

// OpenReader detects the container format of src, falling back to the file
// extension when no magic matches. The container takes ownership of src.
func OpenReader(src io.ReadSeekCloser, ext string) (Container, error) {
	header := make([]byte, detectSize)
	n, err := io.ReadFull(src, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header = header[:n]
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind: %w", err)
	}

	f := detect(header, ext)
	if f == nil {
		return nil, fmt.Errorf("%w (extension %q)", ErrUnknownFormat, ext)
	}
	return f.open(src, header), nil
}

func detect(header []byte, ext string) *containerFormat {
	for i := range formats {
		if formats[i].match(header) {
			return &formats[i]
		}
	}
	ext = strings.ToLower(ext)
	for i := range formats {
		for _, e := range formats[i].exts {
			if e == ext {
				return &formats[i]
			}
		}
	}
	return nil
}

func isWAV(h []byte) bool {
	return len(h) >= 12 && string(h[0:4]) == "RIFF" && string(h[8:12]) == "WAVE"
}

func isAIFF(h []byte) bool {
	return len(h) >= 12 && string(h[0:4]) == "FORM" &&
		(string(h[8:12]) == "AIFF" || string(h[8:12]) == "AIFC")
}

func isFLAC(h []byte) bool {
	return len(h) >= 4 && string(h[0:4]) == "fLaC"
}

func isOggOpus(h []byte) bool {
	return len(h) >= 4 && string(h[0:4]) == "OggS" && bytes.Contains(h, []byte("OpusHead"))
}

func isOggVorbis(h []byte) bool {
	return len(h) >= 4 && string(h[0:4]) == "OggS" && bytes.Contains(h, []byte("\x01vorbis"))
}

func isMP3(h []byte) bool {
	if len(h) >= 3 && string(h[0:3]) == "ID3" {
		return true
	}
	// MPEG audio frame sync, layer III
	return len(h) >= 2 && h[0] == 0xff && h[1]&0xe0 == 0xe0 && h[1]&0x06 == 0x02
}

// base holds what every single-stream container shares
type base struct {
	src    io.ReadSeekCloser
	stream *audio.Stream
}

func (b *base) Streams() []*audio.Stream {
	if b.stream == nil {
		return nil
	}
	return []*audio.Stream{b.stream}
}

func (b *base) Close() error {
	if b.src == nil {
		return nil
	}
	err := b.src.Close()
	b.src = nil
	return err
}

func (b *base) setStream(format audio.Format) {
	b.stream = &audio.Stream{Index: 0, Type: audio.MediaTypeAudio, Format: format}
}

func (b *base) ready() error {
	if b.stream == nil {
		return ErrNoStreamInfo
	}
	return nil
}

// payload sizes pkt for n bytes of stream 0, reusing its buffer
func payload(pkt *audio.Packet, n int) []byte {
	pkt.StreamIndex = 0
	if cap(pkt.Data) < n {
		pkt.Data = make([]byte, n)
	}
	pkt.Data = pkt.Data[:n]
	return pkt.Data
}

// readFrames fills buf with whole frames from r. A short read at the end of
// the stream is returned as data; io.EOF is only reported once nothing is left.
func readFrames(r io.Reader, buf []byte, frameBytes int) (int, error) {
	n, err := io.ReadFull(r, buf)
	n -= n % frameBytes
	switch {
	case err == nil, err == io.ErrUnexpectedEOF, err == io.EOF:
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	default:
		return n, err
	}
}
