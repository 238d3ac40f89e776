// ABOUTME: Error values reported by the playback session
// ABOUTME: One process-fatal error and the per-file failures
package playback

import "errors"

// ErrInitialization is fatal for the process; every other error only ends
// the current file.
var ErrInitialization = errors.New("playback initialization failed")

var (
	ErrFileOpen                 = errors.New("cannot open file")
	ErrStreamInfo               = errors.New("cannot read stream information")
	ErrNoAudioStream            = errors.New("no audio stream")
	ErrUnsupportedCodec         = errors.New("unsupported codec")
	ErrDecoderInit              = errors.New("cannot initialize decoder")
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
	ErrResamplerInit            = errors.New("cannot initialize resampler")
	ErrSinkConnect              = errors.New("cannot connect to audio sink")
	ErrDecodeFatal              = errors.New("decoding failed")
	ErrUnsupportedSampleFormat  = errors.New("unsupported sample format")
	ErrBufferAlloc              = errors.New("sample buffer error")
	ErrSessionClosed            = errors.New("session closed")
)
