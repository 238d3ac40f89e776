// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides blocking playback sinks over oto, PulseAudio and malgo
// Package output provides audio playback sinks.
//
// A Backend connects playback streams; each Conn accepts interleaved s16le or
// f32le samples and blocks until the device has taken them. "auto" selects
// PulseAudio when a server is reachable and falls back to oto.
//
// Example:
//
//	backend, err := output.New("auto", output.Options{})
//	conn, err := backend.Connect(audio.SampleSpec{SampleRate: 44100, Channels: 2, Wire: audio.WireS16LE})
//	err = conn.Write(samples)
//	err = conn.Drain()
package output
