// ABOUTME: Playback package driving the decode, buffer and output pipeline
// ABOUTME: Provides Session for playing media files to an output backend
// Package playback plays media files through an output backend.
//
// A Session opens each file, negotiates the decoder and sink formats, then
// pulls packets through the decoder into a FIFO that re-chunks samples into
// quanta for the converter and the sink. Decoder, FIFO and scratch buffers
// are kept between files.
//
// Example:
//
//	backend, _ := output.New("auto", output.Options{})
//	s, err := playback.New(playback.Config{Backend: backend})
//	defer s.Close()
//	err = s.Play("song.flac", 0, 0, 1.0)
package playback
