// ABOUTME: Audio decoder package with a codec registry
// ABOUTME: Provides the Decoder contract and raw PCM codecs of every supported layout
// Package decode turns container packets into decoded frames.
//
// Codecs register themselves by id; a container names the codec of each stream
// and the player resolves it with Find. Decoders follow a send/receive contract:
// ErrAgain asks for another packet, ErrEOF ends a flush, anything else is fatal.
//
// Supported: raw PCM u8, s8, s16, s24, s32, s64, f32 and f64 in either byte
// order, plus planar s16 and s32.
//
// Example:
//
//	codec, ok := decode.Find("pcm_s16le")
//	dec := codec.NewDecoder()
//	err := dec.Configure(stream.Format)
//	err = dec.Open()
//	err = dec.SendPacket(&pkt)
//	err = dec.ReceiveFrame(&frame)
package decode
