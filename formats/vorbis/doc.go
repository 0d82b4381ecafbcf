// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Samples are interleaved in the stream's channel order, [L0, R0, L1, R1, ...]
// for stereo, and the decoder only hands out whole frames, so a destination
// shorter than one frame is rejected with audio.ErrInvalidDstSize.
//
//	f, _ := os.Open("field.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	sig, err := audio.ReadAll(src)
package vorbis
