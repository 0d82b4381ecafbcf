// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Signed PCM at 8, 16, 24 or 32 bits is supported, with any channel count
// and sample rate. Samples come out as float32 in [-1, 1):
//
//	f, _ := os.Open("loop.aif")
//	src, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	sig, err := audio.ReadAll(src)
//
// The decoder needs to seek; other readers are buffered in memory first.
// Errors wrap ErrNotAiffFile or ErrUnsupportedAiffLayout.
package aiff
