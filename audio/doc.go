// SPDX-License-Identifier: EPL-2.0

// Package audio moves decoded audio into host memory.
//
// Decoders in the formats packages produce a streaming Source of interleaved
// float32 samples in [-1, 1]. ReadAll drains a Source into a mono Signal,
// averaging the channels, which is the shape the algorithm layer and the
// frame generator work on:
//
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	sig, err := audio.ReadAll(src)
//
// A Registry maps format names, file extensions and leading magic bytes to
// decoders so a caller can decode a file without knowing its format.
//
// Sources return io.EOF once no more samples are available; a read may
// return samples together with io.EOF.
package audio
