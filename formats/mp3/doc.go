// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III streams with github.com/hajimehoshi/go-mp3.
//
// The decoder always yields interleaved stereo at the stream's sample rate;
// audio.ReadAll folds it to mono:
//
//	f, _ := os.Open("voice.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	sig, err := audio.ReadAll(src)
//
// Encoding is not supported.
package mp3
