// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF WAVE files through github.com/go-audio/wav.
//
// Decoding accepts linear PCM at 8, 16, 24 or 32 bits with any channel
// count and sample rate:
//
//	f, _ := os.Open("take.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	sig, err := audio.ReadAll(src)
//
// Readers that cannot seek are buffered in memory first.
//
// Encode writes a mono audio.Signal back out:
//
//	out, _ := os.Create("out.wav")
//	defer out.Close()
//	err := wav.Encode(out, sig, 16)
//
// 8-bit data is unsigned on disk, as the format requires; the conversion is
// handled in both directions.
package wav
