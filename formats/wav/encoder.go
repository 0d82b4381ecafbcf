// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/utils"
)

// Encode writes sig as a mono linear PCM file of the given bit depth
// (8, 16, 24 or 32). Samples outside [-1, 1] are clipped.
func Encode(w io.WriteSeeker, sig audio.Signal, bitDepth int) (err error) {
	if goaudio.IntMaxSignedValue(bitDepth) == 0 {
		return fmt.Errorf("%w: %d", audio.ErrBitDepth, bitDepth)
	}
	if sig.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedWavLayout, sig.SampleRate)
	}
	if sig.Len() == 0 {
		return ErrEmptySignal
	}

	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sig.SampleRate},
		Data:           make([]int, sig.Len()),
		SourceBitDepth: bitDepth,
	}
	for i, x := range sig.Samples {
		buf.Data[i] = utils.ToPCM(x, bitDepth) + offset
	}

	enc := wav.NewEncoder(w, sig.SampleRate, bitDepth, 1, formatPCM)
	defer func() {
		if cerr := enc.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing wav encoder: %w", cerr))
		}
	}()

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	return nil
}
