// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/audio"
)

type intReader struct {
	format *goaudio.Format
	data   []int
}

func (r *intReader) Format() *goaudio.Format { return r.format }

func (r *intReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestPCMSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		depth    int
		unsigned bool
		data     []int
		want     []float32
	}{
		{"16 bit", 16, false, []int{0, 16384, -32768}, []float32{0, 0.5, -1}},
		{"24 bit", 24, false, []int{4194304, -8388608}, []float32{0.5, -1}},
		{"8 bit unsigned", 8, true, []int{128, 192, 0}, []float32{0, 0.5, -1}},
		{"8 bit signed", 8, false, []int{64, -128}, []float32{0.5, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dec := &intReader{
				format: &goaudio.Format{NumChannels: 1, SampleRate: 8000},
				data:   tt.data,
			}
			src, err := audio.NewPCMSource(dec, tt.depth, tt.unsigned)
			require.NoError(t, err)
			assert.Equal(t, tt.depth, src.BitDepth())

			sig, err := audio.ReadAll(src)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, sig.Samples, 1e-6)
		})
	}
}

func TestPCMSourceRejects(t *testing.T) {
	t.Parallel()

	good := &goaudio.Format{NumChannels: 2, SampleRate: 44100}
	_, err := audio.NewPCMSource(&intReader{format: good}, 12, false)
	assert.ErrorIs(t, err, audio.ErrBitDepth)

	_, err = audio.NewPCMSource(&intReader{}, 16, false)
	assert.ErrorIs(t, err, audio.ErrFormat)

	_, err = audio.NewPCMSource(&intReader{format: &goaudio.Format{SampleRate: 8000}}, 16, false)
	assert.ErrorIs(t, err, audio.ErrFormat)
}
