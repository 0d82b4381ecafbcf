// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/formats/wav"
	"github.com/ik5/audalg/internal/audiotest"
)

func encodeFile(t *testing.T, sig audio.Signal, depth int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sig.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, sig, depth))
	require.NoError(t, f.Close())
	return path
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth int
		delta float64
	}{
		{8, 1.0 / 32},
		{16, 1.0 / 16384},
		{24, 1e-6},
		{32, 1e-6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d bit", tt.depth), func(t *testing.T) {
			t.Parallel()

			sig := audio.Signal{SampleRate: 22050, Samples: audiotest.Sine(2205, 441, 22050)}
			sig.Samples[10] = 1.5

			f, err := os.Open(encodeFile(t, sig, tt.depth))
			require.NoError(t, err)
			defer f.Close()

			src, err := wav.Decoder{}.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, 1, src.Channels())

			got, err := audio.ReadAll(src)
			require.NoError(t, err)
			assert.Equal(t, 22050, got.SampleRate)
			require.Equal(t, sig.Len(), got.Len())

			sig.Samples[10] = 1
			assert.InDeltaSlice(t, sig.Samples, got.Samples, tt.delta)
		})
	}
}

func TestDecodeWithoutSeek(t *testing.T) {
	t.Parallel()

	sig := audio.Signal{SampleRate: 8000, Samples: audiotest.Constant(800, 0.25)}
	data, err := os.ReadFile(encodeFile(t, sig, 16))
	require.NoError(t, err)

	src, err := wav.Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	require.NoError(t, err)
	got, err := audio.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, 800, got.Len())
	assert.InDelta(t, 0.25, got.Samples[400], 1e-4)
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("not a wave file at all, just text")} {
		_, err := wav.Decoder{}.Decode(bytes.NewReader(data))
		assert.ErrorIs(t, err, wav.ErrNotWavFile)
	}
}

func TestEncodeRejects(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	require.NoError(t, err)
	defer f.Close()

	sig := audio.Signal{SampleRate: 8000, Samples: []float32{0}}
	assert.ErrorIs(t, wav.Encode(f, sig, 12), audio.ErrBitDepth)
	assert.ErrorIs(t, wav.Encode(f, audio.Signal{Samples: []float32{0}}, 16), wav.ErrUnsupportedWavLayout)
	assert.ErrorIs(t, wav.Encode(f, audio.Signal{SampleRate: 8000}, 16), wav.ErrEmptySignal)
}
