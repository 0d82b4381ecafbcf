// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/internal/audiotest"
)

func drainMono(t *testing.T, m *audio.MonoMixer, size int) []float32 {
	t.Helper()

	buf := make([]float32, size)
	var out []float32
	for range 1000 {
		n, err := m.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
	t.Fatal("mixer never reached EOF")
	return nil
}

func TestMonoMixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		data     []float32
		want     []float32
	}{
		{
			name:     "mono passthrough",
			channels: 1,
			data:     []float32{0.1, 0.2, 0.3},
			want:     []float32{0.1, 0.2, 0.3},
		},
		{
			name:     "stereo",
			channels: 2,
			data:     audiotest.Interleave([]float32{1, 0, -1}, []float32{0, 0, 1}),
			want:     []float32{0.5, 0, 0},
		},
		{
			name:     "quad",
			channels: 4,
			data:     []float32{1, 1, 1, 1, 0.5, -0.5, 0.5, -0.5},
			want:     []float32{1, 0},
		},
		{
			name:     "three channels",
			channels: 3,
			data:     []float32{0.3, 0.6, 0.9},
			want:     []float32{0.6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := audio.NewMonoMixer(audiotest.NewSource(44100, tt.channels, tt.data))
			assert.Equal(t, 1, m.Channels())
			assert.Equal(t, 44100, m.SampleRate())
			assert.InDeltaSlice(t, tt.want, drainMono(t, m, 16), 1e-6)
		})
	}
}

func TestMonoMixerCarriesPartialFrames(t *testing.T) {
	t.Parallel()

	left := audiotest.Sine(101, 440, 8000)
	right := audiotest.Noise(101, 7)
	src := audiotest.NewSource(8000, 2, audiotest.Interleave(left, right))
	src.Chunk = 3

	got := drainMono(t, audio.NewMonoMixer(src), 5)
	require.Len(t, got, 101)
	for i := range got {
		assert.InDelta(t, (left[i]+right[i])/2, got[i], 1e-6)
	}
}

func TestMonoMixerClose(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(8000, 2, nil)
	m := audio.NewMonoMixer(src)
	require.NoError(t, m.Close())
	assert.True(t, src.Closed)

	n, err := m.ReadSamples(nil)
	assert.Zero(t, n)
	assert.NoError(t, err)
}

func TestMonoMixerNoChannels(t *testing.T) {
	t.Parallel()

	m := audio.NewMonoMixer(audiotest.NewSource(8000, 0, []float32{1}))
	_, err := m.ReadSamples(make([]float32, 4))
	assert.ErrorIs(t, err, audio.ErrNoChannels)
}
