// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/internal/audiotest"
)

func TestReadAll(t *testing.T) {
	t.Parallel()

	left := audiotest.Constant(1000, 0.5)
	right := audiotest.Constant(1000, -0.25)
	src := audiotest.NewSource(16000, 2, audiotest.Interleave(left, right))
	src.Chunk = 333

	sig, err := audio.ReadAll(src)
	require.NoError(t, err)
	assert.True(t, src.Closed)
	assert.Equal(t, 16000, sig.SampleRate)
	require.Equal(t, 1000, sig.Len())
	assert.InDelta(t, 0.125, sig.Samples[999], 1e-6)
	assert.Equal(t, 62500*time.Microsecond, sig.Duration())
}

func TestReadAllEmpty(t *testing.T) {
	t.Parallel()

	sig, err := audio.ReadAll(audiotest.NewSource(8000, 1, nil))
	require.NoError(t, err)
	assert.Zero(t, sig.Len())
	assert.Zero(t, audio.Signal{}.Duration())
}

type brokenSource struct {
	*audiotest.Source
	err error
}

func (b brokenSource) ReadSamples([]float32) (int, error) { return 0, b.err }

func TestReadAllErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := audio.ReadAll(brokenSource{audiotest.NewSource(8000, 1, nil), boom})
	assert.ErrorIs(t, err, boom)

	_, err = audio.ReadAll(brokenSource{audiotest.NewSource(8000, 1, nil), nil})
	assert.ErrorIs(t, err, io.ErrNoProgress)
}
