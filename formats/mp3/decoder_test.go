// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/audio"
)

// fakeMP3 serves 16-bit samples as bytes, step bytes per read.
type fakeMP3 struct {
	rate int
	data []byte
	step int
	err  error
}

func newFake(rate, step int, samples ...int16) *fakeMP3 {
	f := &fakeMP3{rate: rate, step: step}
	for _, s := range samples {
		f.data = binary.LittleEndian.AppendUint16(f.data, uint16(s))
	}
	return f
}

func (f *fakeMP3) SampleRate() int { return f.rate }

func (f *fakeMP3) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		if f.err != nil {
			return 0, f.err
		}
		return 0, io.EOF
	}
	if f.step > 0 && len(p) > f.step {
		p = p[:f.step]
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestSource(t *testing.T) {
	t.Parallel()

	src := &source{dec: newFake(44100, 0, 0, 16384, -32768, 8192)}
	assert.Equal(t, 44100, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	buf := make([]float32, 8)
	n, err := src.ReadSamples(buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5, -1, 0.25}, buf[:n])

	n, err = src.ReadSamples(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSourceOddReads(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -200, 300, -400, 500, -600}
	src := &source{dec: newFake(8000, 3, samples...)}

	sig, err := audio.ReadAll(src)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{-50.0 / 32768, -50.0 / 32768, -50.0 / 32768}, sig.Samples, 1e-6)
}

func TestSourceError(t *testing.T) {
	t.Parallel()

	fake := newFake(8000, 0)
	fake.err = io.ErrUnexpectedEOF
	_, err := (&source{dec: fake}).ReadSamples(make([]float32, 4))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		_, err := Decoder{}.Decode(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrNotMP3File)
	}
}
