// SPDX-License-Identifier: EPL-2.0

package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/value"
)

func TestObjectID(t *testing.T) {
	t.Parallel()

	id := MakeObjectID(7, 3)
	assert.Equal(t, uint32(7), id.Index())
	assert.Equal(t, uint32(3), id.Gen())
	assert.Equal(t, "obj#7.3", id.String())
	assert.NotEqual(t, MakeObjectID(7, 4), id)
}

func TestDescriptorSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Descriptor{Tag: value.Number}.Size())
	assert.False(t, Descriptor{Tag: value.Boolean}.Blocked())
	assert.Equal(t, 5, Descriptor{Tag: value.String, Len: 5}.Size())
	assert.Equal(t, 24, Descriptor{Tag: value.RealMatrix, Len: 6, Rows: 2, Cols: 3}.Size())
	assert.True(t, Descriptor{Tag: value.RealArray}.Blocked())
}

func TestConfigWire(t *testing.T) {
	t.Parallel()

	m, err := value.NewRealMatrix(2, 2, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	in := Config{Algorithm: "Custom", Params: []Param{
		ParamOf("gain", value.NewNumber(0.5)),
		ParamOf("enabled", value.NewBool(true)),
		ParamOf("mode", value.NewString("fast")),
		ParamOf("taps", value.NewRealArray([]float32{0.25, 0.5})),
		ParamOf("grid", m),
		ParamOf("empty", value.NewRealArray(nil)),
	}}

	blob, err := EncodeConfig(in)
	require.NoError(t, err)

	out, err := DecodeConfig(blob)
	require.NoError(t, err)
	require.Equal(t, "Custom", out.Algorithm)
	require.Len(t, out.Params, len(in.Params))

	want := []value.Value{
		value.NewNumber(0.5), value.NewBool(true), value.NewString("fast"),
		value.NewRealArray([]float32{0.25, 0.5}), m, value.NewRealArray(nil),
	}
	for i, p := range out.Params {
		v, err := p.Value()
		require.NoError(t, err)
		assert.True(t, want[i].Equal(v), "%s: %v", p.Name, v)
	}
}

func TestDecodeConfigRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeConfig([]byte{0xc1, 0x00})
	require.ErrorIs(t, err, ErrBadConfig)

	blob, err := EncodeConfig(Config{})
	require.NoError(t, err)
	_, err = DecodeConfig(blob)
	require.ErrorIs(t, err, ErrBadConfig)

	_, err = Param{Name: "x", Tag: value.Invalid}.Value()
	require.ErrorIs(t, err, ErrBadConfig)
}
