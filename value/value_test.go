// SPDX-License-Identifier: EPL-2.0

package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	t.Parallel()

	for _, tag := range []Tag{Number, Boolean, String, RealArray, RealMatrix} {
		got, err := ParseTag(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, got)
		assert.True(t, got.Valid())
	}

	_, err := ParseTag("vector_real")
	require.ErrorIs(t, err, ErrUnknownTag)

	_, err = ParseTag("invalid")
	require.ErrorIs(t, err, ErrUnknownTag)
	assert.Equal(t, "tag(42)", Tag(42).String())
}

func TestAccessorsRejectOtherTags(t *testing.T) {
	t.Parallel()

	v := NewNumber(3)

	_, err := v.Bool()
	require.ErrorIs(t, err, ErrTagMismatch)
	_, err = v.Text()
	require.ErrorIs(t, err, ErrTagMismatch)
	_, err = v.Reals()
	require.ErrorIs(t, err, ErrTagMismatch)
	_, _, _, err = v.Matrix()
	require.ErrorIs(t, err, ErrTagMismatch)

	f, err := v.Number()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, f, 0)
}

func TestRealArrayCopies(t *testing.T) {
	t.Parallel()

	src := []float32{1, 2, 3}
	v := NewRealArray(src)
	src[0] = 99

	got, err := v.Reals()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got)

	got[1] = 42
	again, _ := v.Reals()
	assert.Equal(t, []float32{1, 2, 3}, again)
	assert.Equal(t, 3, v.Len())
}

func TestRealMatrix(t *testing.T) {
	t.Parallel()

	m, err := NewRealMatrix(2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)

	rows, err := m.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, rows)

	_, err = NewRealMatrix(2, 2, []float32{1, 2, 3})
	require.ErrorIs(t, err, ErrShape)

	_, err = MatrixFromRows([][]float32{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrRagged)

	fromRows, err := MatrixFromRows(rows)
	require.NoError(t, err)
	assert.True(t, m.Equal(fromRows))
}

func TestOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want Tag
	}{
		{"float64", 1.5, Number},
		{"int", 7, Number},
		{"uint16", uint16(3), Number},
		{"bool", true, Boolean},
		{"string", "hann", String},
		{"float32 slice", []float32{1}, RealArray},
		{"float64 slice", []float64{1, 2}, RealArray},
		{"int slice", []int{1, 2}, RealArray},
		{"float64 matrix", [][]float64{{1, 2}, {3, 4}}, RealMatrix},
		{"value", NewString("x"), String},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Of(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Tag())
		})
	}

	_, err := Of(map[string]int{})
	require.ErrorIs(t, err, ErrUnsupportedType)
	_, err = Of(nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
	_, err = Of([][]float64{{1}, {2, 3}})
	require.ErrorIs(t, err, ErrRagged)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	nan := float32(math.NaN())
	a := NewRealArray([]float32{1, nan})
	b := NewRealArray([]float32{1, nan})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewRealArray([]float32{1, 2})))
	assert.False(t, NewNumber(1).Equal(NewBool(true)))
	assert.True(t, NewNumber(math.NaN()).Equal(NewNumber(math.NaN())))

	row, _ := NewRealMatrix(1, 2, []float32{1, nan})
	assert.False(t, a.Equal(row), "array and matrix differ by tag")
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.25", NewNumber(0.25).String())
	assert.Equal(t, `"hann"`, NewString("hann").String())
	assert.Equal(t, "[1 2]", NewRealArray([]float32{1, 2}).String())

	m, _ := NewRealMatrix(2, 1, []float32{1, 2})
	assert.Equal(t, "[[1], [2]]", m.String())
	assert.Equal(t, "<invalid>", Value{}.String())
}
