// SPDX-License-Identifier: EPL-2.0

package value

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Value is a tagged variant holding one of the shapes listed in the package
// documentation. The zero Value has tag Invalid.
type Value struct {
	tag  Tag
	num  float64
	flag bool
	str  string
	data []float32
	rows int
	cols int
}

func NewNumber(f float64) Value { return Value{tag: Number, num: f} }
func NewBool(b bool) Value      { return Value{tag: Boolean, flag: b} }
func NewString(s string) Value  { return Value{tag: String, str: s} }

// NewRealArray copies xs into a RealArray value. A nil slice gives an empty
// array.
func NewRealArray(xs []float32) Value {
	return Value{tag: RealArray, data: slices.Clone(xs), rows: 1, cols: len(xs)}
}

// NewRealMatrix copies row-major data into a RealMatrix with the given extents.
func NewRealMatrix(rows, cols int, data []float32) (Value, error) {
	if rows < 0 || cols < 0 || rows*cols != len(data) {
		return Value{}, fmt.Errorf("%w: %dx%d with %d elements", ErrShape, rows, cols, len(data))
	}
	return Value{tag: RealMatrix, data: slices.Clone(data), rows: rows, cols: cols}, nil
}

// MatrixFromRows builds a RealMatrix from a slice of equally sized rows.
func MatrixFromRows(rows [][]float32) (Value, error) {
	if len(rows) == 0 {
		return Value{tag: RealMatrix}, nil
	}
	cols := len(rows[0])
	data := make([]float32, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Value{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRagged, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return Value{tag: RealMatrix, data: data, rows: len(rows), cols: cols}, nil
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) mismatch(want Tag) error {
	return fmt.Errorf("%w: have %s, want %s", ErrTagMismatch, v.tag, want)
}

func (v Value) Number() (float64, error) {
	if v.tag != Number {
		return 0, v.mismatch(Number)
	}
	return v.num, nil
}

func (v Value) Bool() (bool, error) {
	if v.tag != Boolean {
		return false, v.mismatch(Boolean)
	}
	return v.flag, nil
}

// Text returns the payload of a String value.
func (v Value) Text() (string, error) {
	if v.tag != String {
		return "", v.mismatch(String)
	}
	return v.str, nil
}

// Reals returns a copy of the samples of a RealArray.
func (v Value) Reals() ([]float32, error) {
	if v.tag != RealArray {
		return nil, v.mismatch(RealArray)
	}
	return slices.Clone(v.data), nil
}

// Matrix returns the extents and a row-major copy of a RealMatrix.
func (v Value) Matrix() (rows, cols int, data []float32, err error) {
	if v.tag != RealMatrix {
		return 0, 0, nil, v.mismatch(RealMatrix)
	}
	return v.rows, v.cols, slices.Clone(v.data), nil
}

// Rows returns a RealMatrix as one freshly allocated slice per row.
func (v Value) Rows() ([][]float32, error) {
	if v.tag != RealMatrix {
		return nil, v.mismatch(RealMatrix)
	}
	out := make([][]float32, v.rows)
	for i := range out {
		out[i] = slices.Clone(v.data[i*v.cols : (i+1)*v.cols])
	}
	return out, nil
}

// Len is the element count of an array or matrix, the byte length of a
// string, and 1 for scalars.
func (v Value) Len() int {
	switch v.tag {
	case RealArray, RealMatrix:
		return len(v.data)
	case String:
		return len(v.str)
	case Invalid:
		return 0
	default:
		return 1
	}
}

// Dims returns the matrix extents. Arrays report a single row.
func (v Value) Dims() (rows, cols int) {
	switch v.tag {
	case RealArray:
		return 1, len(v.data)
	case RealMatrix:
		return v.rows, v.cols
	default:
		return 0, 0
	}
}

// Equal reports whether both values carry the same tag and payload.
// NaN samples compare equal to each other.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case Number:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case Boolean:
		return v.flag == o.flag
	case String:
		return v.str == o.str
	case RealArray, RealMatrix:
		if v.rows != o.rows || v.cols != o.cols || len(v.data) != len(o.data) {
			return false
		}
		for i := range v.data {
			a, b := v.data[i], o.data[i]
			if a != b && !(a != a && b != b) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.tag {
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Boolean:
		return strconv.FormatBool(v.flag)
	case String:
		return strconv.Quote(v.str)
	case RealArray:
		return formatReals(v.data)
	case RealMatrix:
		var b strings.Builder
		b.WriteByte('[')
		for i := range v.rows {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatReals(v.data[i*v.cols : (i+1)*v.cols]))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "<invalid>"
	}
}

func formatReals(xs []float32) string {
	const limit = 8

	var b strings.Builder
	b.WriteByte('[')
	for i, x := range xs {
		if i == limit {
			fmt.Fprintf(&b, " ...(%d more)", len(xs)-limit)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
