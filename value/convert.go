// SPDX-License-Identifier: EPL-2.0

package value

import "fmt"

// Of converts a host-native Go value into a Value.
//
// Numbers of any built-in numeric kind become Number, bool becomes Boolean,
// string becomes String, numeric slices become RealArray and two-dimensional
// numeric slices become RealMatrix. A Value is returned unchanged.
func Of(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case float64:
		return NewNumber(t), nil
	case float32:
		return NewNumber(float64(t)), nil
	case int:
		return NewNumber(float64(t)), nil
	case int8:
		return NewNumber(float64(t)), nil
	case int16:
		return NewNumber(float64(t)), nil
	case int32:
		return NewNumber(float64(t)), nil
	case int64:
		return NewNumber(float64(t)), nil
	case uint:
		return NewNumber(float64(t)), nil
	case uint8:
		return NewNumber(float64(t)), nil
	case uint16:
		return NewNumber(float64(t)), nil
	case uint32:
		return NewNumber(float64(t)), nil
	case uint64:
		return NewNumber(float64(t)), nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case []float32:
		return NewRealArray(t), nil
	case []float64:
		return Value{tag: RealArray, data: narrow(t), rows: 1, cols: len(t)}, nil
	case []int:
		return Value{tag: RealArray, data: narrow(t), rows: 1, cols: len(t)}, nil
	case [][]float32:
		return MatrixFromRows(t)
	case [][]float64:
		rows := make([][]float32, len(t))
		for i, r := range t {
			rows[i] = narrow(r)
		}
		return MatrixFromRows(rows)
	case nil:
		return Value{}, fmt.Errorf("%w: nil", ErrUnsupportedType)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, x)
	}
}

func narrow[T float64 | int](xs []T) []float32 {
	out := make([]float32, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}
