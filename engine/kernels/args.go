// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"fmt"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/value"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{abi.ErrInvalidInput}, args...)...)
}

func arity(in []value.Value, n int) error {
	if len(in) != n {
		return invalid("got %d inputs, want %d", len(in), n)
	}
	return nil
}

// realsIn reads input i as a RealArray.
func realsIn(in []value.Value, i int) ([]float32, error) {
	xs, err := in[i].Reals()
	if err != nil {
		return nil, invalid("input %d: %w", i, err)
	}
	return xs, nil
}

func nonEmpty(in []value.Value, i int) ([]float32, error) {
	xs, err := realsIn(in, i)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, invalid("input %d is empty", i)
	}
	return xs, nil
}

func numberIn(in []value.Value, i int) (float64, error) {
	f, err := in[i].Number()
	if err != nil {
		return 0, invalid("input %d: %w", i, err)
	}
	return f, nil
}

func matrixIn(in []value.Value, i int) (rows, cols int, data []float32, err error) {
	rows, cols, data, err = in[i].Matrix()
	if err != nil {
		return 0, 0, nil, invalid("input %d: %w", i, err)
	}
	return rows, cols, data, nil
}

func num(f float64) value.Value     { return value.NewNumber(f) }
func arr(xs []float32) value.Value { return value.NewRealArray(xs) }

func one(v value.Value) []value.Value { return []value.Value{v} }

func toFloat64(xs []float32) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func toFloat32(xs []float64) []float32 {
	out := make([]float32, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}

// stateless adapts a pure function into a Kernel.
type stateless func(in []value.Value) ([]value.Value, error)

func (f stateless) Compute(in []value.Value) ([]value.Value, error) { return f(in) }
func (stateless) Reset()                                             {}

// reducer builds a one-input, one-number kernel.
func reducer(allowEmpty bool, f func(xs []float32) (float64, error)) stateless {
	return func(in []value.Value) ([]value.Value, error) {
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		var (
			xs  []float32
			err error
		)
		if allowEmpty {
			xs, err = realsIn(in, 0)
		} else {
			xs, err = nonEmpty(in, 0)
		}
		if err != nil {
			return nil, err
		}
		r, err := f(xs)
		if err != nil {
			return nil, err
		}
		return one(num(r)), nil
	}
}

// mapper builds a one-input, one-array kernel.
func mapper(f func(xs []float32) ([]float32, error)) stateless {
	return func(in []value.Value) ([]value.Value, error) {
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		xs, err := realsIn(in, 0)
		if err != nil {
			return nil, err
		}
		ys, err := f(xs)
		if err != nil {
			return nil, err
		}
		return one(arr(ys)), nil
	}
}
