// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float is a floating point sample type.
type Float interface {
	~float32 | ~float64
}

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at
// x in [0, 1] between y1 and y2.
func CubicInterpolate[T Float](y0, y1, y2, y3, x T) T {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return ((a0*x+a1)*x+a2)*x + a3
}

// CubicAt samples xs at a fractional position. Indices outside xs clamp to
// the first or last sample. xs must not be empty.
func CubicAt[T Float](xs []T, pos float64) T {
	at := func(i int) T {
		return xs[min(max(i, 0), len(xs)-1)]
	}
	i := int(math.Floor(pos))
	frac := T(pos - float64(i))
	return CubicInterpolate(at(i-1), at(i), at(i+1), at(i+2), frac)
}
