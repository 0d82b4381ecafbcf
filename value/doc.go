// SPDX-License-Identifier: EPL-2.0

// Package value defines the closed set of shapes that cross the boundary
// between host code and the computation engine.
//
// A Value carries exactly one of:
//   - Number: a float64 scalar
//   - Boolean
//   - String
//   - RealArray: a flat sequence of float32 samples
//   - RealMatrix: a row-major float32 matrix with explicit extents
//
// Values are immutable. Constructors copy their input and accessors return
// copies, so a Value never aliases memory owned by the caller or by the
// engine.
//
// Of converts ordinary Go values (float64, int, []float32, [][]float64, ...)
// into a Value, which lets callers pass configuration as map[string]any.
package value
