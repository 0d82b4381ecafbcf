// SPDX-License-Identifier: EPL-2.0

// Package audiotest builds deterministic signals for tests.
package audiotest

import (
	"math"
	"math/rand/v2"
)

// Sine returns n samples of a unit-amplitude sine at freq Hz.
func Sine(n int, freq, rate float64) []float32 {
	xs := make([]float32, n)
	for i := range xs {
		xs[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / rate))
	}
	return xs
}

func Constant(n int, v float32) []float32 {
	xs := make([]float32, n)
	for i := range xs {
		xs[i] = v
	}
	return xs
}

// Impulse is a unit impulse at index at.
func Impulse(n, at int) []float32 {
	xs := make([]float32, n)
	if at >= 0 && at < n {
		xs[at] = 1
	}
	return xs
}

// Noise is uniform white noise in [-1, 1). The same seed gives the same
// samples.
func Noise(n int, seed uint64) []float32 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	xs := make([]float32, n)
	for i := range xs {
		xs[i] = float32(r.Float64()*2 - 1)
	}
	return xs
}

// Interleave merges equally long channels into one interleaved slice.
func Interleave(chans ...[]float32) []float32 {
	if len(chans) == 0 {
		return nil
	}
	n := len(chans[0])
	out := make([]float32, 0, n*len(chans))
	for i := range n {
		for _, c := range chans {
			out = append(out, c[i])
		}
	}
	return out
}
