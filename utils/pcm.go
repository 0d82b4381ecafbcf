// SPDX-License-Identifier: EPL-2.0

package utils

import goaudio "github.com/go-audio/audio"

// FromPCM scales a signed integer sample of the given bit depth to [-1, 1).
func FromPCM(v, bitDepth int) float32 {
	return float32(float64(v) / float64(goaudio.IntMaxSignedValue(bitDepth)+1))
}

// ToPCM clamps x to [-1, 1] and scales it to a signed integer sample of the
// given bit depth. Full scale maps to the largest positive value so +1
// never overflows.
func ToPCM(x float32, bitDepth int) int {
	x = min(max(x, -1), 1)
	return int(float64(x) * float64(goaudio.IntMaxSignedValue(bitDepth)))
}
