// SPDX-License-Identifier: EPL-2.0

package abi

import (
	"encoding/binary"
	"math"
)

// Samples are stored as little-endian IEEE-754 float32, four bytes each.

// EncodeReals appends the byte form of xs to dst.
func EncodeReals(dst []byte, xs []float32) []byte {
	for _, x := range xs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(x))
	}
	return dst
}

// DecodeReals converts b, whose length must be a multiple of four, back into
// samples.
func DecodeReals(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
