// SPDX-License-Identifier: EPL-2.0

// Package marshal copies values across the host/engine boundary.
//
// ToForeign allocates a block owned by an engine object and writes the value
// into it; FromForeign reads a result descriptor back into a fresh host
// value. Both directions copy. Nothing returned here aliases engine memory,
// so a value stays usable after the block it came from is freed, the owner
// reconfigured or destroyed.
//
// Numbers and booleans travel by value inside the descriptor. Strings are
// raw bytes with an explicit length, arrays and matrices little-endian
// float32 with matrices in row-major order.
package marshal
