// SPDX-License-Identifier: EPL-2.0

// Package abi describes the boundary between the host layer and a
// computation engine: object ids, memory descriptors, the serialized
// configuration and the Engine and Memory interfaces.
//
// An engine owns a linear address space. The host never sees engine memory
// directly; it copies bytes in and out through Memory.Write and Memory.Read
// using a Descriptor that carries the block generation. Once a block is
// freed, its generation changes and every descriptor that still points at
// it fails with ErrStale.
package abi
