// SPDX-License-Identifier: EPL-2.0

package abi

import (
	"fmt"

	"github.com/ik5/audalg/value"
)

// ObjectID names an engine object. The low 32 bits are a generation, the
// high 32 bits a slot index, so a released id is never valid again even
// after its slot is reused.
type ObjectID uint64

// NoObject is never returned by an engine.
const NoObject ObjectID = 0

func MakeObjectID(index, gen uint32) ObjectID {
	return ObjectID(uint64(index)<<32 | uint64(gen))
}

func (id ObjectID) Index() uint32 { return uint32(id >> 32) }
func (id ObjectID) Gen() uint32   { return uint32(id) }

func (id ObjectID) String() string {
	return fmt.Sprintf("obj#%d.%d", id.Index(), id.Gen())
}

// Ptr is an offset into engine memory.
type Ptr uint32

// Descriptor locates a compute argument or result.
//
// Number and Boolean travel by value in Scalar (Boolean as 0 or 1) and have
// no block. String, RealArray and RealMatrix live in a block at Ptr whose
// generation is Gen; Len counts bytes for strings and float32 elements for
// arrays and matrices. Matrices are row-major with extents Rows x Cols.
type Descriptor struct {
	Tag    value.Tag
	Scalar float64
	Ptr    Ptr
	Gen    uint32
	Len    int
	Rows   int
	Cols   int
}

// Blocked reports whether the descriptor refers to engine memory.
func (d Descriptor) Blocked() bool {
	return d.Tag == value.String || d.Tag == value.RealArray || d.Tag == value.RealMatrix
}

// Size is the byte size of the referenced block.
func (d Descriptor) Size() int {
	switch d.Tag {
	case value.String:
		return d.Len
	case value.RealArray, value.RealMatrix:
		return d.Len * 4
	default:
		return 0
	}
}

// Memory is an engine's address space. Read and Write copy; no slice of
// engine memory is ever handed out.
type Memory interface {
	// Alloc reserves size bytes owned by owner and returns the block pointer
	// and generation.
	Alloc(owner ObjectID, size int) (Ptr, uint32, error)
	Free(p Ptr, gen uint32) error
	Write(p Ptr, gen uint32, off int, src []byte) error
	Read(p Ptr, gen uint32, off int, dst []byte) error
}

// Engine is the computation module. Configuration blobs are produced by
// EncodeConfig.
type Engine interface {
	Create(config []byte) (ObjectID, error)
	Configure(id ObjectID, config []byte) error
	// Compute consumes the input descriptors and returns output descriptors
	// for blocks owned by id. Output blocks stay valid until the host frees
	// them or id is reconfigured or destroyed.
	Compute(id ObjectID, inputs []Descriptor) ([]Descriptor, error)
	Reset(id ObjectID) error
	Destroy(id ObjectID) error
	Memory() Memory
	// Supports reports whether the engine has a compute kernel for algorithm.
	Supports(algorithm string) bool
}
