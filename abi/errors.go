// SPDX-License-Identifier: EPL-2.0

package abi

import "errors"

var (
	ErrOutOfMemory   = errors.New("abi: engine memory exhausted")
	ErrStale         = errors.New("abi: stale descriptor")
	ErrOutOfBounds   = errors.New("abi: access outside block")
	ErrInvalidObject = errors.New("abi: invalid object id")
	ErrBadConfig     = errors.New("abi: malformed configuration")
	ErrInvalidParam  = errors.New("abi: invalid parameter value")
	ErrInvalidInput  = errors.New("abi: invalid compute input")
	ErrNoKernel      = errors.New("abi: algorithm has no compute kernel")
)
