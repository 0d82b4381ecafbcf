// SPDX-License-Identifier: EPL-2.0

package algorithm

import (
	"errors"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/frames"
	"github.com/ik5/audalg/marshal"
	"github.com/ik5/audalg/schema"
)

// Error kinds. Every *Error carries exactly one of them.
var (
	// ErrNotFound means the algorithm name is not in the schema table.
	ErrNotFound = errors.New("algorithm: not found")

	// ErrConfiguration covers unknown option names, mistyped values and values
	// the engine rejects. Nothing is allocated when it is returned.
	ErrConfiguration = errors.New("algorithm: configuration error")

	// ErrResource means the engine could not allocate memory.
	ErrResource = errors.New("algorithm: resource error")

	// ErrInputShape reports a compute input with the wrong arity, type or
	// extent. The engine object is left untouched.
	ErrInputShape = errors.New("algorithm: input shape error")

	ErrMarshal = errors.New("algorithm: marshal error")

	ErrUseAfterDispose = errors.New("algorithm: use after dispose")

	// ErrUnsupported is returned by Compute for catalog algorithms the engine
	// has no compute kernel for.
	ErrUnsupported = errors.New("algorithm: no compute kernel")
)

// Error describes a failed operation on a Registry, Handle, Chain or Stream.
type Error struct {
	Op        string
	Algorithm string
	Kind      error
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Algorithm != "" {
		msg += " " + e.Algorithm
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, name string, kind, err error) *Error {
	return &Error{Op: op, Algorithm: name, Kind: kind, Err: err}
}

// wrap classifies err, returning it unchanged when it already is an *Error.
func wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(op, name, classify(err), err)
}

func classify(err error) error {
	switch {
	case errors.Is(err, schema.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, schema.ErrConfiguration),
		errors.Is(err, abi.ErrInvalidParam),
		errors.Is(err, abi.ErrBadConfig):
		return ErrConfiguration
	case errors.Is(err, abi.ErrOutOfMemory):
		return ErrResource
	case errors.Is(err, abi.ErrInvalidInput):
		return ErrInputShape
	case errors.Is(err, marshal.ErrMarshal),
		errors.Is(err, abi.ErrStale),
		errors.Is(err, abi.ErrOutOfBounds):
		return ErrMarshal
	case errors.Is(err, abi.ErrNoKernel):
		return ErrUnsupported
	case errors.Is(err, abi.ErrInvalidObject),
		errors.Is(err, frames.ErrClosed):
		return ErrUseAfterDispose
	default:
		// an engine failure with no better description
		return ErrResource
	}
}
