// SPDX-License-Identifier: EPL-2.0

package marshal

import (
	"errors"
	"fmt"
	"math"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/value"
)

// maxBlock is the largest payload accepted in either direction.
const maxBlock = math.MaxInt32

func fail(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrMarshal, kind, fmt.Sprintf(format, args...))
}

// ToForeign copies v into engine memory owned by owner. want is the tag the
// receiving port declares; a value of any other tag is rejected before
// anything is allocated.
func ToForeign(mem abi.Memory, owner abi.ObjectID, want value.Tag, v value.Value) (abi.Descriptor, error) {
	if v.Tag() != want {
		return abi.Descriptor{}, fail(ErrTagMismatch, "have %s, want %s", v.Tag(), want)
	}

	d := abi.Descriptor{Tag: v.Tag()}
	var payload []byte

	switch v.Tag() {
	case value.Number:
		d.Scalar, _ = v.Number()
		return d, nil
	case value.Boolean:
		if b, _ := v.Bool(); b {
			d.Scalar = 1
		}
		return d, nil
	case value.String:
		s, _ := v.Text()
		if len(s) > maxBlock {
			return abi.Descriptor{}, fail(ErrOverflow, "string of %d bytes", len(s))
		}
		payload = []byte(s)
		d.Len = len(payload)
	case value.RealArray:
		xs, _ := v.Reals()
		if len(xs) > maxBlock/4 {
			return abi.Descriptor{}, fail(ErrOverflow, "array of %d samples", len(xs))
		}
		payload = abi.EncodeReals(nil, xs)
		d.Len, d.Rows, d.Cols = len(xs), 1, len(xs)
	case value.RealMatrix:
		rows, cols, data, _ := v.Matrix()
		if len(data) > maxBlock/4 {
			return abi.Descriptor{}, fail(ErrOverflow, "%dx%d matrix", rows, cols)
		}
		payload = abi.EncodeReals(nil, data)
		d.Len, d.Rows, d.Cols = len(data), rows, cols
	default:
		return abi.Descriptor{}, fail(ErrTagMismatch, "tag %s cannot cross the boundary", v.Tag())
	}

	p, gen, err := mem.Alloc(owner, len(payload))
	if err != nil {
		return abi.Descriptor{}, err
	}
	if err := mem.Write(p, gen, 0, payload); err != nil {
		_ = mem.Free(p, gen)
		return abi.Descriptor{}, fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	d.Ptr, d.Gen = p, gen
	return d, nil
}

// ToForeignAll copies every value in vs, checking each against the matching
// tag in want. On failure the blocks already written are freed.
func ToForeignAll(mem abi.Memory, owner abi.ObjectID, want []value.Tag, vs []value.Value) ([]abi.Descriptor, error) {
	if len(want) != len(vs) {
		return nil, fail(ErrDescriptor, "%d values for %d slots", len(vs), len(want))
	}

	ds := make([]abi.Descriptor, 0, len(vs))
	for i, v := range vs {
		d, err := ToForeign(mem, owner, want[i], v)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("value %d: %w", i, err), Free(mem, ds...))
		}
		ds = append(ds, d)
	}
	return ds, nil
}

// FromForeign copies the block d refers to into a new host value. A
// descriptor whose block was freed fails with an error wrapping both
// ErrMarshal and abi.ErrStale.
func FromForeign(mem abi.Memory, d abi.Descriptor) (value.Value, error) {
	switch d.Tag {
	case value.Number:
		return value.NewNumber(d.Scalar), nil
	case value.Boolean:
		return value.NewBool(d.Scalar != 0), nil
	case value.String, value.RealArray, value.RealMatrix:
	default:
		return value.Value{}, fail(ErrDescriptor, "tag %s", d.Tag)
	}

	limit := maxBlock / 4
	if d.Tag == value.String {
		limit = maxBlock
	}
	if d.Len < 0 || d.Len > limit {
		return value.Value{}, fail(ErrOverflow, "length %d", d.Len)
	}
	if d.Tag == value.RealMatrix && (d.Rows < 0 || d.Cols < 0 || d.Rows*d.Cols != d.Len) {
		return value.Value{}, fail(ErrDescriptor, "%dx%d matrix with %d elements", d.Rows, d.Cols, d.Len)
	}

	buf := make([]byte, d.Size())
	if err := mem.Read(d.Ptr, d.Gen, 0, buf); err != nil {
		return value.Value{}, fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	switch d.Tag {
	case value.String:
		return value.NewString(string(buf)), nil
	case value.RealArray:
		return value.NewRealArray(abi.DecodeReals(buf)), nil
	default:
		v, err := value.NewRealMatrix(d.Rows, d.Cols, abi.DecodeReals(buf))
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %w", ErrMarshal, err)
		}
		return v, nil
	}
}

// FromForeignAll copies every descriptor. It stops at the first failure and
// returns no values in that case.
func FromForeignAll(mem abi.Memory, ds []abi.Descriptor) ([]value.Value, error) {
	out := make([]value.Value, len(ds))
	for i, d := range ds {
		v, err := FromForeign(mem, d)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Free releases the blocks behind ds. Scalar descriptors are skipped.
func Free(mem abi.Memory, ds ...abi.Descriptor) error {
	var errs []error
	for _, d := range ds {
		if !d.Blocked() {
			continue
		}
		if err := mem.Free(d.Ptr, d.Gen); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
