// SPDX-License-Identifier: EPL-2.0

package value

import "errors"

var (
	ErrUnknownTag      = errors.New("value: unknown type tag")
	ErrTagMismatch     = errors.New("value: type tag mismatch")
	ErrShape           = errors.New("value: matrix data does not match its extents")
	ErrRagged          = errors.New("value: matrix rows have different lengths")
	ErrUnsupportedType = errors.New("value: unsupported Go type")
)
