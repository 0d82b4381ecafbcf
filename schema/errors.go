// SPDX-License-Identifier: EPL-2.0

package schema

import "errors"

var (
	// ErrNotFound means the algorithm name is not in the table.
	ErrNotFound = errors.New("schema: algorithm not found")

	// ErrConfiguration covers unknown option names, values whose type does not
	// match the declared parameter type, and strings outside a parameter's
	// choices.
	ErrConfiguration = errors.New("schema: invalid configuration")

	ErrDuplicate     = errors.New("schema: duplicate name")
	ErrInvalidSchema = errors.New("schema: invalid schema")
)
