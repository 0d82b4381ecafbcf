// SPDX-License-Identifier: EPL-2.0

package frames

import "errors"

var (
	ErrInvalidPolicy = errors.New("frames: invalid policy")
	ErrClosed        = errors.New("frames: generator closed")
)
