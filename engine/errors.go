// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var ErrInvalidOption = errors.New("engine: invalid option")
