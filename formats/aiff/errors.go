// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = errors.New("not an AIFF file")

	// ErrUnsupportedAiffLayout indicates a bit depth or layout the decoder
	// cannot scale
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
