// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("audio: unknown format")
	ErrFormat         = errors.New("audio: malformed stream")
	ErrBitDepth       = errors.New("audio: unsupported bit depth")
	ErrNoChannels     = errors.New("audio: source has no channels")
)
