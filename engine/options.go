// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"log/slog"
)

// Defaults used when the matching option is not given.
//
//   - initial memory: 1 MiB
//   - memory limit:   256 MiB
//   - logger:         discards everything
const (
	DefaultInitialMemory = 1 << 20
	DefaultMemoryLimit   = 256 << 20
)

type options struct {
	initial int
	limit   int
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithInitialMemory sets the starting size of the arena in bytes.
func WithInitialMemory(n int) Option {
	return func(o *options) { o.initial = n }
}

// WithMemoryLimit caps the arena size in bytes. Allocations beyond it fail
// with abi.ErrOutOfMemory.
func WithMemoryLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		initial: DefaultInitialMemory,
		limit:   DefaultMemoryLimit,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.limit < 2*align {
		return o, fmt.Errorf("%w: memory limit %d", ErrInvalidOption, o.limit)
	}
	if o.initial <= 0 || o.initial > o.limit {
		return o, fmt.Errorf("%w: initial memory %d with limit %d", ErrInvalidOption, o.initial, o.limit)
	}
	return o, nil
}
