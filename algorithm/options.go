// SPDX-License-Identifier: EPL-2.0

package algorithm

import (
	"io"
	"log/slog"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/schema"
)

// Defaults used by NewRegistry:
//
//   - table:  schema.Default(), the embedded catalog
//   - engine: a new in-process engine with its default limits
//   - logger: discards everything
type options struct {
	table  *schema.Table
	engine abi.Engine
	logger *slog.Logger
}

type Option func(*options)

func WithTable(t *schema.Table) Option {
	return func(o *options) { o.table = t }
}

// WithEngine sets the engine handles are created on. The registry does not
// take ownership of it.
func WithEngine(e abi.Engine) Option {
	return func(o *options) { o.engine = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
