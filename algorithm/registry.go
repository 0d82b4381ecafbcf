// SPDX-License-Identifier: EPL-2.0

package algorithm

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/engine"
	"github.com/ik5/audalg/marshal"
	"github.com/ik5/audalg/schema"
)

// Registry creates Handles. It is safe for concurrent use.
type Registry struct {
	table  *schema.Table
	engine abi.Engine
	logger *slog.Logger
	live   atomic.Int64
}

func NewRegistry(opts ...Option) (*Registry, error) {
	o := options{logger: discard()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.table == nil {
		o.table = schema.Default()
	}
	if o.engine == nil {
		e, err := engine.New(engine.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		o.engine = e
	}

	return &Registry{table: o.table, engine: o.engine, logger: o.logger}, nil
}

// Names lists every algorithm in the table, sorted.
func (r *Registry) Names() []string { return r.table.Names() }

// Schema returns the schema registered under name.
func (r *Registry) Schema(name string) (*schema.Schema, error) {
	s, err := r.table.Lookup(name)
	if err != nil {
		return nil, wrap("lookup", name, err)
	}
	return s, nil
}

// Engine is the engine handles are created on.
func (r *Registry) Engine() abi.Engine { return r.engine }

// Live is the number of handles created and not yet disposed.
func (r *Registry) Live() int { return int(r.live.Load()) }

// Create resolves opts over the defaults of name and allocates the engine
// object. On error nothing is allocated and no Handle is returned.
//
// Option values may be Go numbers, bools, strings, []float32, []float64,
// []int, [][]float32, [][]float64 or value.Value.
func (r *Registry) Create(name string, opts map[string]any) (*Handle, error) {
	const op = "create"

	s, err := r.table.Lookup(name)
	if err != nil {
		return nil, wrap(op, name, err)
	}
	cfg, err := s.Resolve(opts)
	if err != nil {
		return nil, wrap(op, name, err)
	}
	blob, err := marshal.EncodeConfig(cfg)
	if err != nil {
		return nil, wrap(op, name, err)
	}
	id, err := r.engine.Create(blob)
	if err != nil {
		return nil, wrap(op, name, err)
	}

	h := &Handle{
		id:     uuid.New(),
		schema: s,
		config: cfg,
		object: id,
		state:  Configured,
		reg:    r,
	}
	r.live.Add(1)

	h.log("handle created")
	return h, nil
}

// Use creates a handle, passes it to fn and disposes it on every path.
func (r *Registry) Use(name string, opts map[string]any, fn func(*Handle) error) (err error) {
	h, err := r.Create(name, opts)
	if err != nil {
		return err
	}
	defer func() {
		if derr := h.Dispose(); err == nil {
			err = derr
		}
	}()
	return fn(h)
}
