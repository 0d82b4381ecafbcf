// SPDX-License-Identifier: EPL-2.0

package algorithm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/marshal"
	"github.com/ik5/audalg/schema"
	"github.com/ik5/audalg/value"
)

// Handle exclusively owns one engine object. See the package documentation
// for its lifecycle.
type Handle struct {
	id     uuid.UUID
	schema *schema.Schema
	config schema.ConfigSet
	object abi.ObjectID
	state  State
	reg    *Registry
}

func (h *Handle) ID() uuid.UUID            { return h.id }
func (h *Handle) Name() string             { return h.schema.Name() }
func (h *Handle) Schema() *schema.Schema   { return h.schema }
func (h *Handle) State() State             { return h.state }
func (h *Handle) Config() schema.ConfigSet { return h.config }

func (h *Handle) log(msg string, attrs ...any) {
	attrs = append([]any{
		slog.String("algorithm", h.Name()),
		slog.String("handle", h.id.String()),
		slog.String("object", h.object.String()),
	}, attrs...)
	h.reg.logger.Debug(msg, attrs...)
}

func (h *Handle) move(op string, to State) error {
	if h.state == Disposed {
		return newError(op, h.Name(), ErrUseAfterDispose, nil)
	}
	if !canTransition(h.state, to) {
		return newError(op, h.Name(), ErrUseAfterDispose,
			fmt.Errorf("cannot move from %s to %s", h.state, to))
	}
	return nil
}

// Configure binds a new configuration, built from opts merged over the
// schema defaults. The previous configuration plays no part in it. On error
// the handle keeps its configuration, state and engine object.
func (h *Handle) Configure(opts map[string]any) error {
	const op = "configure"
	if err := h.move(op, Configured); err != nil {
		return err
	}

	cfg, err := h.schema.Resolve(opts)
	if err != nil {
		return wrap(op, h.Name(), err)
	}
	blob, err := marshal.EncodeConfig(cfg)
	if err != nil {
		return wrap(op, h.Name(), err)
	}

	eng := h.reg.engine
	switch h.schema.Reconfigure() {
	case schema.Recreate:
		id, err := eng.Create(blob)
		if err != nil {
			return wrap(op, h.Name(), err)
		}
		old := h.object
		h.object = id
		if err := eng.Destroy(old); err != nil {
			h.reg.logger.Warn("releasing replaced object",
				slog.String("object", old.String()), slog.Any("error", err))
		}
		h.log("handle recreated", slog.String("previous", old.String()))
	default:
		if err := eng.Configure(h.object, blob); err != nil {
			return wrap(op, h.Name(), err)
		}
		h.log("handle configured")
	}

	h.config = cfg
	h.state = Configured
	return nil
}

// checkInputs validates arity and tags against the input ports.
func (h *Handle) checkInputs(inputs []value.Value) ([]value.Tag, error) {
	ports := h.schema.Inputs()
	if len(inputs) != len(ports) {
		return nil, fmt.Errorf("want %d inputs, have %d", len(ports), len(inputs))
	}
	tags := make([]value.Tag, len(ports))
	for i, p := range ports {
		if inputs[i].Tag() != p.Tag {
			return nil, fmt.Errorf("input %q: want %s, have %s", p.Name, p.Tag, inputs[i].Tag())
		}
		tags[i] = p.Tag
	}
	return tags, nil
}

// Compute copies inputs into the engine, runs the algorithm and copies the
// outputs back. Inputs are checked against the declared ports before
// anything is allocated. All engine blocks used by the call are released
// before it returns.
func (h *Handle) Compute(inputs ...value.Value) (Result, error) {
	const op = "compute"
	if err := h.move(op, Computed); err != nil {
		return Result{}, err
	}

	eng := h.reg.engine
	if !h.schema.Computable() || !eng.Supports(h.Name()) {
		return Result{}, newError(op, h.Name(), ErrUnsupported, nil)
	}
	tags, err := h.checkInputs(inputs)
	if err != nil {
		return Result{}, newError(op, h.Name(), ErrInputShape, err)
	}

	mem := eng.Memory()
	in, err := marshal.ToForeignAll(mem, h.object, tags, inputs)
	if err != nil {
		return Result{}, wrap(op, h.Name(), err)
	}

	out, err := eng.Compute(h.object, in)
	if err != nil {
		return Result{}, wrap(op, h.Name(), errors.Join(err, marshal.Free(mem, in...)))
	}

	values, err := marshal.FromForeignAll(mem, out)
	if ferr := marshal.Free(mem, append(in, out...)...); err == nil {
		err = ferr
	}
	if err != nil {
		return Result{}, wrap(op, h.Name(), err)
	}

	ports := h.schema.Outputs()
	if len(values) != len(ports) {
		return Result{}, newError(op, h.Name(), ErrMarshal,
			fmt.Errorf("engine returned %d outputs, want %d", len(values), len(ports)))
	}
	for i, p := range ports {
		if values[i].Tag() != p.Tag {
			return Result{}, newError(op, h.Name(), ErrMarshal,
				fmt.Errorf("output %q: want %s, have %s", p.Name, p.Tag, values[i].Tag()))
		}
	}

	h.state = Computed
	return Result{ports: ports, values: values}, nil
}

// Reset clears streaming state such as filter memory or a frame cursor
// while keeping the configuration.
func (h *Handle) Reset() error {
	const op = "reset"
	if err := h.move(op, Ready); err != nil {
		return err
	}
	if err := h.reg.engine.Reset(h.object); err != nil {
		return wrap(op, h.Name(), err)
	}
	h.state = Ready
	h.log("handle reset")
	return nil
}

// Dispose releases the engine object. The handle is Disposed afterwards even
// if the engine reports a failure. A second call fails with
// ErrUseAfterDispose.
func (h *Handle) Dispose() error {
	const op = "dispose"
	if err := h.move(op, Disposed); err != nil {
		return err
	}

	err := h.reg.engine.Destroy(h.object)
	h.state = Disposed
	h.reg.live.Add(-1)
	h.log("handle disposed")

	h.object = abi.NoObject
	return wrap(op, h.Name(), err)
}
