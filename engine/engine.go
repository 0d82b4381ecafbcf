// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/engine/kernels"
	"github.com/ik5/audalg/value"
)

// headerSize is the fixed part of an object's header block. The serialized
// configuration follows it, then room for the kernel state.
const headerSize = 16

// Engine is an in-process computation engine. Objects, buffers and kernel
// state live behind ids and descriptors; nothing inside is reachable by
// pointer from the host.
//
// Engine methods are safe for concurrent use. Calls on distinct objects run
// their kernels in parallel; calls on the same object must be serialized by
// the caller.
type Engine struct {
	mu      sync.Mutex
	mem     *arena
	objects objectTable
	logger  *slog.Logger
}

var _ abi.Engine = (*Engine)(nil)

func New(opts ...Option) (*Engine, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Engine{
		mem:    newArena(o.initial, o.limit, o.logger),
		logger: o.logger,
	}, nil
}

// Supports reports whether name has a compute kernel.
func (e *Engine) Supports(name string) bool {
	_, ok := kernels.Lookup(name)
	return ok
}

// Algorithms lists the algorithms with compute kernels.
func (e *Engine) Algorithms() []string { return kernels.Names() }

func decodeParams(blob []byte) (abi.Config, map[string]value.Value, error) {
	cfg, err := abi.DecodeConfig(blob)
	if err != nil {
		return abi.Config{}, nil, err
	}

	params := make(map[string]value.Value, len(cfg.Params))
	for _, p := range cfg.Params {
		v, err := p.Value()
		if err != nil {
			return abi.Config{}, nil, err
		}
		params[p.Name] = v
	}
	return cfg, params, nil
}

// buildKernel returns a nil kernel for algorithms without one. The kernel
// may reserve whatever the arena limit leaves after the header; state is the
// number of bytes it reserved.
func (e *Engine) buildKernel(name string, params map[string]value.Value, blob []byte) (k kernels.Kernel, state int, err error) {
	factory, ok := kernels.Lookup(name)
	if !ok {
		return nil, 0, nil
	}
	p := kernels.NewParams(params, e.mem.limit-headerSize-len(blob))
	if k, err = factory(p); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	return k, p.Reserved(), nil
}

func (e *Engine) Create(config []byte) (abi.ObjectID, error) {
	cfg, params, err := decodeParams(config)
	if err != nil {
		return abi.NoObject, err
	}
	k, state, err := e.buildKernel(cfg.Algorithm, params, config)
	if err != nil {
		return abi.NoObject, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	obj := &object{algorithm: cfg.Algorithm, params: params, kernel: k}
	id := e.objects.add(obj)

	p, gen, err := e.storeHeader(id, config, state)
	if err != nil {
		_, _ = e.objects.remove(id)
		return abi.NoObject, err
	}
	obj.header, obj.headerGen = p, gen

	e.logger.Debug("object created",
		slog.String("algorithm", cfg.Algorithm),
		slog.String("object", id.String()),
		slog.Bool("kernel", k != nil),
		slog.Int("state", state))

	return id, nil
}

// storeHeader allocates the object's header block with state bytes charged
// for the kernel, so kernel memory counts against the arena limit.
func (e *Engine) storeHeader(id abi.ObjectID, blob []byte, state int) (abi.Ptr, uint32, error) {
	if state > e.mem.limit-headerSize-len(blob) {
		return 0, 0, fmt.Errorf("%w: kernel state of %d bytes", abi.ErrOutOfMemory, state)
	}
	p, gen, err := e.mem.alloc(id, headerSize+len(blob)+state)
	if err != nil {
		return 0, 0, err
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(id))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(blob)))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(min(state, math.MaxUint32)))
	if err := e.mem.write(p, gen, 0, hdr[:]); err != nil {
		return 0, 0, err
	}
	if err := e.mem.write(p, gen, headerSize, blob); err != nil {
		return 0, 0, err
	}
	return p, gen, nil
}

// Configure applies a new configuration to an existing object. The object
// keeps its id; every block it owned, including earlier compute outputs, is
// released. On error the object is unchanged.
func (e *Engine) Configure(id abi.ObjectID, config []byte) error {
	cfg, params, err := decodeParams(config)
	if err != nil {
		return err
	}

	e.mu.Lock()
	obj, err := e.objects.get(id)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if cfg.Algorithm != obj.algorithm {
		return fmt.Errorf("%w: object %s is %s, configuration is for %s",
			abi.ErrBadConfig, id, obj.algorithm, cfg.Algorithm)
	}

	k, state, err := e.buildKernel(cfg.Algorithm, params, config)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if obj, err = e.objects.get(id); err != nil {
		return err
	}
	p, gen, err := e.storeHeader(id, config, state)
	if err != nil {
		return err
	}
	e.mem.releaseOwned(id, p)

	obj.params = params
	obj.kernel = k
	obj.header, obj.headerGen = p, gen

	e.logger.Debug("object configured", slog.String("object", id.String()))
	return nil
}

// Compute runs the object's kernel. Output blocks belong to the object. When
// the outputs cannot be stored the kernel's streaming state is rolled back,
// so a failed call leaves the object as it was.
func (e *Engine) Compute(id abi.ObjectID, inputs []abi.Descriptor) ([]abi.Descriptor, error) {
	e.mu.Lock()
	obj, err := e.objects.get(id)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if obj.kernel == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", abi.ErrNoKernel, obj.algorithm)
	}

	args := make([]value.Value, len(inputs))
	for i, d := range inputs {
		if args[i], err = e.load(d); err != nil {
			e.mu.Unlock()
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}
	k := obj.kernel
	e.mu.Unlock()

	restore := func() {}
	if s, ok := k.(kernels.Stateful); ok {
		restore = s.Snapshot()
	}

	outs, err := k.Compute(args)
	if err != nil {
		restore()
		return nil, fmt.Errorf("%s: %w", obj.algorithm, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.objects.get(id); err != nil {
		return nil, err
	}

	descs := make([]abi.Descriptor, 0, len(outs))
	for _, v := range outs {
		d, err := e.store(id, v)
		if err != nil {
			for _, done := range descs {
				if done.Blocked() {
					_ = e.mem.release(done.Ptr, done.Gen)
				}
			}
			restore()
			e.logger.Debug("compute outputs dropped",
				slog.String("object", id.String()), slog.String("error", err.Error()))
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func (e *Engine) load(d abi.Descriptor) (value.Value, error) {
	switch d.Tag {
	case value.Number:
		return value.NewNumber(d.Scalar), nil
	case value.Boolean:
		return value.NewBool(d.Scalar != 0), nil
	}

	if d.Len < 0 {
		return value.Value{}, fmt.Errorf("%w: negative length", abi.ErrInvalidInput)
	}
	buf := make([]byte, d.Size())
	if err := e.mem.read(d.Ptr, d.Gen, 0, buf); err != nil {
		return value.Value{}, err
	}

	switch d.Tag {
	case value.String:
		return value.NewString(string(buf)), nil
	case value.RealArray:
		return value.NewRealArray(abi.DecodeReals(buf)), nil
	case value.RealMatrix:
		v, err := value.NewRealMatrix(d.Rows, d.Cols, abi.DecodeReals(buf))
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %w", abi.ErrInvalidInput, err)
		}
		return v, nil
	default:
		return value.Value{}, fmt.Errorf("%w: tag %s", abi.ErrInvalidInput, d.Tag)
	}
}

func (e *Engine) store(owner abi.ObjectID, v value.Value) (abi.Descriptor, error) {
	d := abi.Descriptor{Tag: v.Tag()}

	var payload []byte
	switch v.Tag() {
	case value.Number:
		d.Scalar, _ = v.Number()
		return d, nil
	case value.Boolean:
		if b, _ := v.Bool(); b {
			d.Scalar = 1
		}
		return d, nil
	case value.String:
		s, _ := v.Text()
		payload = []byte(s)
		d.Len = len(payload)
	case value.RealArray:
		xs, _ := v.Reals()
		payload = abi.EncodeReals(nil, xs)
		d.Len = len(xs)
		d.Rows, d.Cols = 1, len(xs)
	case value.RealMatrix:
		rows, cols, data, _ := v.Matrix()
		payload = abi.EncodeReals(nil, data)
		d.Len, d.Rows, d.Cols = len(data), rows, cols
	default:
		return d, fmt.Errorf("%w: kernel produced %s", abi.ErrInvalidInput, v.Tag())
	}

	p, gen, err := e.mem.alloc(owner, len(payload))
	if err != nil {
		return d, err
	}
	if err := e.mem.write(p, gen, 0, payload); err != nil {
		return d, err
	}
	d.Ptr, d.Gen = p, gen
	return d, nil
}

// Reset clears the kernel's streaming state.
func (e *Engine) Reset(id abi.ObjectID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	obj, err := e.objects.get(id)
	if err != nil {
		return err
	}
	if obj.kernel != nil {
		obj.kernel.Reset()
	}
	return nil
}

// Destroy releases the object and every block it owns. The id is never
// accepted again.
func (e *Engine) Destroy(id abi.ObjectID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	obj, err := e.objects.remove(id)
	if err != nil {
		return err
	}
	e.mem.releaseOwned(id, 0)

	e.logger.Debug("object destroyed",
		slog.String("algorithm", obj.algorithm), slog.String("object", id.String()))
	return nil
}

// Memory gives the host copy-in/copy-out access to the arena.
func (e *Engine) Memory() abi.Memory { return memoryView{e} }

// Live is the number of objects not yet destroyed.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.objects.live
}

// Blocks is the number of allocated memory blocks.
func (e *Engine) Blocks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.mem.blocks)
}

// Used is the number of bytes held by allocated blocks.
func (e *Engine) Used() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mem.used
}

// Cap is the current arena size in bytes.
func (e *Engine) Cap() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.mem.buf)
}

type memoryView struct{ e *Engine }

func (m memoryView) Alloc(owner abi.ObjectID, size int) (abi.Ptr, uint32, error) {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()

	if _, err := m.e.objects.get(owner); err != nil {
		return 0, 0, err
	}
	return m.e.mem.alloc(owner, size)
}

func (m memoryView) Free(p abi.Ptr, gen uint32) error {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	return m.e.mem.release(p, gen)
}

func (m memoryView) Write(p abi.Ptr, gen uint32, off int, src []byte) error {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	return m.e.mem.write(p, gen, off, src)
}

func (m memoryView) Read(p abi.Ptr, gen uint32, off int, dst []byte) error {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	return m.e.mem.read(p, gen, off, dst)
}
