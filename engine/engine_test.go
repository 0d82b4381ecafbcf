// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/schema"
	"github.com/ik5/audalg/value"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// configFor encodes the catalog defaults of name with overrides applied.
func configFor(t *testing.T, name string, opts map[string]any) []byte {
	t.Helper()

	s, err := schema.Default().Lookup(name)
	require.NoError(t, err)
	cs, err := s.Resolve(opts)
	require.NoError(t, err)

	cfg := abi.Config{Algorithm: name}
	for pname, v := range cs.All() {
		cfg.Params = append(cfg.Params, abi.ParamOf(pname, v))
	}
	blob, err := abi.EncodeConfig(cfg)
	require.NoError(t, err)
	return blob
}

func putReals(t *testing.T, e *Engine, owner abi.ObjectID, xs []float32) abi.Descriptor {
	t.Helper()

	mem := e.Memory()
	p, gen, err := mem.Alloc(owner, len(xs)*4)
	require.NoError(t, err)
	require.NoError(t, mem.Write(p, gen, 0, abi.EncodeReals(nil, xs)))
	return abi.Descriptor{Tag: value.RealArray, Ptr: p, Gen: gen, Len: len(xs), Rows: 1, Cols: len(xs)}
}

func constant(n int, x float32) []float32 {
	xs := make([]float32, n)
	for i := range xs {
		xs[i] = x
	}
	return xs
}

func getReals(t *testing.T, e *Engine, d abi.Descriptor) []float32 {
	t.Helper()

	buf := make([]byte, d.Size())
	require.NoError(t, e.Memory().Read(d.Ptr, d.Gen, 0, buf))
	return abi.DecodeReals(buf)
}

func TestArenaCoalescing(t *testing.T) {
	t.Parallel()

	a := newArena(64, 1024, discard)
	owner := abi.MakeObjectID(0, 1)

	p1, g1, err := a.alloc(owner, 8)
	require.NoError(t, err)
	p2, g2, err := a.alloc(owner, 13)
	require.NoError(t, err)
	p3, g3, err := a.alloc(owner, 8)
	require.NoError(t, err)

	assert.Equal(t, abi.Ptr(align), p1, "offset zero is never handed out")
	assert.Equal(t, p1+8, p2)
	assert.Equal(t, p2+16, p3, "sizes are rounded to the alignment")
	assert.Equal(t, 32, a.used)

	require.NoError(t, a.release(p2, g2))
	require.NoError(t, a.release(p1, g1))
	require.Len(t, a.free, 1)
	assert.Equal(t, span{off: align, size: 24}, a.free[0])

	p4, _, err := a.alloc(owner, 20)
	require.NoError(t, err)
	assert.Equal(t, p1, p4, "first fit reuses the merged span")

	require.NoError(t, a.release(p3, g3))
	assert.Equal(t, int(p3), a.top, "trailing free space returns to the bump region")
}

func TestArenaGrowthAndLimit(t *testing.T) {
	t.Parallel()

	a := newArena(16, 256, discard)
	owner := abi.MakeObjectID(0, 1)

	_, _, err := a.alloc(owner, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(a.buf), 108)

	_, _, err = a.alloc(owner, 200)
	require.ErrorIs(t, err, abi.ErrOutOfMemory)

	_, _, err = a.alloc(owner, -1)
	require.ErrorIs(t, err, abi.ErrOutOfMemory)
}

func TestArenaStaleAndBounds(t *testing.T) {
	t.Parallel()

	a := newArena(64, 1024, discard)
	owner := abi.MakeObjectID(0, 1)

	p, gen, err := a.alloc(owner, 8)
	require.NoError(t, err)
	require.NoError(t, a.write(p, gen, 0, []byte{1, 2, 3, 4}))

	err = a.write(p, gen, 6, []byte{1, 2, 3})
	require.ErrorIs(t, err, abi.ErrOutOfBounds)
	err = a.read(p, gen, -1, make([]byte, 1))
	require.ErrorIs(t, err, abi.ErrOutOfBounds)

	require.NoError(t, a.release(p, gen))
	require.ErrorIs(t, a.read(p, gen, 0, make([]byte, 4)), abi.ErrStale)
	require.ErrorIs(t, a.release(p, gen), abi.ErrStale)

	again, gen2, err := a.alloc(owner, 8)
	require.NoError(t, err)
	require.Equal(t, p, again)
	assert.NotEqual(t, gen, gen2)
	require.ErrorIs(t, a.read(p, gen, 0, make([]byte, 4)), abi.ErrStale, "old generation stays dead")

	buf := make([]byte, 4)
	require.NoError(t, a.read(again, gen2, 0, buf))
	assert.Equal(t, []byte{0, 0, 0, 0}, buf, "released memory is cleared")
}

func TestOptions(t *testing.T) {
	t.Parallel()

	_, err := New(WithMemoryLimit(4))
	require.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(WithInitialMemory(2048), WithMemoryLimit(1024))
	require.ErrorIs(t, err, ErrInvalidOption)

	e, err := New(WithInitialMemory(256), WithMemoryLimit(4096), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, 256, e.Cap())
}

func TestComputeLifecycle(t *testing.T) {
	t.Parallel()

	e, err := New(WithLogger(discard))
	require.NoError(t, err)
	assert.True(t, e.Supports("HighPass"))
	assert.False(t, e.Supports("AllPass"))
	assert.Contains(t, e.Algorithms(), "MFCC")

	id, err := e.Create(configFor(t, "HighPass", map[string]any{"cutoffFrequency": 300}))
	require.NoError(t, err)
	assert.Equal(t, 1, e.Live())

	signal := make([]float32, 1024)
	for i := range signal {
		signal[i] = float32(math.Sin(float64(i) / 3))
	}
	in := putReals(t, e, id, signal)

	outs, err := e.Compute(id, []abi.Descriptor{in})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, value.RealArray, outs[0].Tag)
	assert.Equal(t, 1024, outs[0].Len)

	ys := getReals(t, e, outs[0])
	require.Len(t, ys, 1024)
	for _, y := range ys {
		require.False(t, math.IsNaN(float64(y)) || math.IsInf(float64(y), 0))
	}

	require.NoError(t, e.Destroy(id))
	assert.Equal(t, 0, e.Live())
	assert.Equal(t, 0, e.Blocks(), "destroy releases every owned block")
	assert.Equal(t, 0, e.Used())

	err = e.Memory().Read(outs[0].Ptr, outs[0].Gen, 0, make([]byte, 4))
	require.ErrorIs(t, err, abi.ErrStale)

	_, err = e.Compute(id, []abi.Descriptor{in})
	require.ErrorIs(t, err, abi.ErrInvalidObject)
	require.ErrorIs(t, e.Destroy(id), abi.ErrInvalidObject)
	require.ErrorIs(t, e.Reset(id), abi.ErrInvalidObject)
}

func TestScalarDescriptors(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	id, err := e.Create(configFor(t, "BPF", map[string]any{"xPoints": []float64{0, 1}, "yPoints": []float64{0, 10}}))
	require.NoError(t, err)

	outs, err := e.Compute(id, []abi.Descriptor{{Tag: value.Number, Scalar: 0.25}})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.False(t, outs[0].Blocked())
	assert.InDelta(t, 2.5, outs[0].Scalar, 1e-9)
}

func TestConfigureReleasesOutputs(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	id, err := e.Create(configFor(t, "MovingAverage", map[string]any{"size": 2}))
	require.NoError(t, err)

	outs, err := e.Compute(id, []abi.Descriptor{putReals(t, e, id, []float32{2, 4})})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3}, getReals(t, e, outs[0]))

	require.NoError(t, e.Configure(id, configFor(t, "MovingAverage", map[string]any{"size": 1})))
	assert.Equal(t, 1, e.Live(), "configure keeps the object")
	assert.Equal(t, 1, e.Blocks(), "only the new header remains")

	err = e.Memory().Read(outs[0].Ptr, outs[0].Gen, 0, make([]byte, 4))
	require.ErrorIs(t, err, abi.ErrStale)

	outs, err = e.Compute(id, []abi.Descriptor{putReals(t, e, id, []float32{2, 4})})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4}, getReals(t, e, outs[0]))

	err = e.Configure(id, configFor(t, "HighPass", nil))
	require.ErrorIs(t, err, abi.ErrBadConfig)

	err = e.Configure(id, configFor(t, "MovingAverage", map[string]any{"size": 0}))
	require.ErrorIs(t, err, abi.ErrInvalidParam)

	outs, err = e.Compute(id, []abi.Descriptor{putReals(t, e, id, []float32{2, 4})})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4}, getReals(t, e, outs[0]), "failed configure leaves the object as it was")
}

func TestPassiveAlgorithm(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	id, err := e.Create(configFor(t, "AllPass", nil))
	require.NoError(t, err)
	require.NoError(t, e.Reset(id))
	require.NoError(t, e.Configure(id, configFor(t, "AllPass", map[string]any{"order": 2})))

	_, err = e.Compute(id, nil)
	require.ErrorIs(t, err, abi.ErrNoKernel)
	require.NoError(t, e.Destroy(id))
}

func TestCreateErrors(t *testing.T) {
	t.Parallel()

	e, err := New(WithInitialMemory(64), WithMemoryLimit(64))
	require.NoError(t, err)

	_, err = e.Create([]byte("not msgpack"))
	require.ErrorIs(t, err, abi.ErrBadConfig)

	_, err = e.Create(configFor(t, "HighPass", map[string]any{"cutoffFrequency": 0}))
	require.ErrorIs(t, err, abi.ErrInvalidParam)

	_, err = e.Create(configFor(t, "MFCC", nil))
	require.ErrorIs(t, err, abi.ErrOutOfMemory)
	assert.Equal(t, 0, e.Live(), "a failed create leaves nothing behind")

	_, _, err = e.Memory().Alloc(abi.MakeObjectID(3, 1), 8)
	require.ErrorIs(t, err, abi.ErrInvalidObject)
}

func TestRejectedInputKeepsState(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	id, err := e.Create(configFor(t, "MonoMixer", nil))
	require.NoError(t, err)

	_, err = e.Compute(id, []abi.Descriptor{putReals(t, e, id, []float32{1, 2})})
	require.ErrorIs(t, err, abi.ErrInvalidInput)

	_, err = e.Compute(id, []abi.Descriptor{{Tag: value.RealArray, Ptr: 8, Gen: 999, Len: 2}})
	require.ErrorIs(t, err, abi.ErrStale)

	outs, err := e.Compute(id, []abi.Descriptor{
		putReals(t, e, id, []float32{1, 2}),
		putReals(t, e, id, []float32{3, 4}),
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, getReals(t, e, outs[0]))
}

func TestFailedStoreKeepsState(t *testing.T) {
	t.Parallel()

	cfg := configFor(t, "HighPass", nil)

	sizing, err := New()
	require.NoError(t, err)
	_, err = sizing.Create(cfg)
	require.NoError(t, err)
	header := sizing.Used()

	// room for the header, one 256-sample input and one 8-byte block
	limit := align + header + 256*4 + align
	e, err := New(WithInitialMemory(limit), WithMemoryLimit(limit), WithLogger(discard))
	require.NoError(t, err)
	id, err := e.Create(cfg)
	require.NoError(t, err)

	in := putReals(t, e, id, constant(256, 1))
	_, err = e.Compute(id, []abi.Descriptor{in})
	require.ErrorIs(t, err, abi.ErrOutOfMemory)
	assert.Equal(t, 2, e.Blocks(), "no output survives a failed compute")
	require.NoError(t, e.Memory().Free(in.Ptr, in.Gen))

	outs, err := e.Compute(id, []abi.Descriptor{putReals(t, e, id, []float32{0})})
	require.NoError(t, err)
	assert.Equal(t, []float32{0}, getReals(t, e, outs[0]), "the filter still starts from rest")
}

func TestKernelStateIsCharged(t *testing.T) {
	t.Parallel()

	e, err := New(WithInitialMemory(64<<10), WithMemoryLimit(64<<10))
	require.NoError(t, err)

	_, err = e.Create(configFor(t, "Windowing", map[string]any{"size": 1 << 22}))
	require.ErrorIs(t, err, abi.ErrOutOfMemory)
	_, err = e.Create(configFor(t, "FrameCutter", map[string]any{
		"frameSize": 1e15, "hopSize": 1, "validFrameThresholdRatio": 0,
	}))
	require.ErrorIs(t, err, abi.ErrOutOfMemory)
	_, err = e.Create(configFor(t, "FrameCutter", map[string]any{
		"frameSize": 1e18, "hopSize": 1, "validFrameThresholdRatio": 0,
	}))
	require.ErrorIs(t, err, abi.ErrInvalidParam, "sizes beyond exact integers are refused")
	assert.Zero(t, e.Live())
	assert.Zero(t, e.Used())

	id, err := e.Create(configFor(t, "Windowing", map[string]any{"size": 1024}))
	require.NoError(t, err)
	small := e.Used()
	assert.GreaterOrEqual(t, small, 1024*8, "the window table is charged to the arena")

	require.NoError(t, e.Configure(id, configFor(t, "Windowing", map[string]any{"size": 2048})))
	assert.Equal(t, 1, e.Blocks())
	assert.GreaterOrEqual(t, e.Used()-small, 1024*8)

	err = e.Configure(id, configFor(t, "Windowing", map[string]any{"size": 1 << 22}))
	require.ErrorIs(t, err, abi.ErrOutOfMemory)
	assert.Equal(t, 1, e.Live(), "a failed configure keeps the object")
}

func TestConcurrentObjects(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	const workers = 8
	blob := configFor(t, "Mean", nil)
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			id, err := e.Create(blob)
			if err != nil {
				errs <- err
				return
			}
			defer func() { _ = e.Destroy(id) }()

			for i := range 50 {
				xs := []float32{float32(w), float32(i)}
				mem := e.Memory()
				p, gen, err := mem.Alloc(id, 8)
				if err != nil {
					errs <- err
					return
				}
				if err := mem.Write(p, gen, 0, abi.EncodeReals(nil, xs)); err != nil {
					errs <- err
					return
				}
				outs, err := e.Compute(id, []abi.Descriptor{{Tag: value.RealArray, Ptr: p, Gen: gen, Len: 2, Rows: 1, Cols: 2}})
				if err != nil {
					errs <- err
					return
				}
				if want := float64(w+i) / 2; outs[0].Scalar != want {
					errs <- fmt.Errorf("worker %d step %d: got %v want %v", w, i, outs[0].Scalar, want)
					return
				}
				_ = mem.Free(p, gen)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 0, e.Live())
	assert.Equal(t, 0, e.Blocks())
}
