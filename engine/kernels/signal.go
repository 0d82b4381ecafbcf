// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"fmt"
	"math"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/utils"
	"github.com/ik5/audalg/value"
)

func newClipper(p *Params) (Kernel, error) {
	lo, hi := p.Float("min"), p.Float("max")
	p.Check(lo <= hi, "min %v above max %v", lo, hi)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return mapper(func(xs []float32) ([]float32, error) {
		ys := make([]float32, len(xs))
		for i, x := range xs {
			ys[i] = float32(min(max(float64(x), lo), hi))
		}
		return ys, nil
	}), nil
}

func newScale(p *Params) (Kernel, error) {
	factor := p.Float("factor")
	limit := p.Float("maxAbsValue")
	clip := p.Bool("clipping")
	p.Check(limit >= 0, "maxAbsValue must not be negative")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return mapper(func(xs []float32) ([]float32, error) {
		ys := make([]float32, len(xs))
		for i, x := range xs {
			y := float64(x) * factor
			if clip {
				y = min(max(y, -limit), limit)
			}
			ys[i] = float32(y)
		}
		return ys, nil
	}), nil
}

var unaryOps = map[string]func(float64) (float64, bool){
	"identity": func(x float64) (float64, bool) { return x, true },
	"abs":      func(x float64) (float64, bool) { return math.Abs(x), true },
	"log10":    positive(math.Log10),
	"log":      positive(math.Log),
	"ln":       positive(math.Log),
	"lin2db":   positive(func(x float64) float64 { return 10 * math.Log10(x) }),
	"db2lin":   func(x float64) (float64, bool) { return math.Pow(10, x/10), true },
	"sin":      func(x float64) (float64, bool) { return math.Sin(x), true },
	"cos":      func(x float64) (float64, bool) { return math.Cos(x), true },
	"sqrt": func(x float64) (float64, bool) {
		return math.Sqrt(x), x >= 0
	},
	"square": func(x float64) (float64, bool) { return x * x, true },
}

func positive(f func(float64) float64) func(float64) (float64, bool) {
	return func(x float64) (float64, bool) { return f(x), x > 0 }
}

func newUnaryOperator(p *Params) (Kernel, error) {
	scale, shift := p.Float("scale"), p.Float("shift")
	kind := p.String("type")
	op, ok := unaryOps[kind]
	p.Check(ok, "unknown operator %q", kind)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return mapper(func(xs []float32) ([]float32, error) {
		ys := make([]float32, len(xs))
		for i, x := range xs {
			y, ok := op(float64(x))
			if !ok {
				return nil, invalid("%s undefined at index %d (%v)", kind, i, x)
			}
			ys[i] = float32(y*scale + shift)
		}
		return ys, nil
	}), nil
}

func newBinaryOperator(p *Params) (Kernel, error) {
	kind := p.OneOf("type", "add", "subtract", "multiply", "divide")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return stateless(func(in []value.Value) ([]value.Value, error) {
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		a, err := realsIn(in, 0)
		if err != nil {
			return nil, err
		}
		b, err := realsIn(in, 1)
		if err != nil {
			return nil, err
		}
		if len(a) != len(b) {
			return nil, invalid("array lengths differ: %d and %d", len(a), len(b))
		}

		out := make([]float32, len(a))
		for i := range a {
			switch kind {
			case "add":
				out[i] = a[i] + b[i]
			case "subtract":
				out[i] = a[i] - b[i]
			case "multiply":
				out[i] = a[i] * b[i]
			case "divide":
				if b[i] == 0 {
					return nil, invalid("division by zero at index %d", i)
				}
				out[i] = a[i] / b[i]
			}
		}
		return one(arr(out)), nil
	}), nil
}

// derivative keeps the last sample so consecutive blocks join seamlessly.
type derivative struct {
	last float32
}

func newDerivative(*Params) (Kernel, error) { return &derivative{}, nil }

func (d *derivative) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	ys := make([]float32, len(xs))
	for i, x := range xs {
		ys[i] = x - d.last
		d.last = x
	}
	return one(arr(ys)), nil
}

func (d *derivative) Reset() { d.last = 0 }

func (d *derivative) Snapshot() func() {
	last := d.last
	return func() { d.last = last }
}

func newTrimmer(p *Params) (Kernel, error) {
	rate := p.Float("sampleRate")
	start, end := p.Float("startTime"), p.Float("endTime")
	check := p.Bool("checkRange")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Check(start >= 0, "startTime must not be negative")
	p.Check(end >= start, "endTime %v before startTime %v", end, start)
	if err := p.Err(); err != nil {
		return nil, err
	}

	first := int(math.Round(min(start*rate, math.MaxInt32)))
	last := int(math.Round(min(end*rate, math.MaxInt32)))

	return mapper(func(xs []float32) ([]float32, error) {
		if check && (first >= len(xs) || last > len(xs)) {
			return nil, invalid("range [%d, %d) outside signal of %d samples", first, last, len(xs))
		}
		lo := min(first, len(xs))
		hi := min(last, len(xs))
		return append([]float32(nil), xs[lo:hi]...), nil
	}), nil
}

type resample struct {
	ratio  float64 // input samples per output sample
	filter bool
	alpha  float64
	limit  int // most output samples the budget allows
}

func newResample(p *Params) (Kernel, error) {
	in, out := p.Float("inputSampleRate"), p.Float("outputSampleRate")
	quality := p.Int("quality")
	p.Check(in > 0 && out > 0, "sample rates must be positive")
	p.Check(quality >= 0 && quality <= 4, "quality %d outside [0, 4]", quality)
	if err := p.Err(); err != nil {
		return nil, err
	}

	r := &resample{ratio: in / out, limit: p.Budget() / 4}
	if r.ratio > 1 {
		// one-pole low-pass with its corner at the output Nyquist frequency
		r.filter = true
		r.alpha = 1 - math.Exp(-2*math.Pi*(out/2)/in)
	}
	return r, nil
}

func (r *resample) process(xs []float32) []float32 {
	if len(xs) == 0 {
		return []float32{}
	}
	if r.ratio == 1 {
		return append([]float32(nil), xs...)
	}

	src := xs
	if r.filter {
		src = make([]float32, len(xs))
		state := float64(xs[0])
		for i, x := range xs {
			state += r.alpha * (float64(x) - state)
			src[i] = float32(state)
		}
	}

	n := int(math.Round(float64(len(src)) / r.ratio))
	ys := make([]float32, n)
	for j := range ys {
		ys[j] = utils.CubicAt(src, float64(j)*r.ratio)
	}
	return ys
}

func (r *resample) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	if want := math.Round(float64(len(xs)) / r.ratio); want > float64(r.limit) {
		return nil, fmt.Errorf("%w: resampling %d samples yields %v", abi.ErrOutOfMemory, len(xs), want)
	}
	return one(arr(r.process(xs))), nil
}

func (*resample) Reset() {}

func newMonoMixer(*Params) (Kernel, error) {
	return stateless(func(in []value.Value) ([]value.Value, error) {
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		l, err := realsIn(in, 0)
		if err != nil {
			return nil, err
		}
		r, err := realsIn(in, 1)
		if err != nil {
			return nil, err
		}
		if len(l) != len(r) {
			return nil, invalid("channel lengths differ: %d and %d", len(l), len(r))
		}
		mono := make([]float32, len(l))
		for i := range l {
			mono[i] = (l[i] + r[i]) / 2
		}
		return one(arr(mono)), nil
	}), nil
}
