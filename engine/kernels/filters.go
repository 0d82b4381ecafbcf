// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"math"
	"slices"

	"github.com/ik5/audalg/value"
)

// iir is a transposed direct form II filter. Coefficients are normalized so
// a[0] == 1 and both slices have the same length. The delay line survives
// between Compute calls until Reset.
type iir struct {
	b, a  []float64
	state []float64
}

func newIIR(p *Params, b, a []float64) (*iir, error) {
	p.Check(len(b) > 0, "numerator is empty")
	p.Check(len(a) > 0, "denominator is empty")
	if err := p.Err(); err != nil {
		return nil, err
	}
	p.Check(a[0] != 0, "first denominator coefficient is zero")
	if err := p.Err(); err != nil {
		return nil, err
	}

	n := max(len(a), len(b))
	p.Reserve(n, 3*8)
	if err := p.Err(); err != nil {
		return nil, err
	}
	f := &iir{
		b:     make([]float64, n),
		a:     make([]float64, n),
		state: make([]float64, n-1),
	}
	for i, c := range b {
		f.b[i] = c / a[0]
	}
	for i, c := range a {
		f.a[i] = c / a[0]
	}
	return f, nil
}

func (f *iir) process(xs []float32) []float32 {
	ys := make([]float32, len(xs))
	n := len(f.state)

	for i, xf := range xs {
		x := float64(xf)
		y := f.b[0]*x
		if n > 0 {
			y += f.state[0]
			for k := 0; k < n-1; k++ {
				f.state[k] = f.b[k+1]*x - f.a[k+1]*y + f.state[k+1]
			}
			f.state[n-1] = f.b[n]*x - f.a[n]*y
		}
		ys[i] = float32(y)
	}
	return ys
}

func (f *iir) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	return one(arr(f.process(xs))), nil
}

func (f *iir) Reset() { clear(f.state) }

func (f *iir) Snapshot() func() {
	saved := slices.Clone(f.state)
	return func() { copy(f.state, saved) }
}

// cutoff reads and checks a frequency against the Nyquist limit.
func cutoff(p *Params, name string) (freq, rate float64) {
	freq = p.Float(name)
	rate = p.Float("sampleRate")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Check(freq > 0 && freq < rate/2, "%s %v outside (0, %v)", name, freq, rate/2)
	return freq, rate
}

// allpassCoef is the first-order all-pass coefficient for a corner frequency.
func allpassCoef(freq, rate float64) float64 {
	t := math.Tan(math.Pi * freq / rate)
	return (t - 1) / (t + 1)
}

func newHighPass(p *Params) (Kernel, error) {
	fc, fs := cutoff(p, "cutoffFrequency")
	if err := p.Err(); err != nil {
		return nil, err
	}
	c := allpassCoef(fc, fs)
	return newIIR(p, []float64{(1 - c) / 2, (c - 1) / 2}, []float64{1, c})
}

func newLowPass(p *Params) (Kernel, error) {
	fc, fs := cutoff(p, "cutoffFrequency")
	if err := p.Err(); err != nil {
		return nil, err
	}
	c := allpassCoef(fc, fs)
	return newIIR(p, []float64{(1 + c) / 2, (1 + c) / 2}, []float64{1, c})
}

// secondOrder returns the bandwidth coefficient c and the centre term d of
// the second-order all-pass used by BandPass and BandReject.
func secondOrder(p *Params) (c, d float64) {
	fc, fs := cutoff(p, "cutoffFrequency")
	bw := p.Float("bandwidth")
	p.Check(bw > 0 && bw < fs/2, "bandwidth %v outside (0, %v)", bw, fs/2)
	c = allpassCoef(bw, fs)
	d = -math.Cos(2 * math.Pi * fc / fs)
	return c, d
}

func newBandPass(p *Params) (Kernel, error) {
	c, d := secondOrder(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return newIIR(p,
		[]float64{(1 + c) / 2, 0, -(1 + c) / 2},
		[]float64{1, d * (1 - c), -c})
}

func newBandReject(p *Params) (Kernel, error) {
	c, d := secondOrder(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return newIIR(p,
		[]float64{(1 - c) / 2, d * (1 - c), (1 - c) / 2},
		[]float64{1, d * (1 - c), -c})
}

// newDCRemoval is a one-pole DC blocker: y[n] = g*(x[n]-x[n-1]) + R*y[n-1].
func newDCRemoval(p *Params) (Kernel, error) {
	fc, fs := cutoff(p, "cutoffFrequency")
	if err := p.Err(); err != nil {
		return nil, err
	}
	r := math.Exp(-2 * math.Pi * fc / fs)
	g := (1 + r) / 2
	return newIIR(p, []float64{g, -g}, []float64{1, -r})
}

func newIIRKernel(p *Params) (Kernel, error) {
	b := p.Reals("numerator")
	a := p.Reals("denominator")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return newIIR(p, toFloat64(b), toFloat64(a))
}

func newMovingAverage(p *Params) (Kernel, error) {
	size := p.Int("size")
	p.Check(size >= 1, "size must be at least 1")
	p.Reserve(size, 8)
	if err := p.Err(); err != nil {
		return nil, err
	}
	b := make([]float64, size)
	for i := range b {
		b[i] = 1 / float64(size)
	}
	return newIIR(p, b, []float64{1})
}

type envelope struct {
	rectify bool
	attack  float64
	release float64
	last    float64
}

// smoothing turns a time constant in milliseconds into a one-pole
// coefficient. Zero means no smoothing.
func smoothing(ms, rate float64) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-1 / (ms / 1000 * rate))
}

func newEnvelope(p *Params) (Kernel, error) {
	rate := p.Float("sampleRate")
	attack := p.Float("attackTime")
	release := p.Float("releaseTime")
	rectify := p.Bool("applyRectification")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Check(attack >= 0 && release >= 0, "attack and release times must not be negative")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return &envelope{
		rectify: rectify,
		attack:  smoothing(attack, rate),
		release: smoothing(release, rate),
	}, nil
}

func (e *envelope) process(xs []float32) []float32 {
	ys := make([]float32, len(xs))
	for i, xf := range xs {
		x := float64(xf)
		if e.rectify {
			x = math.Abs(x)
		}
		g := e.release
		if x > e.last {
			g = e.attack
		}
		e.last = g*e.last + (1-g)*x
		ys[i] = float32(e.last)
	}
	return ys
}

func (e *envelope) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	return one(arr(e.process(xs))), nil
}

func (e *envelope) Reset() { e.last = 0 }

func (e *envelope) Snapshot() func() {
	last := e.last
	return func() { e.last = last }
}
