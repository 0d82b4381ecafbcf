// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/ik5/audalg/value"
)

// fftCache keeps one real FFT plan and rebuilds it when the length changes.
type fftCache struct {
	plan *fourier.FFT
}

func (c *fftCache) get(n int) *fourier.FFT {
	switch {
	case c.plan == nil:
		c.plan = fourier.NewFFT(n)
	case c.plan.Len() != n:
		c.plan.Reset(n)
	}
	return c.plan
}

type spectrum struct {
	fft   fftCache
	power bool
}

func newSpectrum(p *Params) (Kernel, error) {
	size := p.Int("size")
	p.Check(size >= 2, "size must be at least 2")
	// plan twiddles and scratch
	p.Reserve(size, 3*8)
	if err := p.Err(); err != nil {
		return nil, err
	}
	s := &spectrum{}
	s.fft.get(size)
	return s, nil
}

func newPowerSpectrum(p *Params) (Kernel, error) {
	k, err := newSpectrum(p)
	if err != nil {
		return nil, err
	}
	s := k.(*spectrum)
	s.power = true
	return s, nil
}

func (s *spectrum) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 {
		return nil, invalid("frame of %d samples is too short", len(xs))
	}

	coeff := s.fft.get(len(xs)).Coefficients(nil, toFloat64(xs))
	out := make([]float32, len(coeff))
	for i, c := range coeff {
		m := cmplx.Abs(c)
		if s.power {
			m *= m
		}
		out[i] = float32(m)
	}
	return one(arr(out)), nil
}

func (*spectrum) Reset() {}

// cosineSum holds the coefficients of a generalized cosine window.
type cosineSum []float64

func (a cosineSum) apply(seq []float64) []float64 {
	k := 2 * math.Pi / float64(len(seq)-1)
	for i := range seq {
		w, sign := 0.0, 1.0
		for j, c := range a {
			w += sign * c * math.Cos(k*float64(j*i))
			sign = -sign
		}
		seq[i] *= w
	}
	return seq
}

func (a cosineSum) round(decimals int) cosineSum {
	scale := math.Pow(10, float64(decimals))
	out := make(cosineSum, len(a))
	for i, c := range a {
		out[i] = math.Round(c*scale) / scale
	}
	return out
}

var windowSums = map[string]cosineSum{
	"hamming":          {0.53836, 0.46164},
	"blackmanharris62": {0.44959, 0.49364, 0.05677},
	"blackmanharris70": {0.42323, 0.49755, 0.07922},
	"blackmanharris74": {0.40217, 0.49703, 0.09892, 0.00188},
}

type windowing struct {
	shape     func([]float64) []float64
	symmetric bool
	normalize bool
	zeroPhase bool
	split     bool
	padding   int

	win []float64
}

func newWindowing(p *Params) (Kernel, error) {
	kind := p.OneOf("type", "hamming", "hann", "triangular", "square",
		"blackmanharris62", "blackmanharris70", "blackmanharris74", "blackmanharris92")
	size := p.Int("size")
	decimals := p.Int("constantsDecimals")
	w := &windowing{
		symmetric: p.Bool("symmetric"),
		normalize: p.Bool("normalized"),
		zeroPhase: p.Bool("zeroPhase"),
		split:     p.Bool("splitPadding"),
		padding:   p.Int("zeroPadding"),
	}
	p.Check(size >= 2, "size must be at least 2")
	p.Check(w.padding >= 0, "zeroPadding must not be negative")
	p.Check(decimals >= 1 && decimals <= 10, "constantsDecimals %d outside [1, 10]", decimals)
	p.Reserve(size+1, 8)
	p.Reserve(w.padding, 4)
	if err := p.Err(); err != nil {
		return nil, err
	}

	switch kind {
	case "hann":
		w.shape = window.Hann
	case "triangular":
		w.shape = window.Triangular
	case "square":
		w.shape = window.Rectangular
	case "blackmanharris92":
		w.shape = window.BlackmanHarris
	default:
		w.shape = windowSums[kind].round(decimals).apply
	}
	w.build(size)
	return w, nil
}

func (w *windowing) build(n int) {
	points := n
	if !w.symmetric {
		points++
	}
	seq := make([]float64, points)
	for i := range seq {
		seq[i] = 1
	}
	if points > 1 {
		seq = w.shape(seq)
	}
	seq = seq[:n]

	if w.normalize {
		var sum float64
		for _, v := range seq {
			sum += v
		}
		if sum != 0 {
			for i := range seq {
				seq[i] *= 2 / sum
			}
		}
	}
	w.win = seq
}

func (w *windowing) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 {
		return nil, invalid("frame of %d samples is too short", len(xs))
	}
	if len(xs) != len(w.win) {
		w.build(len(xs))
	}

	n := len(xs)
	windowed := make([]float32, n)
	for i, x := range xs {
		windowed[i] = float32(float64(x) * w.win[i])
	}

	out := make([]float32, n+w.padding)
	switch {
	case w.zeroPhase:
		half := n / 2
		copy(out, windowed[half:])
		copy(out[len(out)-half:], windowed[:half])
	case w.split:
		head := (n + 1) / 2
		copy(out, windowed[:head])
		copy(out[len(out)-(n-head):], windowed[head:])
	default:
		copy(out, windowed)
	}
	return one(arr(out)), nil
}

func (*windowing) Reset() {}

type dct struct {
	typ       int
	output    int
	liftering float64
}

func newDCT(p *Params) (Kernel, error) {
	d := &dct{
		typ:       p.Int("dctType"),
		output:    p.Int("outputSize"),
		liftering: p.Float("liftering"),
	}
	inSize := p.Int("inputSize")
	p.Check(d.typ == 2 || d.typ == 3, "dctType %d not supported", d.typ)
	p.Check(d.output >= 1, "outputSize must be positive")
	p.Check(d.output <= inSize, "outputSize %d above inputSize %d", d.output, inSize)
	p.Check(d.liftering >= 0, "liftering must not be negative")
	p.Reserve(d.output, 8)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// transform is an orthonormal DCT-II, or its inverse DCT-III.
func (d *dct) transform(xs []float64) []float64 {
	n := float64(len(xs))
	scale := math.Sqrt(2 / n)
	out := make([]float64, d.output)

	for k := range out {
		var sum float64
		for i, x := range xs {
			if d.typ == 2 {
				sum += x * math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*n))
				continue
			}
			c := x * math.Cos(math.Pi*float64(i)*(2*float64(k)+1)/(2*n))
			if i == 0 {
				c /= math.Sqrt2
			}
			sum += c
		}
		out[k] = sum * scale
	}
	if d.typ == 2 {
		out[0] /= math.Sqrt2
	}

	if d.liftering > 0 {
		for k := range out {
			out[k] *= 1 + d.liftering/2*math.Sin(math.Pi*float64(k)/d.liftering)
		}
	}
	return out
}

func (d *dct) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := nonEmpty(in, 0)
	if err != nil {
		return nil, err
	}
	if len(xs) < d.output {
		return nil, invalid("input of %d values is shorter than outputSize %d", len(xs), d.output)
	}
	return one(arr(toFloat32(d.transform(toFloat64(xs))))), nil
}

func (*dct) Reset() {}

type autoCorrelation struct {
	fft         fftCache
	unbiased    bool
	generalized bool
	compression float64
}

func newAutoCorrelation(p *Params) (Kernel, error) {
	a := &autoCorrelation{
		unbiased:    p.OneOf("normalization", "standard", "unbiased") == "unbiased",
		generalized: p.Bool("generalized"),
		compression: p.Float("frequencyDomainCompression"),
	}
	p.Check(a.compression > 0, "frequencyDomainCompression must be positive")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (a *autoCorrelation) process(xs []float32) []float32 {
	n := len(xs)
	size := nextPow2(2 * n)
	seq := make([]float64, size)
	for i, x := range xs {
		seq[i] = float64(x)
	}

	plan := a.fft.get(size)
	coeff := plan.Coefficients(nil, seq)
	for i, c := range coeff {
		m := cmplx.Abs(c)
		if a.generalized {
			coeff[i] = complex(math.Pow(m, a.compression), 0)
		} else {
			coeff[i] = complex(m*m, 0)
		}
	}
	corr := plan.Sequence(nil, coeff)

	out := make([]float32, n)
	for k := range out {
		r := corr[k] / float64(size)
		if a.unbiased {
			r /= float64(n - k)
		}
		out[k] = float32(r)
	}
	return out
}

func (a *autoCorrelation) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := nonEmpty(in, 0)
	if err != nil {
		return nil, err
	}
	return one(arr(a.process(xs))), nil
}

func (*autoCorrelation) Reset() {}

type lpc struct {
	order  int
	warped bool
	lambda float64
}

func newLPC(p *Params) (Kernel, error) {
	l := &lpc{
		order:  p.Int("order"),
		warped: p.OneOf("type", "regular", "warped") == "warped",
	}
	rate := p.Float("sampleRate")
	p.Check(l.order >= 2, "order must be at least 2")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Reserve(l.order+1, 4*8)
	if err := p.Err(); err != nil {
		return nil, err
	}
	// Bark-scale warping factor (Smith and Abel).
	l.lambda = 1.0674*math.Sqrt(2/math.Pi*math.Atan(0.06583*rate/1000)) - 0.1916
	return l, nil
}

func (l *lpc) correlate(xs []float64) []float64 {
	r := make([]float64, l.order+1)
	if !l.warped {
		for k := range r {
			for i := k; i < len(xs); i++ {
				r[k] += xs[i] * xs[i-k]
			}
		}
		return r
	}

	// warped autocorrelation: correlate against successive all-pass outputs
	tmp := append([]float64(nil), xs...)
	for k := range r {
		for i, x := range xs {
			r[k] += x * tmp[i]
		}
		var prevIn, prevOut float64
		for i, v := range tmp {
			out := -l.lambda*v + prevIn + l.lambda*prevOut
			prevIn, prevOut = v, out
			tmp[i] = out
		}
	}
	return r
}

// levinson solves the normal equations for the prediction polynomial.
func levinson(r []float64, order int) (a, k []float64) {
	a = make([]float64, order+1)
	k = make([]float64, order)
	a[0] = 1
	if r[0] == 0 {
		return a, k
	}

	e := r[0]
	tmp := make([]float64, order+1)
	for i := 1; i <= order; i++ {
		acc := r[i]
		for j := 1; j < i; j++ {
			acc += a[j] * r[i-j]
		}
		ki := -acc / e
		k[i-1] = ki

		copy(tmp, a)
		for j := 1; j < i; j++ {
			a[j] = tmp[j] + ki*tmp[i-j]
		}
		a[i] = ki
		e *= 1 - ki*ki
		if e <= 0 {
			break
		}
	}
	return a, k
}

func (l *lpc) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	if len(xs) <= l.order {
		return nil, invalid("frame of %d samples too short for order %d", len(xs), l.order)
	}
	a, k := levinson(l.correlate(toFloat64(xs)), l.order)
	return []value.Value{arr(toFloat32(a)), arr(toFloat32(k))}, nil
}

func (*lpc) Reset() {}

// flux remembers the previous spectrum; a size change starts over from
// silence.
type flux struct {
	l1      bool
	rectify bool
	prev    []float32
}

func newFlux(p *Params) (Kernel, error) {
	f := &flux{
		l1:      p.OneOf("norm", "L1", "L2") == "L1",
		rectify: p.Bool("halfRectify"),
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *flux) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	if len(f.prev) != len(xs) {
		f.prev = make([]float32, len(xs))
	}

	var sum float64
	for i, x := range xs {
		d := float64(x - f.prev[i])
		if f.rectify && d < 0 {
			continue
		}
		if f.l1 {
			sum += math.Abs(d)
		} else {
			sum += d * d
		}
	}
	if !f.l1 {
		sum = math.Sqrt(sum)
	}
	f.prev = xs
	return one(num(sum)), nil
}

func (f *flux) Reset() { f.prev = nil }

// Snapshot keeps the previous spectrum by reference; Compute replaces it
// rather than writing into it.
func (f *flux) Snapshot() func() {
	prev := f.prev
	return func() { f.prev = prev }
}
