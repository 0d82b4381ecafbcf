// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"math"
	"slices"

	"github.com/ik5/audalg/value"
)

func sum(xs []float32, f func(float64) float64) float64 {
	var s float64
	for _, x := range xs {
		s += f(float64(x))
	}
	return s
}

func square(x float64) float64 { return x * x }
func ident(x float64) float64  { return x }

func nonNegative(xs []float32) error {
	for i, x := range xs {
		if x < 0 {
			return invalid("negative value %v at index %d", x, i)
		}
	}
	return nil
}

func mean(xs []float32) float64 { return sum(xs, ident) / float64(len(xs)) }

func newMean(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) { return mean(xs), nil }), nil
}

func newMedian(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		s := slices.Clone(xs)
		slices.Sort(s)
		n := len(s)
		if n%2 == 1 {
			return float64(s[n/2]), nil
		}
		return (float64(s[n/2-1]) + float64(s[n/2])) / 2, nil
	}), nil
}

func variance(xs []float32) float64 {
	m := mean(xs)
	return sum(xs, func(x float64) float64 { return square(x - m) }) / float64(len(xs))
}

func newVariance(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) { return variance(xs), nil }), nil
}

func newRMS(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		return math.Sqrt(sum(xs, square) / float64(len(xs))), nil
	}), nil
}

func newEnergy(*Params) (Kernel, error) {
	return reducer(true, func(xs []float32) (float64, error) { return sum(xs, square), nil }), nil
}

func newInstantPower(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		return sum(xs, square) / float64(len(xs)), nil
	}), nil
}

func geometricMean(xs []float32) (float64, error) {
	if err := nonNegative(xs); err != nil {
		return 0, err
	}
	var logs float64
	for _, x := range xs {
		if x == 0 {
			return 0, nil
		}
		logs += math.Log(float64(x))
	}
	return math.Exp(logs / float64(len(xs))), nil
}

func newGeometricMean(*Params) (Kernel, error) {
	return reducer(false, geometricMean), nil
}

func powerMean(xs []float32, power float64) (float64, error) {
	if power == 0 {
		return geometricMean(xs)
	}
	if err := nonNegative(xs); err != nil {
		return 0, err
	}
	m := sum(xs, func(x float64) float64 { return math.Pow(x, power) }) / float64(len(xs))
	return math.Pow(m, 1/power), nil
}

func newPowerMean(p *Params) (Kernel, error) {
	power := p.Float("power")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) { return powerMean(xs, power) }), nil
}

// newCrest is the peak over the mean of a non-negative array; zero for
// silence.
func newCrest(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		if err := nonNegative(xs); err != nil {
			return 0, err
		}
		m := mean(xs)
		if m == 0 {
			return 0, nil
		}
		return float64(slices.Max(xs)) / m, nil
	}), nil
}

func newFlatness(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		g, err := geometricMean(xs)
		if err != nil || g == 0 {
			return 0, err
		}
		return g / mean(xs), nil
	}), nil
}

func newEntropy(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		if err := nonNegative(xs); err != nil {
			return 0, err
		}
		total := sum(xs, ident)
		if total == 0 {
			return 0, nil
		}
		var h float64
		for _, x := range xs {
			if x == 0 {
				continue
			}
			p := float64(x) / total
			h -= p * math.Log2(p)
		}
		return h, nil
	}), nil
}

func rangeParam(p *Params) float64 {
	r := p.Float("range")
	p.Check(r > 0, "range must be positive")
	return r
}

// positions spreads n points evenly over [0, r].
func positions(n int, r float64) []float64 {
	pos := make([]float64, n)
	if n < 2 {
		return pos
	}
	for i := range pos {
		pos[i] = float64(i) * r / float64(n-1)
	}
	return pos
}

func newCentroid(p *Params) (Kernel, error) {
	r := rangeParam(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		total := sum(xs, ident)
		if total == 0 {
			return 0, nil
		}
		var weighted float64
		for i, x := range positions(len(xs), r) {
			weighted += x * float64(xs[i])
		}
		return weighted / total, nil
	}), nil
}

// newDecrease is the least-squares slope of the array over [0, range].
func newDecrease(p *Params) (Kernel, error) {
	r := rangeParam(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		if len(xs) < 2 {
			return 0, nil
		}
		pos := positions(len(xs), r)
		var mx float64
		for _, x := range pos {
			mx += x
		}
		mx /= float64(len(pos))
		my := mean(xs)

		var cov, spread float64
		for i, x := range pos {
			cov += (x - mx) * (float64(xs[i]) - my)
			spread += square(x - mx)
		}
		return cov / spread, nil
	}), nil
}

func newMinMax(p *Params) (Kernel, error) {
	wantMax := p.OneOf("type", "min", "max") == "max"
	if err := p.Err(); err != nil {
		return nil, err
	}
	return stateless(func(in []value.Value) ([]value.Value, error) {
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		xs, err := nonEmpty(in, 0)
		if err != nil {
			return nil, err
		}
		best := 0
		for i, x := range xs {
			if (wantMax && x > xs[best]) || (!wantMax && x < xs[best]) {
				best = i
			}
		}
		return []value.Value{num(float64(xs[best])), num(float64(best))}, nil
	}), nil
}

func newCentralMoments(p *Params) (Kernel, error) {
	pdf := p.OneOf("mode", "pdf", "sample") == "pdf"
	r := rangeParam(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return mapper(func(xs []float32) ([]float32, error) {
		if len(xs) < 2 {
			return nil, invalid("need at least 2 values, got %d", len(xs))
		}
		out := make([]float64, 5)

		if !pdf {
			m := mean(xs)
			for k := 2; k < len(out); k++ {
				out[k] = sum(xs, func(x float64) float64 { return math.Pow(x-m, float64(k)) }) / float64(len(xs))
			}
			out[0] = 1
			return toFloat32(out), nil
		}

		total := sum(xs, ident)
		if total == 0 {
			return toFloat32(out), nil
		}
		pos := positions(len(xs), r)
		var centroid float64
		for i, x := range pos {
			centroid += x * float64(xs[i])
		}
		centroid /= total
		for k := 2; k < len(out); k++ {
			var acc float64
			for i, x := range pos {
				acc += math.Pow(x-centroid, float64(k)) * float64(xs[i])
			}
			out[k] = acc / total
		}
		out[0] = 1
		return toFloat32(out), nil
	}), nil
}

// newZeroCrossingRate counts sign changes, ignoring samples within
// threshold of zero, per sample.
func newZeroCrossingRate(p *Params) (Kernel, error) {
	threshold := math.Abs(p.Float("threshold"))
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		var (
			count int
			last  int
		)
		for _, x := range xs {
			v := float64(x)
			if math.Abs(v) <= threshold {
				continue
			}
			sign := 1
			if v < 0 {
				sign = -1
			}
			if last != 0 && sign != last {
				count++
			}
			last = sign
		}
		return float64(count) / float64(len(xs)), nil
	}), nil
}

// silenceFloor keeps decibel readings finite.
const silenceFloor = 1e-10

func newLeq(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		return 10 * math.Log10(max(sum(xs, square)/float64(len(xs)), silenceFloor)), nil
	}), nil
}

func newLoudness(*Params) (Kernel, error) {
	return reducer(true, func(xs []float32) (float64, error) {
		return math.Pow(sum(xs, square), 0.67), nil
	}), nil
}

func newLarm(p *Params) (Kernel, error) {
	rate := p.Float("sampleRate")
	attack, release := p.Float("attackTime"), p.Float("releaseTime")
	power := p.Float("power")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Check(attack >= 0 && release >= 0, "attack and release times must not be negative")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		env := &envelope{
			rectify: true,
			attack:  smoothing(attack, rate),
			release: smoothing(release, rate),
		}
		pm, err := powerMean(env.process(xs), power)
		if err != nil {
			return 0, err
		}
		return 20 * math.Log10(max(pm, silenceFloor)), nil
	}), nil
}

// binFreq is the frequency of bin k in a spectrum of n bins.
func binFreq(k, n int, rate float64) float64 {
	if n < 2 {
		return 0
	}
	return float64(k) * rate / 2 / float64(n-1)
}

func newHFC(p *Params) (Kernel, error) {
	rate := p.Float("sampleRate")
	kind := p.OneOf("type", "Masri", "Jensen", "Brossier")
	p.Check(rate > 0, "sampleRate must be positive")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		var h float64
		for k, x := range xs {
			f, v := binFreq(k, len(xs), rate), float64(x)
			switch kind {
			case "Masri":
				h += f * v * v
			case "Jensen":
				h += f * f * v
			case "Brossier":
				h += f * v
			}
		}
		return h, nil
	}), nil
}

func newRollOff(p *Params) (Kernel, error) {
	rate := p.Float("sampleRate")
	cutoff := p.Float("cutoff")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Check(cutoff > 0 && cutoff < 1, "cutoff %v outside (0, 1)", cutoff)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		target := cutoff * sum(xs, square)
		var acc float64
		for k, x := range xs {
			acc += square(float64(x))
			if acc >= target {
				return binFreq(k, len(xs), rate), nil
			}
		}
		return 0, nil
	}), nil
}

func newMaxMagFreq(p *Params) (Kernel, error) {
	rate := p.Float("sampleRate")
	p.Check(rate > 0, "sampleRate must be positive")
	if err := p.Err(); err != nil {
		return nil, err
	}
	return reducer(false, func(xs []float32) (float64, error) {
		if len(xs) < 2 {
			return 0, invalid("spectrum of %d bins is too short", len(xs))
		}
		return binFreq(indexOfMax(xs), len(xs), rate), nil
	}), nil
}

func indexOfMax(xs []float32) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// newStrongPeak is the peak over the log-width of the bins around it that
// stay above half the peak.
func newStrongPeak(*Params) (Kernel, error) {
	return reducer(false, func(xs []float32) (float64, error) {
		if err := nonNegative(xs); err != nil {
			return 0, err
		}
		peak := indexOfMax(xs)
		top := float64(xs[peak])
		if top == 0 {
			return 0, nil
		}
		half := xs[peak] / 2
		lo, hi := peak, peak
		for lo > 0 && xs[lo-1] >= half {
			lo--
		}
		for hi < len(xs)-1 && xs[hi+1] >= half {
			hi++
		}
		width := math.Log10(float64(hi+1) / float64(max(lo, 1)))
		if width <= 0 {
			return 0, nil
		}
		return top / width, nil
	}), nil
}
