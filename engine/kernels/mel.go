// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"math"

	"github.com/ik5/audalg/value"
)

var melScales = map[string]struct {
	toMel, toHz func(float64) float64
}{
	"htkMel": {
		toMel: func(f float64) float64 { return 1127 * math.Log1p(f/700) },
		toHz:  func(m float64) float64 { return 700 * math.Expm1(m/1127) },
	},
	"slaneyMel": {
		toMel: func(f float64) float64 {
			if f < 1000 {
				return f * 3 / 200
			}
			return 15 + math.Log(f/1000)*27/math.Log(6.4)
		},
		toHz: func(m float64) float64 {
			if m < 15 {
				return m * 200 / 3
			}
			return 1000 * math.Exp((m-15)*math.Log(6.4)/27)
		},
	},
}

// melBank is a bank of triangular filters laid out evenly on a mel scale.
type melBank struct {
	inputSize int
	power     bool
	log       bool
	filters   [][]float64
}

func buildMelBank(p *Params) *melBank {
	bands := p.Int("numberBands")
	inputSize := p.Int("inputSize")
	rate := p.Float("sampleRate")
	lo, hi := p.Float("lowFrequencyBound"), p.Float("highFrequencyBound")
	warping := p.OneOf("warpingFormula", "slaneyMel", "htkMel")
	weighting := p.OneOf("weighting", "warping", "linear")
	norm := p.OneOf("normalize", "unit_sum", "unit_tri", "unit_max")
	kind := p.OneOf("type", "magnitude", "power")

	p.Check(bands >= 1, "numberBands must be positive")
	p.Check(inputSize >= 2, "inputSize must be at least 2")
	p.Check(rate > 0, "sampleRate must be positive")
	p.Check(lo >= 0 && lo < hi, "frequency bounds [%v, %v] are not ordered", lo, hi)
	p.Check(hi <= rate/2, "highFrequencyBound %v above Nyquist %v", hi, rate/2)
	p.Reserve(bands+2, 8)
	p.Reserve(inputSize, bands*8)
	if p.Err() != nil {
		return nil
	}

	scale := melScales[warping]
	edges := make([]float64, bands+2)
	mlo, mhi := scale.toMel(lo), scale.toMel(hi)
	for i := range edges {
		edges[i] = mlo + (mhi-mlo)*float64(i)/float64(bands+1)
	}
	// Linear weighting builds the triangles in hertz instead of mels.
	at := func(f float64) float64 { return scale.toMel(f) }
	if weighting == "linear" {
		for i := range edges {
			edges[i] = scale.toHz(edges[i])
		}
		at = func(f float64) float64 { return f }
	}

	binHz := rate / 2 / float64(inputSize-1)
	filters := make([][]float64, bands)
	for b := range filters {
		left, centre, right := edges[b], edges[b+1], edges[b+2]
		w := make([]float64, inputSize)
		var sum float64
		for k := range w {
			x := at(float64(k) * binHz)
			switch {
			case x > left && x <= centre:
				w[k] = (x - left) / (centre - left)
			case x > centre && x < right:
				w[k] = (right - x) / (right - centre)
			}
			sum += w[k]
		}

		switch norm {
		case "unit_sum":
			if sum > 0 {
				for k := range w {
					w[k] /= sum
				}
			}
		case "unit_tri":
			width := scale.toHz(edges[b+2]) - scale.toHz(edges[b])
			if weighting == "linear" {
				width = right - left
			}
			for k := range w {
				w[k] *= 2 / width
			}
		}
		filters[b] = w
	}

	return &melBank{
		inputSize: inputSize,
		power:     kind == "power",
		log:       p.Bool("log"),
		filters:   filters,
	}
}

func (m *melBank) apply(spec []float32) ([]float64, error) {
	if len(spec) != m.inputSize {
		return nil, invalid("spectrum has %d bins, want %d", len(spec), m.inputSize)
	}
	out := make([]float64, len(m.filters))
	for b, w := range m.filters {
		var sum float64
		for k, x := range spec {
			v := float64(x)
			if m.power {
				v *= v
			}
			sum += w[k] * v
		}
		out[b] = sum
	}
	if m.log {
		for i, v := range out {
			out[i] = math.Log2(1 + v)
		}
	}
	return out, nil
}

func (m *melBank) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	spec, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	bands, err := m.apply(spec)
	if err != nil {
		return nil, err
	}
	return one(arr(toFloat32(bands))), nil
}

func (*melBank) Reset() {}

func newMelBands(p *Params) (Kernel, error) {
	m := buildMelBank(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

type mfcc struct {
	bank      *melBank
	dct       *dct
	logType   string
	threshold float64
}

func newMFCC(p *Params) (Kernel, error) {
	logType := p.OneOf("logType", "natural", "dbpow", "dbamp", "log")
	threshold := p.Float("silenceThreshold")
	coeffs := p.Int("numberCoefficients")
	bands := p.Int("numberBands")
	d := &dct{
		typ:       p.Int("dctType"),
		output:    coeffs,
		liftering: p.Float("liftering"),
	}
	p.Check(threshold > 0, "silenceThreshold must be positive")
	p.Check(coeffs >= 1 && coeffs <= bands, "numberCoefficients %d outside [1, %d]", coeffs, bands)
	p.Check(d.typ == 2 || d.typ == 3, "dctType %d not supported", d.typ)
	p.Check(d.liftering >= 0, "liftering must not be negative")
	bank := buildMelBank(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	bank.log = false

	return &mfcc{bank: bank, dct: d, logType: logType, threshold: threshold}, nil
}

func (m *mfcc) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	spec, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}
	bands, err := m.bank.apply(spec)
	if err != nil {
		return nil, err
	}

	logged := make([]float64, len(bands))
	for i, v := range bands {
		v = max(v, m.threshold)
		switch m.logType {
		case "dbpow":
			v = 10 * math.Log10(v)
		case "dbamp":
			v = 20 * math.Log10(v)
		case "log":
			v = math.Log(v)
		}
		logged[i] = v
	}

	return []value.Value{
		arr(toFloat32(bands)),
		arr(toFloat32(m.dct.transform(logged))),
	}, nil
}

func (*mfcc) Reset() {}
