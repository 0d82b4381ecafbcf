// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"math"
	"slices"
	"sort"

	"github.com/ik5/audalg/value"
)

// newBPF is a break-point function: piecewise-linear interpolation through
// (xPoints, yPoints).
func newBPF(p *Params) (Kernel, error) {
	xp, yp := p.Reals("xPoints"), p.Reals("yPoints")
	p.Check(len(xp) >= 2, "need at least 2 points, got %d", len(xp))
	p.Check(len(xp) == len(yp), "xPoints has %d values, yPoints %d", len(xp), len(yp))
	for i := 1; i < len(xp); i++ {
		p.Check(xp[i] > xp[i-1], "xPoints must be strictly increasing")
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	return stateless(func(in []value.Value) ([]value.Value, error) {
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		x, err := numberIn(in, 0)
		if err != nil {
			return nil, err
		}
		if x < float64(xp[0]) || x > float64(xp[len(xp)-1]) {
			return nil, invalid("%v outside [%v, %v]", x, xp[0], xp[len(xp)-1])
		}

		i := sort.Search(len(xp), func(i int) bool { return float64(xp[i]) >= x })
		if i == 0 {
			return one(num(float64(yp[0]))), nil
		}
		x0, x1 := float64(xp[i-1]), float64(xp[i])
		y0, y1 := float64(yp[i-1]), float64(yp[i])
		return one(num(y0 + (y1-y0)*(x-x0)/(x1-x0))), nil
	}), nil
}

type crossSimilarity struct {
	stack      int
	stride     int
	binarize   bool
	percentile float64
}

func newCrossSimilarityMatrix(p *Params) (Kernel, error) {
	c := &crossSimilarity{
		stack:      p.Int("frameStackSize"),
		stride:     p.Int("frameStackStride"),
		binarize:   p.Bool("binarize"),
		percentile: p.Float("binarizePercentile"),
	}
	p.Check(c.stack >= 1, "frameStackSize must be positive")
	p.Check(c.stride >= 1, "frameStackStride must be positive")
	p.Check(c.percentile >= 0 && c.percentile <= 1, "binarizePercentile %v outside [0, 1]", c.percentile)
	p.Reserve(c.stack, 8)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// stacked concatenates each row with the rows stride, 2*stride, ... after
// it, stack rows in all.
func (c *crossSimilarity) stacked(rows, cols int, data []float32) ([][]float64, error) {
	depth := c.stack - 1
	if depth > 0 && c.stride > (rows-1)/depth {
		return nil, invalid("%d rows cannot be stacked %d deep with stride %d", rows, c.stack, c.stride)
	}
	n := rows - depth*c.stride
	out := make([][]float64, n)
	for i := range out {
		v := make([]float64, 0, cols*c.stack)
		for s := range c.stack {
			r := i + s*c.stride
			for _, x := range data[r*cols : (r+1)*cols] {
				v = append(v, float64(x))
			}
		}
		out[i] = v
	}
	return out, nil
}

// percentile interpolates linearly between order statistics.
func percentile(xs []float64, q float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	pos := q * float64(len(s)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(s)-1)
	return s[lo] + (s[hi]-s[lo])*(pos-float64(lo))
}

func (c *crossSimilarity) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 2); err != nil {
		return nil, err
	}
	qr, qc, qd, err := matrixIn(in, 0)
	if err != nil {
		return nil, err
	}
	rr, rc, rd, err := matrixIn(in, 1)
	if err != nil {
		return nil, err
	}
	if qc != rc {
		return nil, invalid("feature sizes differ: %d and %d", qc, rc)
	}
	if qc == 0 {
		return nil, invalid("empty feature matrix")
	}

	query, err := c.stacked(qr, qc, qd)
	if err != nil {
		return nil, err
	}
	ref, err := c.stacked(rr, rc, rd)
	if err != nil {
		return nil, err
	}

	dist := make([][]float64, len(query))
	for i, a := range query {
		dist[i] = make([]float64, len(ref))
		for j, b := range ref {
			var d float64
			for k := range a {
				d += square(a[k] - b[k])
			}
			dist[i][j] = math.Sqrt(d)
		}
	}

	if c.binarize {
		rowT := make([]float64, len(query))
		for i, row := range dist {
			rowT[i] = percentile(row, c.percentile)
		}
		colT := make([]float64, len(ref))
		col := make([]float64, len(query))
		for j := range ref {
			for i := range dist {
				col[i] = dist[i][j]
			}
			colT[j] = percentile(col, c.percentile)
		}
		for i, row := range dist {
			for j, d := range row {
				if d <= rowT[i] && d <= colT[j] {
					row[j] = 1
				} else {
					row[j] = 0
				}
			}
		}
	}

	flat := make([]float32, 0, len(query)*len(ref))
	for _, row := range dist {
		flat = append(flat, toFloat32(row)...)
	}
	m, err := value.NewRealMatrix(len(query), len(ref), flat)
	if err != nil {
		return nil, invalid("%w", err)
	}
	return one(m), nil
}

func (*crossSimilarity) Reset() {}
