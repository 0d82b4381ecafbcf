// SPDX-License-Identifier: EPL-2.0

package algorithm

import (
	"fmt"
	"slices"

	"github.com/ik5/audalg/schema"
	"github.com/ik5/audalg/value"
)

// Result holds the outputs of one Compute call in port order. The values are
// host copies and stay valid after the handle is reconfigured or disposed.
type Result struct {
	ports  []schema.Port
	values []value.Value
}

func (r Result) Len() int { return len(r.values) }

// At returns output i in port order.
func (r Result) At(i int) value.Value { return r.values[i] }

// Get returns the output on the named port.
func (r Result) Get(port string) (value.Value, bool) {
	i := slices.IndexFunc(r.ports, func(p schema.Port) bool { return p.Name == port })
	if i < 0 {
		return value.Value{}, false
	}
	return r.values[i], true
}

// Reals is a shortcut for a RealArray output.
func (r Result) Reals(port string) ([]float32, error) {
	v, ok := r.Get(port)
	if !ok {
		return nil, fmt.Errorf("no output port %q", port)
	}
	return v.Reals()
}

// Number is a shortcut for a Number output.
func (r Result) Number(port string) (float64, error) {
	v, ok := r.Get(port)
	if !ok {
		return 0, fmt.Errorf("no output port %q", port)
	}
	return v.Number()
}

func (r Result) Ports() []schema.Port { return slices.Clone(r.ports) }

func (r Result) Values() []value.Value { return slices.Clone(r.values) }
