// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"fmt"
	"math"
	"slices"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/value"
)

// Params reads a configuration. The first missing or mistyped parameter is
// remembered and reported by Err, so a factory can read everything it needs
// and check once.
//
// Factories account for the kernel state they are about to allocate with
// Reserve; the total may not exceed the budget the engine grants.
type Params struct {
	m        map[string]value.Value
	budget   int
	reserved int
	err      error
}

// maxExact is the largest magnitude at which every integer is a float64.
const maxExact = 1 << 53

func NewParams(m map[string]value.Value, budget int) *Params {
	return &Params{m: m, budget: max(budget, 0)}
}

func (p *Params) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Params) get(name string) (value.Value, bool) {
	v, ok := p.m[name]
	if !ok {
		p.fail(fmt.Errorf("%w: missing %s", abi.ErrInvalidParam, name))
	}
	return v, ok
}

func (p *Params) Float(name string) float64 {
	v, ok := p.get(name)
	if !ok {
		return 0
	}
	f, err := v.Number()
	if err != nil {
		p.fail(fmt.Errorf("%w: %s: %w", abi.ErrInvalidParam, name, err))
	}
	return f
}

// Int reads a Number that must hold an integer.
func (p *Params) Int(name string) int {
	f := p.Float(name)
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		p.fail(fmt.Errorf("%w: %s = %v is not an integer", abi.ErrInvalidParam, name, f))
		return 0
	}
	if math.Abs(f) > maxExact {
		p.fail(fmt.Errorf("%w: %s = %v is out of range", abi.ErrInvalidParam, name, f))
		return 0
	}
	return int(f)
}

func (p *Params) Bool(name string) bool {
	v, ok := p.get(name)
	if !ok {
		return false
	}
	b, err := v.Bool()
	if err != nil {
		p.fail(fmt.Errorf("%w: %s: %w", abi.ErrInvalidParam, name, err))
	}
	return b
}

func (p *Params) String(name string) string {
	v, ok := p.get(name)
	if !ok {
		return ""
	}
	s, err := v.Text()
	if err != nil {
		p.fail(fmt.Errorf("%w: %s: %w", abi.ErrInvalidParam, name, err))
	}
	return s
}

// OneOf reads a String that must be one of choices.
func (p *Params) OneOf(name string, choices ...string) string {
	s := p.String(name)
	if p.err == nil && !slices.Contains(choices, s) {
		p.fail(fmt.Errorf("%w: %s = %q", abi.ErrInvalidParam, name, s))
	}
	return s
}

func (p *Params) Reals(name string) []float32 {
	v, ok := p.get(name)
	if !ok {
		return nil
	}
	xs, err := v.Reals()
	if err != nil {
		p.fail(fmt.Errorf("%w: %s: %w", abi.ErrInvalidParam, name, err))
	}
	return xs
}

// Check records a range violation when ok is false.
func (p *Params) Check(ok bool, format string, args ...any) {
	if !ok {
		p.fail(fmt.Errorf("%w: "+format, append([]any{abi.ErrInvalidParam}, args...)...))
	}
}

// Reserve accounts for count elements of size bytes of kernel state. It
// records abi.ErrOutOfMemory once the total passes the budget, and does
// nothing after an earlier error so that sizes it sees are already checked.
func (p *Params) Reserve(count, size int) {
	if p.err != nil {
		return
	}
	left := p.budget - p.reserved
	if count < 0 || size < 0 || (size > 0 && count > left/size) {
		p.fail(fmt.Errorf("%w: kernel state of %d x %d bytes exceeds %d available",
			abi.ErrOutOfMemory, count, size, left))
		return
	}
	p.reserved += count * size
}

// Reserved is the state footprint accounted so far.
func (p *Params) Reserved() int { return p.reserved }

// Budget is the most kernel state the engine will hold for this object.
func (p *Params) Budget() int { return p.budget }

func (p *Params) Err() error { return p.err }
