// SPDX-License-Identifier: EPL-2.0

package schema

import (
	"fmt"
	"slices"

	"github.com/ik5/audalg/value"
)

// Parameter is one configuration option of an algorithm.
type Parameter struct {
	Name    string
	Tag     value.Tag
	Default value.Value
	// Choices restricts a String parameter to a fixed set. Empty means any
	// string is accepted.
	Choices []string
	Doc     string
}

// Port is a named, typed compute input or output.
type Port struct {
	Name string
	Tag  value.Tag
}

// Reconfigure tells the host how a new configuration reaches an existing
// engine object.
type Reconfigure uint8

const (
	// InPlace re-applies the configuration to the same engine object.
	InPlace Reconfigure = iota
	// Recreate allocates a fresh engine object and releases the old one.
	Recreate
)

// Schema describes one algorithm. It is immutable once built.
type Schema struct {
	name        string
	params      []Parameter
	index       map[string]int
	inputs      []Port
	outputs     []Port
	reconfigure Reconfigure
}

// Def is the input to New.
type Def struct {
	Name        string
	Params      []Parameter
	Inputs      []Port
	Outputs     []Port
	Reconfigure Reconfigure
}

// New validates d and returns the corresponding Schema.
func New(d Def) (*Schema, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: empty algorithm name", ErrInvalidSchema)
	}

	s := &Schema{
		name:        d.Name,
		params:      make([]Parameter, len(d.Params)),
		index:       make(map[string]int, len(d.Params)),
		inputs:      slices.Clone(d.Inputs),
		outputs:     slices.Clone(d.Outputs),
		reconfigure: d.Reconfigure,
	}

	for i, p := range d.Params {
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicate, d.Name, p.Name)
		}
		if !p.Tag.Valid() {
			return nil, fmt.Errorf("%w: %s.%s has tag %s", ErrInvalidSchema, d.Name, p.Name, p.Tag)
		}
		if p.Default.Tag() != p.Tag {
			return nil, fmt.Errorf("%w: %s.%s default is %s, declared %s",
				ErrInvalidSchema, d.Name, p.Name, p.Default.Tag(), p.Tag)
		}
		if len(p.Choices) > 0 {
			if p.Tag != value.String {
				return nil, fmt.Errorf("%w: %s.%s has choices but is %s", ErrInvalidSchema, d.Name, p.Name, p.Tag)
			}
			def, _ := p.Default.Text()
			if !slices.Contains(p.Choices, def) {
				return nil, fmt.Errorf("%w: %s.%s default %q is not a choice", ErrInvalidSchema, d.Name, p.Name, def)
			}
		}
		p.Choices = slices.Clone(p.Choices)
		s.params[i] = p
		s.index[p.Name] = i
	}

	for _, ports := range [][]Port{s.inputs, s.outputs} {
		seen := make(map[string]bool, len(ports))
		for _, p := range ports {
			if !p.Tag.Valid() {
				return nil, fmt.Errorf("%w: %s port %s has tag %s", ErrInvalidSchema, d.Name, p.Name, p.Tag)
			}
			if seen[p.Name] {
				return nil, fmt.Errorf("%w: %s port %s", ErrDuplicate, d.Name, p.Name)
			}
			seen[p.Name] = true
		}
	}

	return s, nil
}

func (s *Schema) Name() string { return s.name }

// Params returns the declared parameters in catalog order.
func (s *Schema) Params() []Parameter { return slices.Clone(s.params) }

// Param looks up a parameter by name.
func (s *Schema) Param(name string) (Parameter, bool) {
	i, ok := s.index[name]
	if !ok {
		return Parameter{}, false
	}
	return s.params[i], true
}

func (s *Schema) Inputs() []Port  { return slices.Clone(s.inputs) }
func (s *Schema) Outputs() []Port { return slices.Clone(s.outputs) }

// Computable reports whether the algorithm declares compute ports.
func (s *Schema) Computable() bool { return len(s.outputs) > 0 }

func (s *Schema) Reconfigure() Reconfigure { return s.reconfigure }
