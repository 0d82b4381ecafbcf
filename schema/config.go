// SPDX-License-Identifier: EPL-2.0

package schema

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/ik5/audalg/value"
)

// ConfigSet is a fully resolved configuration: exactly one value for every
// parameter its schema declares, in declaration order.
type ConfigSet struct {
	algorithm string
	names     []string
	values    []value.Value
}

func (c ConfigSet) Algorithm() string { return c.algorithm }
func (c ConfigSet) Len() int          { return len(c.names) }

// Get returns the resolved value of a parameter.
func (c ConfigSet) Get(name string) (value.Value, bool) {
	i := slices.Index(c.names, name)
	if i < 0 {
		return value.Value{}, false
	}
	return c.values[i], true
}

// All iterates parameters in declaration order.
func (c ConfigSet) All() iter.Seq2[string, value.Value] {
	return func(yield func(string, value.Value) bool) {
		for i, n := range c.names {
			if !yield(n, c.values[i]) {
				return
			}
		}
	}
}

// Map returns the configuration as a fresh map.
func (c ConfigSet) Map() map[string]value.Value {
	m := make(map[string]value.Value, len(c.names))
	for i, n := range c.names {
		m[n] = c.values[i]
	}
	return m
}

// Defaults is the configuration obtained with no overrides.
func (s *Schema) Defaults() ConfigSet {
	c := ConfigSet{
		algorithm: s.name,
		names:     make([]string, len(s.params)),
		values:    make([]value.Value, len(s.params)),
	}
	for i, p := range s.params {
		c.names[i] = p.Name
		c.values[i] = p.Default
	}
	return c
}

// Resolve merges opts over the schema defaults. Every key in opts must name a
// declared parameter and convert to that parameter's tag. Resolve always
// starts from the defaults; it never looks at an earlier configuration.
func (s *Schema) Resolve(opts map[string]any) (ConfigSet, error) {
	c := s.Defaults()

	// sorted so the first reported problem does not depend on map order
	for _, key := range slices.Sorted(maps.Keys(opts)) {
		i, ok := s.index[key]
		if !ok {
			return ConfigSet{}, fmt.Errorf("%w: %s has no option %q", ErrConfiguration, s.name, key)
		}
		p := s.params[i]

		v, err := value.Of(opts[key])
		if err != nil {
			return ConfigSet{}, fmt.Errorf("%w: %s.%s: %w", ErrConfiguration, s.name, key, err)
		}
		if v.Tag() != p.Tag {
			return ConfigSet{}, fmt.Errorf("%w: %s.%s expects %s, got %s",
				ErrConfiguration, s.name, key, p.Tag, v.Tag())
		}
		if len(p.Choices) > 0 {
			str, _ := v.Text()
			if !slices.Contains(p.Choices, str) {
				return ConfigSet{}, fmt.Errorf("%w: %s.%s = %q, want one of %v",
					ErrConfiguration, s.name, key, str, p.Choices)
			}
		}
		c.values[i] = v
	}

	return c, nil
}
