// SPDX-License-Identifier: EPL-2.0

package schema

import (
	"fmt"
	"slices"
)

// Table maps algorithm names to schemas. It is read-only after NewTable
// returns and safe to share between goroutines.
type Table struct {
	byName map[string]*Schema
	names  []string
}

func NewTable(schemas ...*Schema) (*Table, error) {
	t := &Table{
		byName: make(map[string]*Schema, len(schemas)),
		names:  make([]string, 0, len(schemas)),
	}
	for _, s := range schemas {
		if _, dup := t.byName[s.name]; dup {
			return nil, fmt.Errorf("%w: algorithm %s", ErrDuplicate, s.name)
		}
		t.byName[s.name] = s
		t.names = append(t.names, s.name)
	}
	slices.Sort(t.names)
	return t, nil
}

// Lookup returns the schema registered under name, or an error wrapping
// ErrNotFound.
func (t *Table) Lookup(name string) (*Schema, error) {
	s, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s, nil
}

// Names returns every algorithm name in sorted order.
func (t *Table) Names() []string { return slices.Clone(t.names) }

func (t *Table) Len() int { return len(t.names) }
