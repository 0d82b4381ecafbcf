// SPDX-License-Identifier: EPL-2.0

package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audalg/value"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return Load(bytes.NewReader(embeddedCatalog))
})

// Default returns the process-wide table built from the embedded catalog.
// It is parsed once, on first use.
func Default() *Table {
	t, err := defaultTable()
	if err != nil {
		panic(fmt.Sprintf("schema: embedded catalog: %v", err))
	}
	return t
}

type catalogEntry struct {
	Name        string       `yaml:"name"`
	Reconfigure string       `yaml:"reconfigure"`
	Params      []paramEntry `yaml:"params"`
	Inputs      []portEntry  `yaml:"inputs"`
	Outputs     []portEntry  `yaml:"outputs"`
}

type paramEntry struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Default yaml.Node `yaml:"default"`
	Choices []string  `yaml:"choices"`
	Doc     string    `yaml:"doc"`
}

type portEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Load parses a YAML catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var entries []catalogEntry
	if err := dec.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	schemas := make([]*Schema, 0, len(entries))
	for _, e := range entries {
		s, err := e.schema()
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}

	return NewTable(schemas...)
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer f.Close()

	return Load(f)
}

func (e catalogEntry) schema() (*Schema, error) {
	d := Def{Name: e.Name}

	switch e.Reconfigure {
	case "", "inplace":
		d.Reconfigure = InPlace
	case "recreate":
		d.Reconfigure = Recreate
	default:
		return nil, fmt.Errorf("%w: %s: reconfigure %q", ErrInvalidSchema, e.Name, e.Reconfigure)
	}

	for _, pe := range e.Params {
		tag, err := value.ParseTag(pe.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidSchema, e.Name, pe.Name, err)
		}
		def, err := decodeDefault(tag, &pe.Default)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s default: %w", ErrInvalidSchema, e.Name, pe.Name, err)
		}
		d.Params = append(d.Params, Parameter{
			Name:    pe.Name,
			Tag:     tag,
			Default: def,
			Choices: pe.Choices,
			Doc:     pe.Doc,
		})
	}

	var err error
	if d.Inputs, err = ports(e.Name, e.Inputs); err != nil {
		return nil, err
	}
	if d.Outputs, err = ports(e.Name, e.Outputs); err != nil {
		return nil, err
	}

	return New(d)
}

func ports(algo string, entries []portEntry) ([]Port, error) {
	out := make([]Port, 0, len(entries))
	for _, pe := range entries {
		tag, err := value.ParseTag(pe.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s port %s: %w", ErrInvalidSchema, algo, pe.Name, err)
		}
		out = append(out, Port{Name: pe.Name, Tag: tag})
	}
	return out, nil
}

func decodeDefault(tag value.Tag, n *yaml.Node) (value.Value, error) {
	if n.Kind == 0 {
		return value.Value{}, errors.New("missing")
	}

	switch tag {
	case value.Number:
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Value{}, err
		}
		return value.NewNumber(f), nil
	case value.Boolean:
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, err
		}
		return value.NewBool(b), nil
	case value.String:
		var s string
		if err := n.Decode(&s); err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	case value.RealArray:
		var xs []float64
		if err := n.Decode(&xs); err != nil {
			return value.Value{}, err
		}
		return value.Of(xs)
	case value.RealMatrix:
		var rows [][]float64
		if err := n.Decode(&rows); err != nil {
			return value.Value{}, err
		}
		return value.Of(rows)
	default:
		return value.Value{}, fmt.Errorf("tag %s", tag)
	}
}
