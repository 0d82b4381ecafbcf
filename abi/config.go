// SPDX-License-Identifier: EPL-2.0

package abi

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ik5/audalg/value"
)

// Config is the serialized form of a resolved configuration handed to
// Engine.Create and Engine.Configure.
type Config struct {
	Algorithm string  `msgpack:"algorithm"`
	Params    []Param `msgpack:"params"`
}

// Param is one configuration entry. Only the fields matching Tag are set.
type Param struct {
	Name string    `msgpack:"n"`
	Tag  value.Tag `msgpack:"t"`
	Num  float64   `msgpack:"f,omitempty"`
	Bool bool      `msgpack:"b,omitempty"`
	Str  string    `msgpack:"s,omitempty"`
	Real []float32 `msgpack:"r,omitempty"`
	Rows int       `msgpack:"rows,omitempty"`
	Cols int       `msgpack:"cols,omitempty"`
}

// ParamOf flattens a value into its wire form.
func ParamOf(name string, v value.Value) Param {
	p := Param{Name: name, Tag: v.Tag()}
	switch v.Tag() {
	case value.Number:
		p.Num, _ = v.Number()
	case value.Boolean:
		p.Bool, _ = v.Bool()
	case value.String:
		p.Str, _ = v.Text()
	case value.RealArray:
		p.Real, _ = v.Reals()
	case value.RealMatrix:
		p.Rows, p.Cols, p.Real, _ = v.Matrix()
	}
	return p
}

// Value rebuilds the value carried by p.
func (p Param) Value() (value.Value, error) {
	switch p.Tag {
	case value.Number:
		return value.NewNumber(p.Num), nil
	case value.Boolean:
		return value.NewBool(p.Bool), nil
	case value.String:
		return value.NewString(p.Str), nil
	case value.RealArray:
		return value.NewRealArray(p.Real), nil
	case value.RealMatrix:
		return value.NewRealMatrix(p.Rows, p.Cols, p.Real)
	default:
		return value.Value{}, fmt.Errorf("%w: %s has tag %s", ErrBadConfig, p.Name, p.Tag)
	}
}

func EncodeConfig(c Config) ([]byte, error) {
	b, err := msgpack.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	return b, nil
}

func DecodeConfig(b []byte) (Config, error) {
	var c Config
	if err := msgpack.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	if c.Algorithm == "" {
		return Config{}, fmt.Errorf("%w: missing algorithm name", ErrBadConfig)
	}
	return c, nil
}
