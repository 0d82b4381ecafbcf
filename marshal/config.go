// SPDX-License-Identifier: EPL-2.0

package marshal

import (
	"fmt"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/schema"
)

// EncodeConfig serializes a resolved configuration for Engine.Create and
// Engine.Configure.
func EncodeConfig(c schema.ConfigSet) ([]byte, error) {
	cfg := abi.Config{
		Algorithm: c.Algorithm(),
		Params:    make([]abi.Param, 0, c.Len()),
	}
	for name, v := range c.All() {
		cfg.Params = append(cfg.Params, abi.ParamOf(name, v))
	}

	blob, err := abi.EncodeConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return blob, nil
}
