// SPDX-License-Identifier: EPL-2.0

package kernels

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/ik5/audalg/abi"
	"github.com/ik5/audalg/frames"
	"github.com/ik5/audalg/value"
)

// frameCutter hands out one frame per Compute call over the signal it was
// last given. A different signal restarts the cursor; an exhausted cursor
// yields an empty frame.
type frameCutter struct {
	policy frames.Policy
	signal []float32
	gen    *frames.Generator
	served int
}

func newFrameCutter(p *Params) (Kernel, error) {
	policy := frames.Policy{
		FrameSize:                p.Int("frameSize"),
		HopSize:                  p.Int("hopSize"),
		StartFromZero:            p.Bool("startFromZero"),
		LastFrameToEndOfFile:     p.Bool("lastFrameToEndOfFile"),
		ValidFrameThresholdRatio: p.Float("validFrameThresholdRatio"),
	}
	p.Reserve(max(policy.FrameSize, 0), 4)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !policy.StartFromZero {
		policy.LastFrameToEndOfFile = false
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", abi.ErrInvalidParam, err)
	}
	return &frameCutter{policy: policy}, nil
}

func (c *frameCutter) Compute(in []value.Value) ([]value.Value, error) {
	if err := arity(in, 1); err != nil {
		return nil, err
	}
	xs, err := realsIn(in, 0)
	if err != nil {
		return nil, err
	}

	if c.gen == nil || !slices.Equal(xs, c.signal) {
		gen, err := frames.NewWithPolicy(xs, c.policy)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", abi.ErrInvalidParam, err)
		}
		c.signal, c.gen, c.served = xs, gen, 0
	}

	f, err := c.gen.Next()
	switch {
	case errors.Is(err, io.EOF):
		return one(arr([]float32{})), nil
	case err != nil:
		return nil, err
	}
	c.served++
	return one(arr(f.Samples)), nil
}

func (c *frameCutter) Reset() { c.gen, c.served = nil, 0 }

// Snapshot rewinds by replaying: the generator only moves forward, so the
// restore builds a fresh one and skips the frames already served.
func (c *frameCutter) Snapshot() func() {
	signal, had, served := c.signal, c.gen != nil, c.served
	return func() {
		c.signal, c.gen, c.served = signal, nil, 0
		if !had {
			return
		}
		gen, err := frames.NewWithPolicy(signal, c.policy)
		if err != nil {
			return
		}
		for range served {
			if _, err := gen.Next(); err != nil {
				break
			}
		}
		c.gen, c.served = gen, served
	}
}
