// SPDX-License-Identifier: EPL-2.0

package frames

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// MaxFrameSize bounds FrameSize and HopSize so frame offsets never
// overflow.
const MaxFrameSize = 1 << 30

// Policy controls frame placement and padding.
type Policy struct {
	FrameSize                int `validate:"gt=0,lte=1073741824"`
	HopSize                  int `validate:"gt=0,lte=1073741824"`
	StartFromZero            bool
	LastFrameToEndOfFile     bool
	ValidFrameThresholdRatio float64 `validate:"gte=0,lte=1"`
}

// DefaultPolicy yields centred frames that lie fully inside the signal.
func DefaultPolicy(frameSize, hopSize int) Policy {
	return Policy{
		FrameSize:                frameSize,
		HopSize:                  hopSize,
		ValidFrameThresholdRatio: 1,
	}
}

func (p Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}
	if p.LastFrameToEndOfFile && !p.StartFromZero {
		return fmt.Errorf("%w: LastFrameToEndOfFile needs StartFromZero", ErrInvalidPolicy)
	}
	return nil
}

// firstStart is the offset of frame 0.
func (p Policy) firstStart() int {
	if p.StartFromZero {
		return 0
	}
	return -(p.FrameSize / 2)
}

// more reports whether a frame starting at start is still within the run
// for a signal of the given length.
func (p Policy) more(start, length int) bool {
	switch {
	case !p.StartFromZero:
		return start+p.FrameSize/2 < length
	case p.LastFrameToEndOfFile:
		return start < length
	default:
		return start+p.FrameSize <= length
	}
}

// keep reports whether a frame starting at start has enough in-signal
// samples.
func (p Policy) keep(start, length int) bool {
	valid := min(start+p.FrameSize, length) - max(start, 0)
	if valid <= 0 {
		return false
	}
	return float64(valid) >= p.ValidFrameThresholdRatio*float64(p.FrameSize)
}

// Option adjusts the policy built by New.
type Option func(*Policy)

func WithStartFromZero(v bool) Option {
	return func(p *Policy) { p.StartFromZero = v }
}

func WithLastFrameToEndOfFile(v bool) Option {
	return func(p *Policy) { p.LastFrameToEndOfFile = v }
}

func WithValidFrameThreshold(ratio float64) Option {
	return func(p *Policy) { p.ValidFrameThresholdRatio = ratio }
}

// Count returns how many frames a policy yields for a signal of length
// samples.
func Count(length int, p Policy) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	n := 0
	for start := p.firstStart(); p.more(start, length); start += p.HopSize {
		if p.keep(start, length) {
			n++
		}
	}
	return n, nil
}
