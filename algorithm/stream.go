// SPDX-License-Identifier: EPL-2.0

package algorithm

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ik5/audalg/frames"
	"github.com/ik5/audalg/value"
)

// Computer is anything that turns inputs into a Result: a Handle or a Chain.
type Computer interface {
	Name() string
	Compute(inputs ...value.Value) (Result, error)
	Reset() error
}

var (
	_ Computer = (*Handle)(nil)
	_ Computer = (*Chain)(nil)
)

// Chain runs handles in sequence, feeding output 0 of each step into the
// single input of the next. A Chain owns its steps: Dispose disposes them
// all.
type Chain struct {
	steps []*Handle
}

// NewChain checks that consecutive steps fit together.
func NewChain(steps ...*Handle) (*Chain, error) {
	const op = "chain"
	if len(steps) == 0 {
		return nil, newError(op, "", ErrConfiguration, errors.New("no steps"))
	}

	for i := 1; i < len(steps); i++ {
		prev, next := steps[i-1].Schema(), steps[i].Schema()
		outs, ins := prev.Outputs(), next.Inputs()
		if len(outs) == 0 || len(ins) != 1 || outs[0].Tag != ins[0].Tag {
			return nil, newError(op, next.Name(), ErrConfiguration,
				fmt.Errorf("cannot feed %s into %s", prev.Name(), next.Name()))
		}
	}
	return &Chain{steps: steps}, nil
}

// Name joins the step names with ">".
func (c *Chain) Name() string {
	names := make([]string, len(c.steps))
	for i, h := range c.steps {
		names[i] = h.Name()
	}
	return strings.Join(names, ">")
}

// Steps returns the handles in order.
func (c *Chain) Steps() []*Handle { return append([]*Handle(nil), c.steps...) }

// Compute passes inputs to the first step and returns the result of the
// last one.
func (c *Chain) Compute(inputs ...value.Value) (Result, error) {
	var res Result
	for i, h := range c.steps {
		if i > 0 {
			inputs = []value.Value{res.At(0)}
		}
		var err error
		if res, err = h.Compute(inputs...); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (c *Chain) Reset() error {
	for _, h := range c.steps {
		if err := h.Reset(); err != nil {
			return err
		}
	}
	return nil
}

// Dispose disposes every step, reporting all failures.
func (c *Chain) Dispose() error {
	var errs []error
	for _, h := range c.steps {
		if err := h.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stream feeds each frame of a generator to a Computer. It owns the
// generator but not the Computer.
type Stream struct {
	c     Computer
	gen   *frames.Generator
	frame frames.Frame
}

func NewStream(c Computer, gen *frames.Generator) *Stream {
	return &Stream{c: c, gen: gen}
}

// Next computes the next frame. It returns io.EOF once the generator is
// exhausted and ErrUseAfterDispose after Close.
func (s *Stream) Next() (Result, error) {
	f, err := s.gen.Next()
	switch {
	case errors.Is(err, io.EOF):
		return Result{}, io.EOF
	case err != nil:
		return Result{}, wrap("next", s.c.Name(), err)
	}

	s.frame = f
	return s.c.Compute(value.NewRealArray(f.Samples))
}

// Frame is the frame behind the most recent result.
func (s *Stream) Frame() frames.Frame { return s.frame }

// All yields every remaining frame with its result. Iteration stops at the
// first error, which is yielded with an empty Result.
func (s *Stream) All() iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for {
			res, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// Close stops the stream. It does not dispose the Computer.
func (s *Stream) Close() error { return s.gen.Close() }
