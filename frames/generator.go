// SPDX-License-Identifier: EPL-2.0

package frames

import (
	"io"
	"iter"
)

// Frame is one window of a signal. Offset is the index of Samples[0] in the
// source signal and is negative for a centred first frame.
type Frame struct {
	Index   int
	Offset  int
	Samples []float32
}

type Generator struct {
	signal []float32
	policy Policy

	cursor int
	index  int
	done   bool
	closed bool
}

// New builds a generator with the default policy adjusted by opts.
func New(signal []float32, frameSize, hopSize int, opts ...Option) (*Generator, error) {
	p := DefaultPolicy(frameSize, hopSize)
	for _, opt := range opts {
		opt(&p)
	}
	return NewWithPolicy(signal, p)
}

// NewWithPolicy builds a generator over signal. The signal is referenced,
// not copied; it must not change while the generator is in use.
func NewWithPolicy(signal []float32, p Policy) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		signal: signal,
		policy: p,
		cursor: p.firstStart(),
	}, nil
}

func (g *Generator) Policy() Policy { return g.policy }

// Len is the length of the source signal.
func (g *Generator) Len() int { return len(g.signal) }

// Next returns the next frame, io.EOF once the signal is exhausted, or
// ErrClosed after Close.
func (g *Generator) Next() (Frame, error) {
	if g.closed {
		return Frame{}, ErrClosed
	}

	n := len(g.signal)
	for !g.done {
		start := g.cursor
		if !g.policy.more(start, n) {
			g.done = true
			break
		}
		g.cursor += g.policy.HopSize
		if !g.policy.keep(start, n) {
			continue
		}

		f := Frame{
			Index:   g.index,
			Offset:  start,
			Samples: make([]float32, g.policy.FrameSize),
		}
		lo, hi := max(start, 0), min(start+g.policy.FrameSize, n)
		copy(f.Samples[lo-start:], g.signal[lo:hi])
		g.index++
		return f, nil
	}
	return Frame{}, io.EOF
}

// Close ends the generator; later calls to Next or Close report ErrClosed.
func (g *Generator) Close() error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	g.signal = nil
	return nil
}

// All yields the remaining frames keyed by their index.
func (g *Generator) All() iter.Seq2[int, Frame] {
	return func(yield func(int, Frame) bool) {
		for {
			f, err := g.Next()
			if err != nil {
				return
			}
			if !yield(f.Index, f) {
				return
			}
		}
	}
}
