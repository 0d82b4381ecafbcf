// SPDX-License-Identifier: EPL-2.0

package audiotest

import "io"

// Source replays interleaved samples through the audio.Source method set,
// at most Chunk values per read when Chunk is positive.
type Source struct {
	Rate  int
	Chans int
	Data  []float32
	Chunk int

	pos    int
	Closed bool
}

func NewSource(rate, channels int, interleaved []float32) *Source {
	return &Source{Rate: rate, Chans: channels, Data: interleaved}
}

func (s *Source) SampleRate() int { return s.Rate }
func (s *Source) Channels() int   { return s.Chans }
func (s *Source) BufSize() int    { return 4096 }

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.Data) {
		return 0, io.EOF
	}
	if s.Chunk > 0 && len(dst) > s.Chunk {
		dst = dst[:s.Chunk]
	}
	n := copy(dst, s.Data[s.pos:])
	s.pos += n
	return n, nil
}
