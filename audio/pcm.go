// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audalg/utils"
)

// PCMReader is the integer PCM surface shared by the go-audio decoders.
type PCMReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// PCMSource adapts a PCMReader to Source, scaling samples by bit depth.
type PCMSource struct {
	dec      PCMReader
	format   *goaudio.Format
	bitDepth int
	offset   int
	buf      *goaudio.IntBuffer
}

// NewPCMSource wraps dec. Unsigned marks 8-bit data stored as 0..255, as
// RIFF WAVE does.
func NewPCMSource(dec PCMReader, bitDepth int, unsigned bool) (*PCMSource, error) {
	if goaudio.IntMaxSignedValue(bitDepth) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("%w: missing format", ErrFormat)
	}

	s := &PCMSource{dec: dec, format: format, bitDepth: bitDepth}
	if unsigned && bitDepth == 8 {
		s.offset = 128
	}
	return s, nil
}

func (s *PCMSource) SampleRate() int { return s.format.SampleRate }
func (s *PCMSource) Channels() int   { return s.format.NumChannels }
func (s *PCMSource) BitDepth() int   { return s.bitDepth }
func (s *PCMSource) Close() error    { return nil }

func (s *PCMSource) BufSize() int {
	if s.buf != nil {
		return cap(s.buf.Data)
	}
	return 4096
}

func (s *PCMSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.buf == nil || cap(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		dst[i] = utils.FromPCM(v-s.offset, s.bitDepth)
	}
	switch {
	case err != nil:
		return n, fmt.Errorf("pcm buffer: %w", err)
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}
