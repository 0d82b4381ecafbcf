// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/utils"
)

var ErrNotMP3File = errors.New("not an MP3 stream")

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels = 2
	bitDepth = 16
)

// mp3Reader is the part of gomp3.Decoder the source uses.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec     mp3Reader
	buf     []byte
	pending []byte
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	carried := copy(buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.dec.Read(buf[carried:])
	n += carried

	samples := n / 2
	if n%2 == 1 {
		s.pending = append(s.pending, buf[n-1])
	}
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(buf[2*i:]))
		dst[i] = utils.FromPCM(int(v), bitDepth)
	}

	switch {
	case errors.Is(err, io.EOF):
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, nil
	case err != nil:
		return samples, fmt.Errorf("mp3 read: %w", err)
	}
	return samples, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}
	return &source{dec: dec}, nil
}
