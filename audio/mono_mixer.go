// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer averages the channels of src into a single channel. Reads that
// end mid-frame are carried over to the next call.
type MonoMixer struct {
	src  Source
	tmp  []float32
	tail []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("mono mixer: %w", err)
	}
	return nil
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	channels := m.src.Channels()
	if channels < 1 {
		return 0, ErrNoChannels
	}
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	tmp := m.tmp[:need]

	carried := copy(tmp, m.tail)
	m.tail = m.tail[:0]

	n, err := m.src.ReadSamples(tmp[carried:])
	n += carried

	frames := n / channels
	if rest := n - frames*channels; rest > 0 {
		m.tail = append(m.tail, tmp[frames*channels:n]...)
	}

	inv := 1 / float32(channels)
	for f := range frames {
		var sum float32
		for _, s := range tmp[f*channels : (f+1)*channels] {
			sum += s
		}
		dst[f] = sum * inv
	}
	return frames, err
}
