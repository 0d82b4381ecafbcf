// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Signal is a mono sequence of samples at a fixed rate.
type Signal struct {
	SampleRate int
	Samples    []float32
}

func (s Signal) Len() int { return len(s.Samples) }

func (s Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// maxEmptyReads bounds consecutive reads that return no samples and no error.
const maxEmptyReads = 64

// ReadAll drains src into a mono Signal and closes it.
func ReadAll(src Source) (sig Signal, err error) {
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	mono := Source(src)
	if src.Channels() != 1 {
		mono = NewMonoMixer(src)
	}

	size := src.BufSize()
	if size <= 0 {
		size = 4096
	}
	buf := make([]float32, size)

	sig.SampleRate = src.SampleRate()
	empty := 0
	for {
		n, rerr := mono.ReadSamples(buf)
		sig.Samples = append(sig.Samples, buf[:n]...)
		switch {
		case errors.Is(rerr, io.EOF):
			return sig, nil
		case rerr != nil:
			return Signal{}, fmt.Errorf("read samples: %w", rerr)
		case n > 0:
			empty = 0
		default:
			empty++
			if empty > maxEmptyReads {
				return Signal{}, fmt.Errorf("read samples: %w", io.ErrNoProgress)
			}
		}
	}
}
