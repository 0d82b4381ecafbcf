// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"fmt"
	"os"

	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/formats/wav"
)

func ExampleEncode() {
	f, err := os.CreateTemp("", "example-*.wav")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.Remove(f.Name())
	defer f.Close()

	sig := audio.Signal{SampleRate: 8000, Samples: make([]float32, 8000)}
	if err := wav.Encode(f, sig, 16); err != nil {
		fmt.Println(err)
		return
	}
	if _, err := f.Seek(0, 0); err != nil {
		fmt.Println(err)
		return
	}

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		fmt.Println(err)
		return
	}
	back, err := audio.ReadAll(src)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(back.SampleRate, back.Duration())
	// Output: 8000 1s
}
