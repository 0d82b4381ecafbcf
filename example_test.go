// SPDX-License-Identifier: EPL-2.0

package audalg_test

import (
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"

	"github.com/ik5/audalg"
	"github.com/ik5/audalg/algorithm"
	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/config"
	"github.com/ik5/audalg/frames"
)

func ExampleRuntime_FrameWise() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "audalg-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	cfg, err := config.LoadFrom(ctx, envconfig.MapLookuper(map[string]string{
		"AUDALG_STORAGE_ROOT": dir,
		"AUDALG_FRAME_SIZE":   "4",
		"AUDALG_HOP_SIZE":     "4",
	}))
	if err != nil {
		fmt.Println(err)
		return
	}
	rt, err := audalg.New(ctx, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer rt.Close()

	sig := audio.Signal{SampleRate: 8, Samples: []float32{0.25, 0.25, 0.25, 0.25, 0.5, 0.5, 0.5, 0.5, 0.75, 0.75, 0.75, 0.75}}
	if err := rt.Save(ctx, "steps.wav", sig); err != nil {
		fmt.Println(err)
		return
	}
	loaded, err := rt.Load(ctx, "steps.wav")
	if err != nil {
		fmt.Println(err)
		return
	}

	h, err := rt.Algorithms().Create("Mean", nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer h.Dispose()

	err = rt.FrameWise(ctx, loaded, h, func(f frames.Frame, res algorithm.Result) error {
		mean, err := res.Number("mean")
		if err != nil {
			return err
		}
		fmt.Printf("frame %d at %d: %.2f\n", f.Index, f.Offset, mean)
		return nil
	}, frames.WithStartFromZero(true))
	if err != nil {
		fmt.Println(err)
	}
	// Output:
	// frame 0 at 0: 0.25
	// frame 1 at 4: 0.50
	// frame 2 at 8: 0.75
}
