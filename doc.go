// SPDX-License-Identifier: EPL-2.0

// Package audalg drives a catalog of audio analysis algorithms that run in a
// foreign computation engine.
//
// The subpackages do the work:
//
//   - algorithm: handles, the registry that creates them, and the error kinds
//   - schema: the parameter catalog and default resolution
//   - marshal: copying values across the engine boundary
//   - frames: cutting a signal into overlapping frames
//   - engine: the in-process engine with its memory arena and kernels
//   - audio and formats/...: decoding files into mono signals
//   - storage: opening files from disk or S3
//
// Runtime wires them together from a config.Config:
//
//	cfg, err := config.Load(ctx)
//	if err != nil {
//		return err
//	}
//	rt, err := audalg.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer rt.Close()
//
//	sig, err := rt.Load(ctx, "takes/voice.wav")
//	if err != nil {
//		return err
//	}
//
//	err = rt.Algorithms().Use("RMS", nil, func(h *algorithm.Handle) error {
//		res, err := h.Compute(value.NewRealArray(sig.Samples))
//		if err != nil {
//			return err
//		}
//		rms, _ := res.Number("rms")
//		fmt.Println(rms)
//		return nil
//	})
//
// FrameWise runs a handle or a chain of handles over every frame of a signal
// using the configured frame and hop size.
package audalg
