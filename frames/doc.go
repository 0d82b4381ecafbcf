// SPDX-License-Identifier: EPL-2.0

// Package frames cuts a host-resident signal into overlapping fixed-size
// frames.
//
// A Generator is a lazy, finite iterator. Each call to Next copies one
// window of the signal, zero-padding the parts that fall outside it, and
// advances the cursor by the hop size:
//
//	g, err := frames.New(signal, 1024, 512)
//	if err != nil {
//	    return err
//	}
//	for {
//	    f, err := g.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
// # Policy
//
// Where frames start and which ones are kept is decided by a Policy:
//
//   - StartFromZero puts the first frame at sample 0; otherwise the first
//     frame is centred on sample 0 and starts at -FrameSize/2.
//   - LastFrameToEndOfFile lets a zero-based cursor keep going until a frame
//     starts at or past the end of the signal.
//   - ValidFrameThresholdRatio drops frames whose share of in-signal samples
//     is below the ratio. Frames above it are zero-padded.
//
// The default policy is centred with a ratio of 1, so only frames that lie
// entirely inside the signal are produced.
//
// A Generator is owned by one goroutine; it has no internal locking.
package frames
