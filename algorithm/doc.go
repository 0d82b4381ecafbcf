// SPDX-License-Identifier: EPL-2.0

// Package algorithm is the host-side face of the computation engine.
//
// A Registry resolves algorithm names against the schema table and creates
// Handles. Each Handle owns exactly one engine object from creation until
// Dispose; no two handles ever share one. The engine does not collect
// garbage, so every Handle must be disposed explicitly, typically with
// defer right after a successful Create:
//
//	h, err := reg.Create("HighPass", map[string]any{"cutoffFrequency": 300})
//	if err != nil {
//		return err
//	}
//	defer h.Dispose()
//
//	res, err := h.Compute(value.NewRealArray(signal))
//
// A Handle moves through the states Unbound, Configured, Ready, Computed and
// Disposed. Disposed is terminal: any further call, a second Dispose
// included, fails with ErrUseAfterDispose. Failed calls leave the state and
// the engine object as they were.
//
// Errors returned by this package are *Error values. Test for a kind with
// errors.Is(err, ErrConfiguration) and friends; the underlying cause stays
// reachable through the same error.
//
// A Handle is not safe for concurrent use. Distinct handles may be used from
// different goroutines at the same time.
package algorithm
