// SPDX-License-Identifier: EPL-2.0

// Package utils holds small numeric helpers shared by the engine kernels and
// the format codecs.
package utils
