// SPDX-License-Identifier: EPL-2.0

package marshal

import "errors"

var (
	// ErrMarshal is wrapped by every conversion failure. Allocation failures
	// are not conversion failures and are returned as the engine reports them.
	ErrMarshal = errors.New("marshal: conversion failed")

	ErrTagMismatch = errors.New("marshal: type tag mismatch")
	ErrOverflow    = errors.New("marshal: value exceeds engine address space")
	ErrDescriptor  = errors.New("marshal: malformed descriptor")
)
