// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsontext decodes JSON text into Go values and encodes Go
// values back into JSON text. It implements the JSON grammar plus a
// permissive numeric extension: the literals NaN, Infinity, and
// -Infinity are accepted on decode and produced on encode.
//
// Default decode translations:
//
//	object        map[string]any (or the value of a configured hook)
//	array         []any
//	string        string
//	number (int)  int64, *big.Int beyond the int64 range
//	number (real) float64
//	true, false   bool
//	null          nil
//
// Both directions are hook-extensible: DecoderOptions carries function
// fields that replace number parsing, constant parsing, and object
// construction; EncoderOptions carries a Default hook invoked for
// values outside the built-in type set. Decoders and Encoders are
// immutable after construction and safe for concurrent use; all
// per-call scratch state is local to one Decode or Encode call.
//
// Two hazards are deliberate and documented rather than guarded:
// recursion depth tracks input nesting depth, so a pathologically deep
// document exhausts the goroutine stack instead of returning a
// graceful error, and encoding a cyclic structure with NoCycleCheck
// set recurses without bound.
package jsontext
