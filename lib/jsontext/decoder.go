// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Member is one key/value pair of a JSON object. The parser always
// produces string keys; Key is typed any so that programmatically
// built objects can carry boolean, nil, or numeric keys through the
// encoder's key-stringification rules.
type Member struct {
	Key   any
	Value any
}

// Object is a JSON object as an ordered sequence of members. Unlike
// map[string]any it preserves the order keys were encountered in the
// source text (or were appended programmatically), and the encoder
// emits members in exactly that order unless SortKeys is set.
type Object []Member

// DecoderOptions configures a Decoder. The zero value gives strict
// RFC-grammar string handling (plus the NaN/Infinity extension) and
// the default translations documented in the package comment. All
// function fields are optional.
type DecoderOptions struct {
	// AllowControlCharacters permits raw control characters (codes
	// 0-31, including tab and newline) inside string literals instead
	// of rejecting them with InvalidControlCharacter.
	AllowControlCharacters bool

	// ParseInt is called with the literal text of every integer
	// number (no fraction, no exponent). Default: int64, falling back
	// to *big.Int when the literal exceeds the int64 range.
	ParseInt func(literal string) (any, error)

	// ParseFloat is called with the literal text of every real number
	// (fraction or exponent present). Default: float64. Callers can
	// substitute an arbitrary-precision decimal type here.
	ParseFloat func(literal string) (any, error)

	// ParseConstant is called with one of the names "NaN", "Infinity",
	// or "-Infinity". Default: the corresponding float64. Callers can
	// reject the extension by returning an error.
	ParseConstant func(name string) (any, error)

	// ObjectHook receives every decoded object as a map and its
	// return value is used in place of the map. Ignored when
	// ObjectPairsHook is also set.
	ObjectHook func(object map[string]any) (any, error)

	// ObjectPairsHook receives every decoded object as its ordered
	// member list (keys are strings, in source order, duplicates
	// included) and its return value is used as the object. Takes
	// priority over ObjectHook.
	ObjectPairsHook func(pairs []Member) (any, error)
}

// Decoder converts JSON text into Go values. Construct with
// NewDecoder; a Decoder is immutable and safe for concurrent use.
type Decoder struct {
	strict          bool
	parseInt        func(literal string) (any, error)
	parseFloat      func(literal string) (any, error)
	parseConstant   func(name string) (any, error)
	objectHook      func(object map[string]any) (any, error)
	objectPairsHook func(pairs []Member) (any, error)
}

// NewDecoder returns a Decoder with the given options, filling in the
// default parse hooks for any left nil.
func NewDecoder(options DecoderOptions) *Decoder {
	decoder := &Decoder{
		strict:          !options.AllowControlCharacters,
		parseInt:        options.ParseInt,
		parseFloat:      options.ParseFloat,
		parseConstant:   options.ParseConstant,
		objectHook:      options.ObjectHook,
		objectPairsHook: options.ObjectPairsHook,
	}
	if decoder.parseInt == nil {
		decoder.parseInt = defaultParseInt
	}
	if decoder.parseFloat == nil {
		decoder.parseFloat = defaultParseFloat
	}
	if decoder.parseConstant == nil {
		decoder.parseConstant = defaultParseConstant
	}
	return decoder
}

// Decode parses input, which must hold exactly one JSON value plus
// optional surrounding whitespace. Any other trailing text fails with
// an ExtraData error at the first non-whitespace byte. Syntax errors
// are returned as *DecodeError; errors from caller-supplied hooks
// propagate unchanged.
func (d *Decoder) Decode(input string) (any, error) {
	value, end, err := d.RawDecode(input, skipWhitespace(input, 0))
	if err != nil {
		return nil, err
	}
	end = skipWhitespace(input, end)
	if end != len(input) {
		return nil, newDecodeError(ExtraData, msgExtraData, input, end)
	}
	return value, nil
}

// RawDecode parses one JSON value beginning at byte offset start and
// returns the value and the offset just past it. Trailing bytes are
// left for the caller, which lets a JSON document be decoded out of
// the middle of a larger text. Error offsets are relative to input,
// not to start.
func (d *Decoder) RawDecode(input string, start int) (any, int, error) {
	state := &decodeState{
		decoder:   d,
		input:     input,
		keyIntern: make(map[string]string),
	}
	return state.scanValue(start)
}

// defaultParseInt parses an integer literal as int64, widening to
// *big.Int when the literal does not fit. JSON places no bound on
// integer size and the scanner has already validated the digits, so
// the big.Int path cannot fail.
func defaultParseInt(literal string) (any, error) {
	if value, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return value, nil
	}
	value, ok := new(big.Int).SetString(literal, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal %q", literal)
	}
	return value, nil
}

// defaultParseFloat parses a real-number literal as float64.
func defaultParseFloat(literal string) (any, error) {
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal %q: %w", literal, err)
	}
	return value, nil
}

// defaultParseConstant maps the non-standard numeric constants to
// their float64 values.
func defaultParseConstant(name string) (any, error) {
	switch name {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	return nil, fmt.Errorf("unknown constant %q", name)
}
