// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies which syntax rule a DecodeError reports. The
// kinds partition every way recognition can fail, so callers can
// branch on Kind instead of matching message text.
type ErrorKind int

const (
	// ExpectingValue: no JSON value starts at the reported offset.
	ExpectingValue ErrorKind = iota

	// ExpectingPropertyName: an object needed a '"'-quoted key.
	ExpectingPropertyName

	// ExpectingKeySeparator: the ':' between a key and its value is
	// missing.
	ExpectingKeySeparator

	// ExpectingCommaOrClose: a container needed either a ',' or its
	// closing bracket after a completed element.
	ExpectingCommaOrClose

	// UnterminatedString: input ended before a string's closing '"'.
	UnterminatedString

	// InvalidControlCharacter: a raw control character (code 0-31)
	// appeared inside a string while strict decoding is in effect.
	InvalidControlCharacter

	// InvalidEscape: the character after a backslash is not one of
	// the recognized escapes.
	InvalidEscape

	// InvalidUnicodeEscape: a \u escape is not followed by exactly
	// four hex digits.
	InvalidUnicodeEscape

	// ExtraData: a complete value was decoded but non-whitespace
	// input remains.
	ExtraData
)

// String returns the kind's identifier, for logs and test output.
func (k ErrorKind) String() string {
	switch k {
	case ExpectingValue:
		return "ExpectingValue"
	case ExpectingPropertyName:
		return "ExpectingPropertyName"
	case ExpectingKeySeparator:
		return "ExpectingKeySeparator"
	case ExpectingCommaOrClose:
		return "ExpectingCommaOrClose"
	case UnterminatedString:
		return "UnterminatedString"
	case InvalidControlCharacter:
		return "InvalidControlCharacter"
	case InvalidEscape:
		return "InvalidEscape"
	case InvalidUnicodeEscape:
		return "InvalidUnicodeEscape"
	case ExtraData:
		return "ExtraData"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Unformatted messages for each error kind. InvalidControlCharacter
// and InvalidEscape append the offending character when raised.
const (
	msgExpectingValue        = "Expecting value"
	msgExpectingPropertyName = "Expecting property name enclosed in double quotes"
	msgExpectingKeySep       = "Expecting ':' delimiter"
	msgExpectingCommaOrClose = "Expecting ',' delimiter"
	msgUnterminatedString    = "Unterminated string starting at"
	msgInvalidUnicodeEscape  = `Invalid \uXXXX escape`
	msgExtraData             = "Extra data"
)

// DecodeError reports the exact location where recognition of a JSON
// document failed. Offset is a byte index into Doc; Line and Column
// are derived from it (both 1-based: Line counts '\n' bytes before
// Offset plus one, Column is the distance from the previous '\n').
type DecodeError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Msg is the unformatted message, without location information.
	Msg string

	// Doc is the full document being decoded.
	Doc string

	// Offset is the byte index into Doc where recognition failed.
	Offset int

	// Line is the 1-based line number of Offset.
	Line int

	// Column is the 1-based column number of Offset.
	Column int
}

// Error formats the message with its location, for example:
//
//	Expecting property name enclosed in double quotes: line 1 column 3 (char 2)
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: line %d column %d (char %d)", e.Msg, e.Line, e.Column, e.Offset)
}

// newDecodeError builds a DecodeError at the given byte offset,
// deriving the line and column.
func newDecodeError(kind ErrorKind, msg, doc string, offset int) *DecodeError {
	prefix := doc
	if offset < len(doc) {
		prefix = doc[:offset]
	}
	line := strings.Count(prefix, "\n") + 1
	column := offset - strings.LastIndex(prefix, "\n")
	return &DecodeError{
		Kind:   kind,
		Msg:    msg,
		Doc:    doc,
		Offset: offset,
		Line:   line,
		Column: column,
	}
}

// Encode-time failures. Each is surfaced wrapped with context about
// the offending value, so test with errors.Is.
var (
	// ErrCircularReference: a container directly or indirectly
	// contains itself and cycle checking is enabled.
	ErrCircularReference = errors.New("circular reference detected")

	// ErrNonFiniteNumber: a NaN or infinite float was encoded while
	// RejectNonFinite is set.
	ErrNonFiniteNumber = errors.New("out-of-range float value is not JSON compliant")

	// ErrNonStringKey: an object key is outside the string, boolean,
	// nil, and number types and SkipInvalidKeys is not set.
	ErrNonStringKey = errors.New("object key is not a string")

	// ErrUnserializable: a value outside the built-in type set was
	// encoded and no Default hook is configured.
	ErrUnserializable = errors.New("value is not JSON serializable")
)
