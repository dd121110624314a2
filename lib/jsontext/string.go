// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

import (
	"fmt"
	"strings"
)

// Surrogate code unit ranges for \uXXXX escape pairing.
const (
	highSurrogateMin = 0xD800
	highSurrogateMax = 0xDBFF
	lowSurrogateMin  = 0xDC00
	lowSurrogateMax  = 0xDFFF
)

// scanString decodes a JSON string literal. The offset is just past
// the opening '"'; the returned offset is just past the closing '"'.
// The common case — no escapes, no control characters — returns a
// zero-copy slice of the input; otherwise the decoded text is built
// chunk by chunk, where a chunk is a maximal run of literal content
// between terminators ('"', '\', or a raw control byte).
func (s *decodeState) scanString(i int) (string, int, error) {
	input := s.input
	begin := i - 1 // opening quote, reported by UnterminatedString

	j := i
	for j < len(input) {
		c := input[j]
		if c == '"' {
			return input[i:j], j + 1, nil
		}
		if c == '\\' || c < 0x20 {
			break
		}
		j++
	}
	if j >= len(input) {
		return "", begin, newDecodeError(UnterminatedString, msgUnterminatedString, input, begin)
	}

	var builder strings.Builder
	builder.WriteString(input[i:j])
	i = j
	for {
		if i >= len(input) {
			return "", begin, newDecodeError(UnterminatedString, msgUnterminatedString, input, begin)
		}
		switch c := input[i]; {
		case c == '"':
			return builder.String(), i + 1, nil

		case c == '\\':
			i++
			if i >= len(input) {
				return "", begin, newDecodeError(UnterminatedString, msgUnterminatedString, input, begin)
			}
			if input[i] == 'u' {
				r, next, err := s.unicodeEscape(i)
				if err != nil {
					return "", i, err
				}
				writeCodePoint(&builder, r)
				i = next
			} else {
				decoded, valid := backslashEscape(input[i])
				if !valid {
					msg := fmt.Sprintf(`Invalid \escape: %q`, input[i])
					return "", i, newDecodeError(InvalidEscape, msg, input, i)
				}
				builder.WriteByte(decoded)
				i++
			}

		case c < 0x20:
			if s.decoder.strict {
				msg := fmt.Sprintf("Invalid control character %q at", c)
				return "", i, newDecodeError(InvalidControlCharacter, msg, input, i+1)
			}
			builder.WriteByte(c)
			i++

		default:
			// Literal content: copy through the next terminator.
			j := i
			for j < len(input) {
				c := input[j]
				if c == '"' || c == '\\' || c < 0x20 {
					break
				}
				j++
			}
			builder.WriteString(input[i:j])
			i = j
		}
	}
}

// backslashEscape maps the character after a backslash to its decoded
// byte for the single-character escapes.
func backslashEscape(c byte) (byte, bool) {
	switch c {
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case '/':
		return '/', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}

// unicodeEscape decodes a \uXXXX escape whose 'u' is at offset i,
// returning the code point and the offset just past the escape. A
// high-surrogate code unit immediately followed by a low-surrogate
// escape combines into one supplementary code point and both escapes
// are consumed. A high surrogate followed by a non-surrogate \u
// escape stands alone, and the second escape is left for the caller
// to decode as its own character.
func (s *decodeState) unicodeEscape(i int) (rune, int, error) {
	input := s.input
	hi, err := s.hexEscape(i)
	if err != nil {
		return 0, 0, err
	}
	if hi >= highSurrogateMin && hi <= highSurrogateMax && hasLiteral(input, i+5, `\u`) {
		lo, err := s.hexEscape(i + 6)
		if err != nil {
			return 0, 0, err
		}
		if lo >= lowSurrogateMin && lo <= lowSurrogateMax {
			combined := 0x10000 + ((hi-highSurrogateMin)<<10 | (lo - lowSurrogateMin))
			return rune(combined), i + 11, nil
		}
	}
	return rune(hi), i + 5, nil
}

// hexEscape reads the four hex digits following the 'u' at offset i.
// Too few digits or any non-hex digit is InvalidUnicodeEscape at the
// offset of the 'u'.
func (s *decodeState) hexEscape(i int) (int, error) {
	input := s.input
	if i+5 > len(input) {
		return 0, newDecodeError(InvalidUnicodeEscape, msgInvalidUnicodeEscape, input, i)
	}
	value := 0
	for j := i + 1; j < i+5; j++ {
		c := input[j]
		switch {
		case c >= '0' && c <= '9':
			value = value<<4 | int(c-'0')
		case c >= 'a' && c <= 'f':
			value = value<<4 | int(c-'a'+10)
		case c >= 'A' && c <= 'F':
			value = value<<4 | int(c-'A'+10)
		default:
			return 0, newDecodeError(InvalidUnicodeEscape, msgInvalidUnicodeEscape, input, i)
		}
	}
	return value, nil
}

// writeCodePoint appends the UTF-8 encoding of r, except that
// unpaired surrogate code units — which an escaped JSON string can
// legitimately contain — are written as their three-byte encoded
// form rather than being replaced with U+FFFD the way a validating
// encoder would. decodeSurrogate reverses this on the encode side.
func writeCodePoint(builder *strings.Builder, r rune) {
	switch {
	case r < 0x80:
		builder.WriteByte(byte(r))
	case r < 0x800:
		builder.WriteByte(byte(0xC0 | r>>6))
		builder.WriteByte(byte(0x80 | r&0x3F))
	case r < 0x10000:
		builder.WriteByte(byte(0xE0 | r>>12))
		builder.WriteByte(byte(0x80 | r>>6&0x3F))
		builder.WriteByte(byte(0x80 | r&0x3F))
	default:
		builder.WriteByte(byte(0xF0 | r>>18))
		builder.WriteByte(byte(0x80 | r>>12&0x3F))
		builder.WriteByte(byte(0x80 | r>>6&0x3F))
		builder.WriteByte(byte(0x80 | r&0x3F))
	}
}
