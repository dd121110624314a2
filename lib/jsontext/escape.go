// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// escapeString renders text as a quoted JSON string literal under the
// encoder's Unicode policy.
func (e *Encoder) escapeString(text string) string {
	if e.rawUnicode {
		return escapeMinimal(text)
	}
	return escapeASCII(text)
}

// escapeByte maps a byte that must not appear raw in a string literal
// to its escape sequence: the short named escapes where JSON defines
// one, \u00xx otherwise.
func escapeByte(c byte) string {
	switch c {
	case '"':
		return `\"`
	case '\\':
		return `\\`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	return fmt.Sprintf(`\u%04x`, c)
}

// escapeMinimal escapes only what the grammar requires — the quote,
// the backslash, and the control characters — and passes everything
// else through byte for byte.
func escapeMinimal(text string) string {
	var builder strings.Builder
	builder.Grow(len(text) + 2)
	builder.WriteByte('"')
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '"' && c != '\\' && c >= 0x20 {
			continue
		}
		builder.WriteString(text[start:i])
		builder.WriteString(escapeByte(c))
		start = i + 1
	}
	builder.WriteString(text[start:])
	builder.WriteByte('"')
	return builder.String()
}

// escapeASCII escapes everything outside the printable ASCII range,
// producing output that survives any byte-transparent transport.
// Characters beyond U+FFFF become surrogate pairs; DEL is escaped
// along with the controls.
func escapeASCII(text string) string {
	var builder strings.Builder
	builder.Grow(len(text) + 2)
	builder.WriteByte('"')
	start := 0
	for i := 0; i < len(text); {
		c := text[i]
		if c != '"' && c != '\\' && c >= 0x20 && c < 0x7F {
			i++
			continue
		}
		builder.WriteString(text[start:i])
		if c < 0x80 {
			builder.WriteString(escapeByte(c))
			i++
		} else {
			r, size := decodeCodePoint(text[i:])
			if r < 0x10000 {
				fmt.Fprintf(&builder, `\u%04x`, r)
			} else {
				r -= 0x10000
				hi := highSurrogateMin + r>>10
				lo := lowSurrogateMin + r&0x3FF
				fmt.Fprintf(&builder, `\u%04x\u%04x`, hi, lo)
			}
			i += size
		}
		start = i
	}
	builder.WriteString(text[start:])
	builder.WriteByte('"')
	return builder.String()
}

// decodeCodePoint reads one code point from the front of s. It
// differs from utf8.DecodeRuneInString in accepting the three-byte
// encodings of surrogate code units that writeCodePoint produces for
// unpaired \uXXXX escapes, so such strings re-encode to their
// original escape instead of �.
func decodeCodePoint(s string) (rune, int) {
	if len(s) >= 3 && s[0]&0xF0 == 0xE0 && s[1]&0xC0 == 0x80 && s[2]&0xC0 == 0x80 {
		r := rune(s[0]&0x0F)<<12 | rune(s[1]&0x3F)<<6 | rune(s[2]&0x3F)
		if r >= highSurrogateMin && r <= lowSurrogateMax {
			return r, 3
		}
	}
	return utf8.DecodeRuneInString(s)
}
