// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

// decodeState is the scratch state for one top-level decode call: the
// document, the configuration, and the per-call key intern map. The
// three container scanners (scanValue, scanObject, scanArray) are
// mutually recursive methods on it, each taking a byte offset and
// returning the parsed value plus the offset just past it.
type decodeState struct {
	decoder *Decoder
	input   string

	// keyIntern maps previously decoded object key text to its first
	// instance, so repeated keys within one document share one string.
	// Purely an allocation optimization; discarded after the call.
	keyIntern map[string]string
}

// skipWhitespace advances past the JSON whitespace characters: space,
// tab, newline, carriage return.
func skipWhitespace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// hasLiteral reports whether the exact literal starts at offset i.
func hasLiteral(s string, i int, literal string) bool {
	return len(s)-i >= len(literal) && s[i:i+len(literal)] == literal
}

// scanValue parses exactly one JSON value at offset i. It is the sole
// recursive re-entry point: scanObject and scanArray call back into
// it for every nested value. Dispatch is by the first byte: string,
// object, array, the null/true/false literals, then a number, then
// the NaN/Infinity/-Infinity constants. Anything else — including end
// of input — is ExpectingValue at i.
func (s *decodeState) scanValue(i int) (any, int, error) {
	input := s.input
	if i >= len(input) {
		return nil, i, newDecodeError(ExpectingValue, msgExpectingValue, input, i)
	}

	switch input[i] {
	case '"':
		text, end, err := s.scanString(i + 1)
		if err != nil {
			return nil, end, err
		}
		return text, end, nil
	case '{':
		return s.scanObject(i + 1)
	case '[':
		return s.scanArray(i + 1)
	}

	switch input[i] {
	case 'n':
		if hasLiteral(input, i, "null") {
			return nil, i + 4, nil
		}
	case 't':
		if hasLiteral(input, i, "true") {
			return true, i + 4, nil
		}
	case 'f':
		if hasLiteral(input, i, "false") {
			return false, i + 5, nil
		}
	}

	if literal, isReal, end, ok := scanNumber(input, i); ok {
		var value any
		var err error
		if isReal {
			value, err = s.decoder.parseFloat(literal)
		} else {
			value, err = s.decoder.parseInt(literal)
		}
		if err != nil {
			return nil, i, err
		}
		return value, end, nil
	}

	// The permissive extension: numeric constants outside the JSON
	// grammar. -Infinity is checked here because the number scanner
	// has already rejected the bare '-'.
	for _, name := range [...]string{"NaN", "Infinity", "-Infinity"} {
		if hasLiteral(input, i, name) {
			value, err := s.decoder.parseConstant(name)
			if err != nil {
				return nil, i, err
			}
			return value, i + len(name), nil
		}
	}

	return nil, i, newDecodeError(ExpectingValue, msgExpectingValue, input, i)
}

// scanNumber matches the longest prefix of s at offset start forming
// a JSON number: -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?. It
// returns the matched literal, whether it is a real number (fraction
// or exponent present) rather than an integer, and the end offset.
// A position that does not start a number is a normal non-match, not
// an error: ok is false and the caller tries other token kinds.
func scanNumber(s string, start int) (literal string, isReal bool, end int, ok bool) {
	i := start
	n := len(s)
	if i < n && s[i] == '-' {
		i++
	}

	// Integer part: a lone zero, or a nonzero digit followed by any
	// digits. A leading zero never absorbs further digits, so "0123"
	// scans as the number 0 with "123" left over.
	switch {
	case i < n && s[i] == '0':
		i++
	case i < n && s[i] >= '1' && s[i] <= '9':
		i++
		for i < n && isDigit(s[i]) {
			i++
		}
	default:
		return "", false, start, false
	}

	// Fraction part: consumed only when a digit follows the dot, so
	// "1." scans as the integer 1 with the dot left over.
	if i+1 < n && s[i] == '.' && isDigit(s[i+1]) {
		isReal = true
		i += 2
		for i < n && isDigit(s[i]) {
			i++
		}
	}

	// Exponent part: consumed only when a digit follows, so "1e" and
	// "1e+" scan as the integer 1.
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '-' || s[j] == '+') {
			j++
		}
		if j < n && isDigit(s[j]) {
			isReal = true
			for j < n && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	return s[start:i], isReal, i, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanObject parses an object body. The offset is just past the
// opening '{'. Members accumulate as an ordered pair list so that an
// ObjectPairsHook sees every pair in source order, duplicates
// included; without one, finishObject collapses the list into a map.
func (s *decodeState) scanObject(i int) (any, int, error) {
	input := s.input
	pairs := []Member{}

	i = skipWhitespace(input, i)
	if i < len(input) && input[i] == '}' {
		return s.finishObject(pairs, i+1)
	}
	if i >= len(input) || input[i] != '"' {
		return nil, i, newDecodeError(ExpectingPropertyName, msgExpectingPropertyName, input, i)
	}
	i++

	for {
		key, end, err := s.scanString(i)
		if err != nil {
			return nil, end, err
		}
		if interned, seen := s.keyIntern[key]; seen {
			key = interned
		} else {
			s.keyIntern[key] = key
		}

		i = skipWhitespace(input, end)
		if i >= len(input) || input[i] != ':' {
			return nil, i, newDecodeError(ExpectingKeySeparator, msgExpectingKeySep, input, i)
		}
		i = skipWhitespace(input, i+1)

		value, end, err := s.scanValue(i)
		if err != nil {
			return nil, end, err
		}
		pairs = append(pairs, Member{Key: key, Value: value})

		i = skipWhitespace(input, end)
		if i >= len(input) {
			return nil, i, newDecodeError(ExpectingCommaOrClose, msgExpectingCommaOrClose, input, i)
		}
		switch input[i] {
		case '}':
			return s.finishObject(pairs, i+1)
		case ',':
			i = skipWhitespace(input, i+1)
		default:
			return nil, i, newDecodeError(ExpectingCommaOrClose, msgExpectingCommaOrClose, input, i)
		}

		// After a comma only another member may follow; this is what
		// rejects trailing commas.
		if i >= len(input) || input[i] != '"' {
			return nil, i, newDecodeError(ExpectingPropertyName, msgExpectingPropertyName, input, i)
		}
		i++
	}
}

// finishObject runs the configured construction hooks over the
// accumulated pairs. Empty objects take the same path: hooks always
// see the (possibly empty) pair list or map. The default construction
// is a map, so duplicate keys resolve to the last occurrence.
func (s *decodeState) finishObject(pairs []Member, end int) (any, int, error) {
	decoder := s.decoder
	if decoder.objectPairsHook != nil {
		value, err := decoder.objectPairsHook(pairs)
		if err != nil {
			return nil, end, err
		}
		return value, end, nil
	}

	object := make(map[string]any, len(pairs))
	for _, member := range pairs {
		object[member.Key.(string)] = member.Value
	}
	if decoder.objectHook != nil {
		value, err := decoder.objectHook(object)
		if err != nil {
			return nil, end, err
		}
		return value, end, nil
	}
	return object, end, nil
}

// scanArray parses an array body. The offset is just past the opening
// '['. An empty source array decodes as a non-nil empty slice.
func (s *decodeState) scanArray(i int) (any, int, error) {
	input := s.input
	values := []any{}

	i = skipWhitespace(input, i)
	if i < len(input) && input[i] == ']' {
		return values, i + 1, nil
	}

	for {
		value, end, err := s.scanValue(i)
		if err != nil {
			return nil, end, err
		}
		values = append(values, value)

		i = skipWhitespace(input, end)
		if i >= len(input) {
			return nil, i, newDecodeError(ExpectingCommaOrClose, msgExpectingCommaOrClose, input, i)
		}
		switch input[i] {
		case ']':
			return values, i + 1, nil
		case ',':
			i = skipWhitespace(input, i+1)
		default:
			return nil, i, newDecodeError(ExpectingCommaOrClose, msgExpectingCommaOrClose, input, i)
		}
	}
}
