// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"testing"
)

func mustDecode(t *testing.T, input string) any {
	t.Helper()
	value, err := NewDecoder(DecoderOptions{}).Decode(input)
	if err != nil {
		t.Fatalf("Decode(%q): %v", input, err)
	}
	return value
}

func TestDecodeBasicValues(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{`null`, nil},
		{`true`, true},
		{`false`, false},
		{`"hello"`, "hello"},
		{`""`, ""},
		{`0`, int64(0)},
		{`-0`, int64(0)},
		{`42`, int64(42)},
		{`-17`, int64(-17)},
		{`3.5`, 3.5},
		{`3.0`, 3.0},
		{`3e1`, 30.0},
		{`3.0e1`, 30.0},
		{`-1.5e-3`, -0.0015},
		{`2E+2`, 200.0},
		{`[]`, []any{}},
		{`[1, 2, 3]`, []any{int64(1), int64(2), int64(3)}},
		{`{}`, map[string]any{}},
		{`  "padded"  `, "padded"},
		{"\t\n\r [null] \r\n\t", []any{nil}},
	}
	for _, test := range tests {
		got := mustDecode(t, test.input)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("Decode(%q) = %#v, want %#v", test.input, got, test.want)
		}
	}
}

func TestDecodeNumberClassification(t *testing.T) {
	// Presence of a fraction or exponent decides real vs integer,
	// independent of the numeric value.
	if got := mustDecode(t, `3`); got != int64(3) {
		t.Errorf("Decode(3) = %#v, want int64(3)", got)
	}
	for _, input := range []string{`3.0`, `3e0`, `3.0e0`, `0.5`} {
		if _, isFloat := mustDecode(t, input).(float64); !isFloat {
			t.Errorf("Decode(%s) is not float64", input)
		}
	}
}

func TestDecodeBigInteger(t *testing.T) {
	literal := "123456789012345678901234567890"
	value := mustDecode(t, literal)
	bigValue, isBig := value.(*big.Int)
	if !isBig {
		t.Fatalf("Decode(%s) = %T, want *big.Int", literal, value)
	}
	if bigValue.String() != literal {
		t.Errorf("Decode(%s) = %s", literal, bigValue)
	}

	// Within int64 range the narrow type is used.
	if got := mustDecode(t, "9223372036854775807"); got != int64(math.MaxInt64) {
		t.Errorf("max int64 literal = %#v", got)
	}
}

func TestDecodeConstants(t *testing.T) {
	if got := mustDecode(t, `NaN`); !math.IsNaN(got.(float64)) {
		t.Errorf("Decode(NaN) = %v", got)
	}
	if got := mustDecode(t, `Infinity`); !math.IsInf(got.(float64), 1) {
		t.Errorf("Decode(Infinity) = %v", got)
	}
	if got := mustDecode(t, `-Infinity`); !math.IsInf(got.(float64), -1) {
		t.Errorf("Decode(-Infinity) = %v", got)
	}
}

func TestDecodeStringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a\nb"`, "a\nb"},
		{`"\"\\\/"`, `"\/`},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{`"A"`, "A"},
		{`"é"`, "é"},
		{`"♞"`, "♞"},
		{`"😀"`, "😀"}, // surrogate pair combines
		{`"\ud800"`, "\xed\xa0\x80"}, // lone high surrogate survives
		{`"\ud800x"`, "\xed\xa0\x80x"},
		{`"\ud800A"`, "\xed\xa0\x80A"}, // non-low follower stands alone
		{`"\udc00"`, "\xed\xb0\x80"}, // lone low surrogate
		{`"mixed field"`, "mixed field"},
		{`"é raw"`, "é raw"}, // raw non-ASCII passes through
	}
	for _, test := range tests {
		got := mustDecode(t, test.input)
		if got != test.want {
			t.Errorf("Decode(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestDecodeControlCharacterStrictness(t *testing.T) {
	input := "\"a\tb\""

	_, err := NewDecoder(DecoderOptions{}).Decode(input)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Kind != InvalidControlCharacter {
		t.Fatalf("strict decode of raw tab: %v", err)
	}

	lenient := NewDecoder(DecoderOptions{AllowControlCharacters: true})
	value, err := lenient.Decode(input)
	if err != nil {
		t.Fatalf("lenient decode of raw tab: %v", err)
	}
	if value != "a\tb" {
		t.Errorf("lenient decode = %q", value)
	}
}

func TestDecodeObjects(t *testing.T) {
	got := mustDecode(t, `{"a": 1, "b": {"c": [true, null]}}`)
	want := map[string]any{
		"a": int64(1),
		"b": map[string]any{"c": []any{true, nil}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("nested object = %#v", got)
	}
}

func TestDecodeDuplicateKeysLastWins(t *testing.T) {
	got := mustDecode(t, `{"k": 1, "k": 2, "k": 3}`)
	want := map[string]any{"k": int64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("duplicate keys = %#v", got)
	}
}

func TestDecodeEmptyArrayNonNil(t *testing.T) {
	value := mustDecode(t, `[]`)
	items, isSlice := value.([]any)
	if !isSlice || items == nil || len(items) != 0 {
		t.Errorf("Decode([]) = %#v, want non-nil empty slice", value)
	}
}

func TestObjectPairsHook(t *testing.T) {
	decoder := NewDecoder(DecoderOptions{
		ObjectPairsHook: func(pairs []Member) (any, error) {
			return Object(pairs), nil
		},
	})
	value, err := decoder.Decode(`{"z": 1, "a": 2, "z": 3}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Object{
		{Key: "z", Value: int64(1)},
		{Key: "a", Value: int64(2)},
		{Key: "z", Value: int64(3)},
	}
	if !reflect.DeepEqual(value, want) {
		t.Errorf("pairs hook result = %#v", value)
	}
}

func TestObjectPairsHookPriority(t *testing.T) {
	// When both hooks are set only the pairs hook runs.
	objectHookCalled := false
	decoder := NewDecoder(DecoderOptions{
		ObjectHook: func(object map[string]any) (any, error) {
			objectHookCalled = true
			return object, nil
		},
		ObjectPairsHook: func(pairs []Member) (any, error) {
			return len(pairs), nil
		},
	})
	value, err := decoder.Decode(`{"a": 1}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if value != 1 {
		t.Errorf("pairs hook result = %#v", value)
	}
	if objectHookCalled {
		t.Error("ObjectHook ran despite ObjectPairsHook being set")
	}
}

func TestObjectHookNested(t *testing.T) {
	// The hook sees inner objects before outer ones, so replacements
	// appear inside enclosing containers.
	decoder := NewDecoder(DecoderOptions{
		ObjectHook: func(object map[string]any) (any, error) {
			return len(object), nil
		},
	})
	value, err := decoder.Decode(`{"a": {"x": 1, "y": 2}, "b": {}}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if value != 2 {
		t.Errorf("outer hook result = %#v", value)
	}
}

func TestHookErrorsPropagate(t *testing.T) {
	hookErr := errors.New("rejected by hook")

	decoder := NewDecoder(DecoderOptions{
		ObjectHook: func(object map[string]any) (any, error) {
			return nil, hookErr
		},
	})
	if _, err := decoder.Decode(`[{"a": 1}]`); !errors.Is(err, hookErr) {
		t.Errorf("object hook error = %v", err)
	}

	decoder = NewDecoder(DecoderOptions{
		ParseConstant: func(name string) (any, error) {
			return nil, fmt.Errorf("%s: %w", name, hookErr)
		},
	})
	if _, err := decoder.Decode(`NaN`); !errors.Is(err, hookErr) {
		t.Errorf("constant hook error = %v", err)
	}
}

func TestCustomNumberHooks(t *testing.T) {
	decoder := NewDecoder(DecoderOptions{
		ParseInt:   func(literal string) (any, error) { return "int:" + literal, nil },
		ParseFloat: func(literal string) (any, error) { return "float:" + literal, nil },
	})
	value, err := decoder.Decode(`[7, 7.5]`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []any{"int:7", "float:7.5"}
	if !reflect.DeepEqual(value, want) {
		t.Errorf("custom number hooks = %#v", value)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		input  string
		kind   ErrorKind
		offset int
	}{
		{``, ExpectingValue, 0},
		{`   `, ExpectingValue, 3},
		{`nul`, ExpectingValue, 0},
		{`truth`, ExpectingValue, 0},
		{`true1`, ExtraData, 4},
		{`-`, ExpectingValue, 0},
		{`+1`, ExpectingValue, 0},
		{`.5`, ExpectingValue, 0},
		{`01`, ExtraData, 1},
		{`1.`, ExtraData, 1},
		{`1e`, ExtraData, 1},
		{`1 2`, ExtraData, 2},
		{`"unterminated`, UnterminatedString, 0},
		{`"bad \x escape"`, InvalidEscape, 6},
		{`"\u12"`, InvalidUnicodeEscape, 2},
		{`"\uZZZZ"`, InvalidUnicodeEscape, 2},
		{`"\ud834\uZZZZ"`, InvalidUnicodeEscape, 8},
		{`{`, ExpectingPropertyName, 1},
		{`{1: 2}`, ExpectingPropertyName, 1},
		{`{"a" 1}`, ExpectingKeySeparator, 5},
		{`{"a": 1`, ExpectingCommaOrClose, 7},
		{`{"a": 1 "b": 2}`, ExpectingCommaOrClose, 8},
		{`{"a": 1,}`, ExpectingPropertyName, 8},
		{`[`, ExpectingValue, 1},
		{`[1`, ExpectingCommaOrClose, 2},
		{`[1 2]`, ExpectingCommaOrClose, 3},
		{`[1,]`, ExpectingValue, 3},
		{`[1,,2]`, ExpectingValue, 3},
	}
	decoder := NewDecoder(DecoderOptions{})
	for _, test := range tests {
		_, err := decoder.Decode(test.input)
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("Decode(%q): got %v, want *DecodeError", test.input, err)
			continue
		}
		if decodeErr.Kind != test.kind || decodeErr.Offset != test.offset {
			t.Errorf("Decode(%q): got %s at %d, want %s at %d",
				test.input, decodeErr.Kind, decodeErr.Offset, test.kind, test.offset)
		}
	}
}

func TestDecodeErrorLocation(t *testing.T) {
	input := "{\n  \"a\": 1,\n  oops\n}"
	_, err := NewDecoder(DecoderOptions{}).Decode(input)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if decodeErr.Line != 3 || decodeErr.Column != 3 || decodeErr.Offset != 14 {
		t.Errorf("location = line %d column %d offset %d",
			decodeErr.Line, decodeErr.Column, decodeErr.Offset)
	}
	want := "Expecting property name enclosed in double quotes: line 3 column 3 (char 14)"
	if decodeErr.Error() != want {
		t.Errorf("Error() = %q, want %q", decodeErr.Error(), want)
	}
}

func TestControlCharacterErrorPosition(t *testing.T) {
	// The reported position is just past the offending character.
	_, err := NewDecoder(DecoderOptions{}).Decode("\"ab\tc\"")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if decodeErr.Kind != InvalidControlCharacter || decodeErr.Offset != 4 {
		t.Errorf("got %s at %d, want InvalidControlCharacter at 4", decodeErr.Kind, decodeErr.Offset)
	}
	if !strings.Contains(decodeErr.Msg, `'\t'`) {
		t.Errorf("Msg = %q, want the character named", decodeErr.Msg)
	}
}

func TestRawDecode(t *testing.T) {
	decoder := NewDecoder(DecoderOptions{})

	value, end, err := decoder.RawDecode(`[1, 2] tail`, 0)
	if err != nil {
		t.Fatalf("RawDecode: %v", err)
	}
	if !reflect.DeepEqual(value, []any{int64(1), int64(2)}) || end != 6 {
		t.Errorf("RawDecode = %#v, end %d", value, end)
	}

	// Decoding out of the middle of a larger document.
	document := `xx {"k": true} yy`
	value, end, err = decoder.RawDecode(document, 3)
	if err != nil {
		t.Fatalf("RawDecode offset: %v", err)
	}
	if !reflect.DeepEqual(value, map[string]any{"k": true}) || end != 14 {
		t.Errorf("RawDecode offset = %#v, end %d", value, end)
	}

	// Error offsets are document-relative, not start-relative.
	_, _, err = decoder.RawDecode(`xxxx]`, 4)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Offset != 4 {
		t.Errorf("RawDecode error = %v", err)
	}
}

func TestDecodeExtraDataAfterWhitespace(t *testing.T) {
	// Trailing whitespace alone is fine; anything after it is not.
	if _, err := NewDecoder(DecoderOptions{}).Decode("1 \n "); err != nil {
		t.Errorf("trailing whitespace: %v", err)
	}
	_, err := NewDecoder(DecoderOptions{}).Decode("1 \n x")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Kind != ExtraData || decodeErr.Offset != 4 {
		t.Errorf("extra data = %v", err)
	}
}

func TestDecoderConcurrency(t *testing.T) {
	decoder := NewDecoder(DecoderOptions{})
	done := make(chan error, 8)
	for worker := 0; worker < 8; worker++ {
		go func() {
			for iteration := 0; iteration < 200; iteration++ {
				value, err := decoder.Decode(`{"a": [1, 2.5, "x"], "b": null}`)
				if err != nil {
					done <- err
					return
				}
				if len(value.(map[string]any)) != 2 {
					done <- errors.New("wrong member count")
					return
				}
			}
			done <- nil
		}()
	}
	for worker := 0; worker < 8; worker++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent decode: %v", err)
		}
	}
}
