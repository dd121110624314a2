// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package jsontext

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Separators is the pair of strings joining encoded output: Item
// between array elements and object members, Key between a key and
// its value.
type Separators struct {
	Item string
	Key  string
}

// Indent describes pretty-printing. The zero value disables it: no
// newlines, everything on one line. IndentSpaces and IndentText
// enable it; IndentSpaces(0) (or IndentText("")) inserts newlines
// without indentation.
type Indent struct {
	enabled bool
	text    string
}

// IndentSpaces indents nested containers by count spaces per level.
// Negative counts are treated as zero.
func IndentSpaces(count int) Indent {
	if count < 0 {
		count = 0
	}
	return Indent{enabled: true, text: strings.Repeat(" ", count)}
}

// IndentText indents nested containers by the literal text per level.
func IndentText(text string) Indent {
	return Indent{enabled: true, text: text}
}

// EncoderOptions configures an Encoder. The zero value produces
// single-line output with ", " and ": " separators, ASCII-only
// escaping, cycle checking, and NaN/Infinity literals permitted.
type EncoderOptions struct {
	// SkipInvalidKeys drops object members whose keys are outside
	// the string, boolean, nil, and number types instead of failing
	// with ErrNonStringKey.
	SkipInvalidKeys bool

	// RawUnicode emits characters above U+007F verbatim. By default
	// every such character is written as a \uXXXX escape (a surrogate
	// pair for characters beyond U+FFFF), keeping the output ASCII.
	RawUnicode bool

	// NoCycleCheck disables circular-reference detection. Encoding a
	// structure that reaches itself then recurses without bound.
	NoCycleCheck bool

	// RejectNonFinite fails with ErrNonFiniteNumber instead of
	// producing the non-standard NaN/Infinity/-Infinity literals.
	RejectNonFinite bool

	// SortKeys orders object members by key — by the key's final
	// string form, after non-string keys have been stringified —
	// instead of preserving member order.
	SortKeys bool

	// Indent enables pretty-printed output.
	Indent Indent

	// Separators overrides both separator strings. When nil the
	// defaults are ", " and ": ", with the item separator tightening
	// to "," when Indent is enabled (the newline supplies the gap).
	Separators *Separators

	// Default is called for values outside the built-in type set and
	// must return a representable replacement. Its error return
	// propagates to the caller unchanged.
	Default func(value any) (any, error)
}

// Encoder converts Go values into JSON text. Construct with
// NewEncoder; an Encoder is immutable and safe for concurrent use.
type Encoder struct {
	skipInvalidKeys bool
	rawUnicode      bool
	checkCycles     bool
	allowNonFinite  bool
	sortKeys        bool
	indentEnabled   bool
	indent          string
	itemSeparator   string
	keySeparator    string
	defaultHook     func(value any) (any, error)
}

// NewEncoder returns an Encoder with the given options, resolving the
// separator defaults against the indentation setting.
func NewEncoder(options EncoderOptions) *Encoder {
	encoder := &Encoder{
		skipInvalidKeys: options.SkipInvalidKeys,
		rawUnicode:      options.RawUnicode,
		checkCycles:     !options.NoCycleCheck,
		allowNonFinite:  !options.RejectNonFinite,
		sortKeys:        options.SortKeys,
		indentEnabled:   options.Indent.enabled,
		indent:          options.Indent.text,
		itemSeparator:   ", ",
		keySeparator:    ": ",
		defaultHook:     options.Default,
	}
	switch {
	case options.Separators != nil:
		encoder.itemSeparator = options.Separators.Item
		encoder.keySeparator = options.Separators.Key
	case options.Indent.enabled:
		encoder.itemSeparator = ","
	}
	return encoder
}

// Encode returns the complete JSON text for value. A bare string is
// escaped directly, without the recursive machinery.
func (e *Encoder) Encode(value any) (string, error) {
	if text, isString := value.(string); isString {
		return e.escapeString(text), nil
	}
	var builder strings.Builder
	if err := e.IterEncode(value, func(chunk string) error {
		builder.WriteString(chunk)
		return nil
	}); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// IterEncode streams the JSON text for value as a sequence of chunks
// delivered to yield in order; their concatenation equals the Encode
// output. Production is lazy and single-pass: each chunk is produced
// only when the previous yield has returned, and a non-nil error from
// yield abandons the traversal and is returned as-is. The sequence is
// not restartable; call IterEncode again to re-encode.
func (e *Encoder) IterEncode(value any, yield func(chunk string) error) error {
	state := &encodeState{encoder: e, yield: yield}
	if e.checkCycles {
		state.ancestors = make(map[containerID]struct{})
	}
	return state.encodeValue(value, 0)
}

// EncodeTo streams the JSON text for value into w.
func (e *Encoder) EncodeTo(w io.Writer, value any) error {
	return e.IterEncode(value, func(chunk string) error {
		_, err := io.WriteString(w, chunk)
		return err
	})
}

// containerID identifies a container for cycle detection: the data
// pointer, plus the length for slices so that a slice and a re-slice
// sharing a backing array do not collide.
type containerID struct {
	pointer uintptr
	length  int
}

// containerIdentity returns the identity of value if it has one.
// Scalars and plain struct values have no identity; they also cannot
// participate in a cycle, so they are never registered.
func containerIdentity(value any) (containerID, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		return containerID{pointer: rv.Pointer(), length: rv.Len()}, true
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return containerID{pointer: rv.Pointer(), length: -1}, true
	default:
		return containerID{}, false
	}
}

// encodeState is the scratch state for one encode call: the output
// callback and the identities of the containers on the active
// recursion stack. Membership in ancestors means "currently an open
// frame" — identities are removed as each container's encoding
// completes, so only a container reachable from itself trips the
// check, never one that merely appears twice.
type encodeState struct {
	encoder   *Encoder
	yield     func(chunk string) error
	ancestors map[containerID]struct{}
}

// enter registers a container frame and returns the function that
// closes it. A container already on the stack is a cycle.
func (st *encodeState) enter(container any) (func(), error) {
	if st.ancestors == nil {
		return func() {}, nil
	}
	id, hasIdentity := containerIdentity(container)
	if !hasIdentity {
		return func() {}, nil
	}
	if _, open := st.ancestors[id]; open {
		return nil, fmt.Errorf("%T value: %w", container, ErrCircularReference)
	}
	st.ancestors[id] = struct{}{}
	return func() { delete(st.ancestors, id) }, nil
}

// encodeValue dispatches on the runtime shape of value. depth is the
// current indentation level.
func (st *encodeState) encodeValue(value any, depth int) error {
	switch v := value.(type) {
	case nil:
		return st.yield("null")
	case bool:
		if v {
			return st.yield("true")
		}
		return st.yield("false")
	case string:
		return st.yield(st.encoder.escapeString(v))
	case float64:
		text, err := st.encoder.formatFloat(v)
		if err != nil {
			return err
		}
		return st.yield(text)
	case float32:
		text, err := st.encoder.formatFloat(float64(v))
		if err != nil {
			return err
		}
		return st.yield(text)
	case []any:
		return st.encodeArray(v, depth)
	case Object:
		return st.encodeObject(v, v, depth)
	case map[string]any:
		members := make([]Member, 0, len(v))
		for key, element := range v {
			members = append(members, Member{Key: key, Value: element})
		}
		if !st.encoder.sortKeys && len(members) > 1 {
			// Map iteration order is random; sort for deterministic
			// output even when SortKeys is off.
			slices.SortFunc(members, func(a, b Member) int {
				return strings.Compare(a.Key.(string), b.Key.(string))
			})
		}
		return st.encodeObject(v, members, depth)
	}
	if text, isInteger := integerText(value); isInteger {
		return st.yield(text)
	}
	return st.encodeDefault(value, depth)
}

// integerText renders any of the Go integer types, including the
// arbitrary-precision *big.Int the default decoder produces, as exact
// base-10 digits.
func integerText(value any) (string, bool) {
	switch v := value.(type) {
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case *big.Int:
		return v.String(), true
	}
	return "", false
}

// formatFloat renders a float the way the decoder will read it back:
// the shortest decimal form that round-trips, with ".0" appended to
// integral values so the real-vs-integer classification survives, and
// the non-finite values as their literal names.
func (e *Encoder) formatFloat(value float64) (string, error) {
	var text string
	switch {
	case math.IsNaN(value):
		text = "NaN"
	case math.IsInf(value, 1):
		text = "Infinity"
	case math.IsInf(value, -1):
		text = "-Infinity"
	default:
		text = strconv.FormatFloat(value, 'g', -1, 64)
		if !strings.ContainsAny(text, ".eE") {
			text += ".0"
		}
		return text, nil
	}
	if !e.allowNonFinite {
		return "", fmt.Errorf("%v: %w", value, ErrNonFiniteNumber)
	}
	return text, nil
}

// encodeArray emits an array. Empty arrays short-circuit before cycle
// registration: they cannot contain anything, themselves included.
func (st *encodeState) encodeArray(items []any, depth int) error {
	if len(items) == 0 {
		return st.yield("[]")
	}
	leave, err := st.enter(items)
	if err != nil {
		return err
	}
	defer leave()

	encoder := st.encoder
	separator := encoder.itemSeparator
	open := "["
	if encoder.indentEnabled {
		depth++
		newlineIndent := "\n" + strings.Repeat(encoder.indent, depth)
		separator += newlineIndent
		open += newlineIndent
	}
	if err := st.yield(open); err != nil {
		return err
	}
	for index, item := range items {
		if index > 0 {
			if err := st.yield(separator); err != nil {
				return err
			}
		}
		if err := st.encodeValue(item, depth); err != nil {
			return err
		}
	}
	if encoder.indentEnabled {
		if err := st.yield("\n" + strings.Repeat(encoder.indent, depth-1)); err != nil {
			return err
		}
	}
	return st.yield("]")
}

// encodeObject emits an object from its ordered member list.
// container is the value whose identity guards the cycle check (the
// Object slice or the map the members came from). Keys are
// stringified first — applying the skip-or-fail policy for invalid
// keys — and SortKeys then orders by that final string form.
func (st *encodeState) encodeObject(container any, members []Member, depth int) error {
	if len(members) == 0 {
		return st.yield("{}")
	}
	leave, err := st.enter(container)
	if err != nil {
		return err
	}
	defer leave()

	encoder := st.encoder
	type encodedMember struct {
		key   string
		value any
	}
	encoded := make([]encodedMember, 0, len(members))
	for _, member := range members {
		key, keep, err := encoder.stringifyKey(member.Key)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		encoded = append(encoded, encodedMember{key: key, value: member.Value})
	}
	if encoder.sortKeys {
		slices.SortStableFunc(encoded, func(a, b encodedMember) int {
			return strings.Compare(a.key, b.key)
		})
	}

	separator := encoder.itemSeparator
	open := "{"
	if encoder.indentEnabled {
		depth++
		newlineIndent := "\n" + strings.Repeat(encoder.indent, depth)
		separator += newlineIndent
		open += newlineIndent
	}
	if err := st.yield(open); err != nil {
		return err
	}
	for index, member := range encoded {
		if index > 0 {
			if err := st.yield(separator); err != nil {
				return err
			}
		}
		if err := st.yield(encoder.escapeString(member.key)); err != nil {
			return err
		}
		if err := st.yield(encoder.keySeparator); err != nil {
			return err
		}
		if err := st.encodeValue(member.value, depth); err != nil {
			return err
		}
	}
	if encoder.indentEnabled {
		if err := st.yield("\n" + strings.Repeat(encoder.indent, depth-1)); err != nil {
			return err
		}
	}
	return st.yield("}")
}

// stringifyKey converts an object key to its output string. String
// keys pass through; booleans, nil, and numbers use the same literal
// forms they would have as values. Anything else is skipped under
// SkipInvalidKeys, otherwise it is an ErrNonStringKey failure.
func (e *Encoder) stringifyKey(key any) (text string, keep bool, err error) {
	switch k := key.(type) {
	case string:
		return k, true, nil
	case nil:
		return "null", true, nil
	case bool:
		if k {
			return "true", true, nil
		}
		return "false", true, nil
	case float64:
		text, err := e.formatFloat(k)
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	case float32:
		text, err := e.formatFloat(float64(k))
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	}
	if text, isInteger := integerText(key); isInteger {
		return text, true, nil
	}
	if e.skipInvalidKeys {
		return "", false, nil
	}
	return "", false, fmt.Errorf("key %v (%T): %w", key, key, ErrNonStringKey)
}

// encodeDefault hands a value outside the built-in set to the Default
// hook and encodes the replacement. The original value stays
// registered on the cycle stack while its replacement encodes, so a
// hook that returns a structure containing the original is still
// caught as circular.
func (st *encodeState) encodeDefault(value any, depth int) error {
	leave, err := st.enter(value)
	if err != nil {
		return err
	}
	defer leave()

	if st.encoder.defaultHook == nil {
		return fmt.Errorf("%T value: %w", value, ErrUnserializable)
	}
	replacement, err := st.encoder.defaultHook(value)
	if err != nil {
		return err
	}
	return st.encodeValue(replacement, depth)
}
