package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a dynamically shaped answer: String, Number, Bool, Null, List or Mapping.
// The zero Value is Null.
//
// Numbers keep their literal text so that "100" and "100.50" stay distinguishable
// when formatted. Mappings keep insertion order, which is the key order of the
// JSON document they were decoded from.
type Value struct {
	kind   Kind
	text   string
	flag   bool
	items  []Value
	keys   []string
	fields map[string]Value
}

// Field is a single key/value pair of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number returns a number Value from its literal text (e.g. "12", "3.50").
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Int returns an integer number Value.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

// Float returns a number Value using the shortest exact representation.
func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'f', -1, 64)) }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// List returns a list Value.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, items: items}
}

// Map returns a mapping Value preserving the order of fields.
// A repeated key keeps its first position and its last value.
func Map(fields ...Field) Value {
	v := Value{kind: KindMapping, fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		v.set(f.Key, f.Value)
	}
	return v
}

func (v *Value) set(key string, val Value) {
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = val
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsStructured reports whether v is a List or a Mapping.
func (v Value) IsStructured() bool { return v.kind == KindList || v.kind == KindMapping }

// Str returns the string content when v is a String.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// NumberLiteral returns the literal text when v is a Number.
func (v Value) NumberLiteral() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.text, true
}

// Float64 converts a Number to float64.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsInteger reports whether v is a Number written without fraction or exponent.
func (v Value) IsInteger() bool {
	return v.kind == KindNumber && !strings.ContainsAny(v.text, ".eE")
}

// BoolValue returns the flag when v is a Bool.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

// Items returns the elements of a List (nil otherwise).
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Keys returns the keys of a Mapping in insertion order (nil otherwise).
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	return v.keys
}

// Fields returns the pairs of a Mapping in insertion order.
func (v Value) Fields() []Field {
	if v.kind != KindMapping {
		return nil
	}
	out := make([]Field, 0, len(v.keys))
	for _, k := range v.keys {
		out = append(out, Field{Key: k, Value: v.fields[k]})
	}
	return out
}

// Get looks up a key in a Mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	val, ok := v.fields[key]
	return val, ok
}

// Has reports whether a Mapping contains key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of items of a List or fields of a Mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMapping:
		return len(v.keys)
	}
	return 0
}

// Text returns the literal textual form used when a value is inserted into text.
// Structured values are serialized as compact JSON; Null is the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	default:
		return v.JSON()
	}
}

// JSON returns the compact JSON encoding of v.
func (v Value) JSON() string {
	var buf bytes.Buffer
	v.encode(&buf)
	return buf.String()
}

// MarshalJSON implements json.Marshaler preserving mapping order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.encode(&buf)
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		encodeString(buf, v.text)
	case KindNumber:
		if v.text == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(v.text)
		}
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.flag))
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.encode(buf)
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeString(buf, k)
			buf.WriteByte(':')
			v.fields[k].encode(buf)
		}
		buf.WriteByte('}')
	}
}

func encodeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// UnmarshalJSON implements json.Unmarshaler preserving mapping order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseJSON decodes a complete JSON document into a Value.
// Trailing content after the first value is an error.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return List(items...), nil
		case '{':
			m := Map()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("invalid object key %v", kt)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				m.set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return m, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

// FromAny converts decoded Go data (encoding/json, yaml.v3, mapstructure output)
// into a Value. Keys of plain Go maps have no order and are sorted.
func FromAny(in any) Value {
	switch t := in.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Value:
		if t == nil {
			return Null()
		}
		return *t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case json.Number:
		return Number(t.String())
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint16:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint32:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return Number(strconv.FormatUint(t, 10))
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return List(items...)
	case []string:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, String(item))
		}
		return List(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := Map()
		for _, k := range keys {
			m.set(k, FromAny(t[k]))
		}
		return m
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := Map()
		for _, k := range keys {
			m.set(k, String(t[k]))
		}
		return m
	case map[any]any:
		keys := make([]string, 0, len(t))
		byKey := make(map[string]any, len(t))
		for k, val := range t {
			ks := fmt.Sprint(k)
			keys = append(keys, ks)
			byKey[ks] = val
		}
		sort.Strings(keys)
		m := Map()
		for _, k := range keys {
			m.set(k, FromAny(byKey[k]))
		}
		return m
	}
	return String(fmt.Sprint(in))
}

// Answers is the accumulated answer map of a session, keyed by variable name.
type Answers map[string]Value

// Clone returns a shallow copy. Values are immutable so sharing them is safe.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into a, overwriting existing keys.
func (a Answers) Merge(other Answers) {
	for k, v := range other {
		a[k] = v
	}
}

// Lookup returns the value for key, treating a nil map as empty.
func (a Answers) Lookup(key string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a[key]
	return v, ok
}

// AnswersFromMap converts a decoded JSON object into Answers.
func AnswersFromMap(m map[string]any) Answers {
	out := make(Answers, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}
