package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindList
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
	case KindObject:
		return "object"
	case KindList:
		return "list"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one field of a vendor product record. Numbers keep their JSON
// literal so prices never pass through float64.
type Value struct {
	kind Kind
	text string
	b    bool
	obj  Record
	list []Value
}

func Null() Value                { return Value{} }
func String(s string) Value      { return Value{kind: KindString, text: s} }
func Number(n json.Number) Value { return Value{kind: KindNumber, text: n.String()} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Object(r Record) Value      { return Value{kind: KindObject, obj: r} }
func List(items ...Value) Value  { return Value{kind: KindList, list: items} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether v is a string, number or bool.
func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

// Scalar returns nil, string, json.Number or bool. Objects and lists yield nil.
func (v Value) Scalar() any {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return json.Number(v.text)
	case KindBool:
		return v.b
	}
	return nil
}

// Text renders scalars as plain text; other kinds render as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

func (v Value) Object() (Record, bool) {
	return v.obj, v.kind == KindObject
}

func (v Value) List() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// Int64 accepts numbers and numeric strings. Fractions are truncated; values
// outside the int64 range are rejected.
func (v Value) Int64() (int64, bool) {
	var lit string
	switch v.kind {
	case KindNumber:
		lit = v.text
	case KindString:
		lit = strings.TrimSpace(v.text)
	default:
		return 0, false
	}
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// BoolValue accepts JSON booleans and "true"/"false" strings.
func (v Value) BoolValue() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.text))
		return b, err == nil
	}
	return false, false
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(v.text), nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindObject:
		return v.obj.MarshalJSON()
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return nil, fmt.Errorf("encode value: unknown kind %s", v.kind)
}

// UnmarshalJSON dispatches on the first byte of one already-delimited JSON
// value. Objects go through an ordered map so upstream key order survives.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("parse value: empty input")
	}
	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return fmt.Errorf("parse value: invalid literal %q", data)
		}
		*v = Null()
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("parse value: invalid literal %q", data)
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '{':
		pairs := orderedmap.New[string, Value]()
		if err := pairs.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("parse value: %w", err)
		}
		*v = Object(Record{pairs: pairs})
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Value{}
		}
		*v = List(items...)
	default:
		if !json.Valid(data) {
			return fmt.Errorf("parse value: invalid number %q", data)
		}
		*v = Number(json.Number(data))
	}
	return nil
}

// Record is a schema-less vendor product: field names in upstream order.
// The zero value is an empty record ready to use.
type Record struct {
	pairs *orderedmap.OrderedMap[string, Value]
}

// Set stores v under key. A new key is appended; an existing key keeps its position.
func (r *Record) Set(key string, v Value) {
	if r.pairs == nil {
		r.pairs = orderedmap.New[string, Value]()
	}
	r.pairs.Set(key, v)
}

func (r Record) Get(key string) (Value, bool) {
	if r.pairs == nil {
		return Value{}, false
	}
	return r.pairs.Get(key)
}

// Keys returns the field names in upstream order.
func (r Record) Keys() []string {
	if r.pairs == nil {
		return nil
	}
	keys := make([]string, 0, r.pairs.Len())
	for pair := r.pairs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (r Record) Len() int {
	if r.pairs == nil {
		return 0
	}
	return r.pairs.Len()
}

// Text returns the scalar text of key, or "" when absent or not a scalar.
func (r Record) Text(key string) string {
	v, _ := r.Get(key)
	return v.Text()
}

// Without returns a copy of r lacking the given keys.
func (r Record) Without(keys ...string) Record {
	var out Record
	if r.pairs == nil {
		return out
	}
	for pair := r.pairs.Oldest(); pair != nil; pair = pair.Next() {
		if slices.Contains(keys, pair.Key) {
			continue
		}
		out.Set(pair.Key, pair.Value)
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.pairs == nil {
		return []byte("{}"), nil
	}
	return r.pairs.MarshalJSON()
}

func (r *Record) UnmarshalJSON(data []byte) error {
	v, err := ParseValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.Object()
	if !ok {
		return fmt.Errorf("%w: expected object, got %s", ErrInvalidResponseShape, v.Kind())
	}
	*r = obj
	return nil
}

// ParseValue decodes a single JSON document, preserving object key order.
func ParseValue(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}
