package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Value is one JSON value of an imported record.
// Numbers keep their literal text so they can be rendered without float noise.
type Value struct {
	kind Kind
	text string
	b    bool
	list []Value
	obj  Record
}

func Null() Value { return Value{kind: KindNull} }
func String(s string) Value { return Value{kind: KindString, text: s} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }
func Object(r Record) Value { return Value{kind: KindObject, obj: r} }
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }
func Int(n int) Value { return Number(strconv.Itoa(n)) }

func (v Value) Kind() Kind { return v.kind }

// Object returns the nested record when v is an object.
func (v Value) Object() (Record, bool) {
	if v.kind != KindObject {
		return Record{}, false
	}
	return v.obj, true
}

// List returns the elements when v is a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Truthy mirrors the loose truthiness used when picking display keys out of objects:
// null, "", 0, NaN and false are falsy, everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.text != ""
	case KindNumber:
		f, err := strconv.ParseFloat(v.text, 64)
		return err == nil && f != 0 && !math.IsNaN(f)
	case KindBool:
		return v.b
	case KindList, KindObject:
		return true
	default:
		return false
	}
}

// numberText renders a number literal the way a JSON number prints in the browser.
func (v Value) numberText() string {
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return v.text
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Record is an ordered key/value bag. Key order follows the source document, which
// matters because fuzzy key scans return the first hit.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(pairs ...any) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		switch val := pairs[i+1].(type) {
		case Value:
			r.Set(key, val)
		case string:
			r.Set(key, String(val))
		case int:
			r.Set(key, Int(val))
		case bool:
			r.Set(key, Bool(val))
		case Record:
			r.Set(key, Object(val))
		case nil:
			r.Set(key, Null())
		}
	}
	return r
}

// Set stores value under key. Re-setting a key keeps its original position.
func (r *Record) Set(key string, value Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Lookup reports whether key is present. A key holding null or "" is present.
func (r Record) Lookup(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in source order. Callers must not modify the slice.
func (r Record) Keys() []string { return r.keys }

func (r Record) Len() int { return len(r.keys) }

// UnmarshalJSON decodes a JSON object while keeping its key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	obj, ok := v.Object()
	if !ok {
		return errors.New("record must be a JSON object")
	}
	*r = obj
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	return Object(r).MarshalJSON()
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	decoded, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalJSON renders compact JSON with object keys in source order and without
// HTML escaping.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		return writeJSONString(buf, v.text)
	case KindNumber:
		buf.WriteString(v.numberText())
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.obj.values[key].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var rec Record
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				rec.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Object(rec), nil
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
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
