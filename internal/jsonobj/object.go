// Package jsonobj provides a JSON object that keeps its key order and the raw
// bytes of every member value.
//
// Feed documents are edited by tooling that does not know every field they
// carry. Decoding them into map[string]any would reorder keys and normalize
// numbers on the way back out; Object only ever touches the members that are
// explicitly replaced.
package jsonobj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Object is an ordered JSON object whose member values are kept as raw JSON.
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

var (
	_ json.Marshaler   = (*Object)(nil)
	_ json.Unmarshaler = (*Object)(nil)
)

// New returns an empty object.
func New() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

// Parse decodes data, which must hold a single JSON object.
func Parse(data []byte) (*Object, error) {
	o := New()
	if err := o.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return o, nil
}

// Len returns the number of members.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns a snapshot of the member names in document order.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Has reports whether the object has a member named key.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Raw returns the raw JSON of the member named key.
func (o *Object) Raw(key string) (json.RawMessage, bool) {
	raw, ok := o.values[key]
	return raw, ok
}

// Set replaces the value of key, or appends key when it is not present yet.
func (o *Object) Set(key string, raw json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = slices.Clone(raw)
}

// SetValue marshals v and stores it under key.
func (o *Object) SetValue(key string, v any) error {
	raw, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	o.Set(key, raw)
	return nil
}

// Object decodes the member named key as a nested object.
// The returned object is independent of o; write it back with SetValue.
func (o *Object) Object(key string) (*Object, error) {
	raw, ok := o.values[key]
	if !ok {
		return nil, fmt.Errorf("member %q not found", key)
	}
	nested, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("member %q: %w", key, err)
	}
	return nested, nil
}

// Decode unmarshals the whole object into v.
func (o *Object) Decode(v any) error {
	data, err := o.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   slices.Clone(o.keys),
		values: make(map[string]json.RawMessage, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = slices.Clone(v)
	}
	return c
}

// MarshalJSON writes the members in document order with their raw values.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if raw := o.values[key]; len(raw) > 0 {
			buf.Write(raw)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the first position of duplicate
// keys and the last value, as encoding/json does for maps.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	o.keys = o.keys[:0]
	o.values = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read value of %q: %w", key, err)
		}
		if _, seen := o.values[key]; !seen {
			o.keys = append(o.keys, key)
		}
		o.values[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read object end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON object at offset %d", dec.InputOffset())
	}
	return nil
}

// Marshal encodes v like json.Marshal, without HTML escaping.
func Marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
