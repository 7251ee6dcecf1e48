package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned by DecodeObject when the input is valid JSON but
// not a JSON object.
var ErrNotObject = errors.New("JSON value is not an object")

// Object is a JSON object that keeps its keys in the order they were first
// seen and its values as raw, unmodified JSON.
//
// Upstream payloads are forwarded through Object so that fields the relay
// does not understand survive the round trip byte for byte.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

// DecodeObject parses data as a single JSON object.
//
// Duplicate keys keep the position of their first occurrence and the value
// of their last. Trailing data after the object is a syntax error.
func DecodeObject(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var whole json.RawMessage
	if err := dec.Decode(&whole); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if err := drain(dec); err != nil {
		return nil, err
	}
	if len(whole) == 0 || whole[0] != '{' {
		return nil, ErrNotObject
	}

	dec = json.NewDecoder(bytes.NewReader(whole))
	// Opening brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid object key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		obj.Set(key, raw)
	}
	return obj, nil
}

// drain verifies that nothing but whitespace follows the current value.
func drain(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("invalid character after top-level value")
	}
}

// Keys returns the object's keys in order. The slice is never nil.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores a raw value. New keys are appended; existing keys keep their
// position.
func (o *Object) Set(key string, value json.RawMessage) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// MarshalJSON encodes the object in key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v := o.values[key]
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IsFalsy reports whether a raw JSON value is absent, null, false, zero or
// the empty string.
func IsFalsy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return true
	}
	switch string(v) {
	case "null", "false", `""`:
		return true
	}
	if v[0] == '-' || (v[0] >= '0' && v[0] <= '9') {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil && f == 0 {
			return true
		}
	}
	return false
}
