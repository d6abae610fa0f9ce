// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const (
	// ElementKey is the W3C web element identifier key.
	ElementKey = "element-6066-11e4-a52e-4f735466cecf"
	// ShadowRootKey is the W3C shadow root identifier key.
	ShadowRootKey = "shadow-6066-11e4-a52e-4f735466cecf"
	// LegacyElementKey is the JSON Wire Protocol element key.
	LegacyElementKey = "ELEMENT"
)

// ElementRef is the wire form of an element reference: an opaque id assigned
// by the remote end.
type ElementRef struct {
	ID string
}

func (r ElementRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{ElementKey: r.ID})
}

func (r *ElementRef) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	id, ok := elementID(m)
	if !ok {
		return errors.New("not an element reference")
	}
	r.ID = id
	return nil
}

// ShadowRef is the wire form of a shadow root reference.
type ShadowRef struct {
	ID string
}

func (r ShadowRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{ShadowRootKey: r.ID})
}

func (r *ShadowRef) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	id, ok := m[ShadowRootKey]
	if !ok {
		return errors.New("not a shadow root reference")
	}
	r.ID = id
	return nil
}

type null struct{}

func (null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Null encodes as an explicit JSON null. Plain nil parameters are omitted.
var Null = null{}

// elementID extracts the id from an element wrapper object. Both the W3C and
// the legacy key are accepted; the object must have no other members.
func elementID(m map[string]any) (string, bool) {
	switch len(m) {
	case 1:
	case 2:
		// some drivers send both keys with the same id
		a, _ := m[ElementKey].(string)
		b, _ := m[LegacyElementKey].(string)
		if a != "" && a == b {
			return a, true
		}
		return "", false
	default:
		return "", false
	}
	for _, key := range []string{ElementKey, LegacyElementKey} {
		if v, ok := m[key]; ok {
			id, ok := v.(string)
			return id, ok
		}
	}
	return "", false
}

// EncodeValue serializes v to JSON. ElementRef values at any depth become
// element wrapper objects.
func EncodeValue(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeValue decodes a JSON value structurally: objects become
// map[string]any, arrays []any, integral numbers int64, other numbers
// float64, element wrappers ElementRef and shadow wrappers ShadowRef.
//
// JSON has a single number type, so the Go type of a number is chosen from
// its text: 2 decodes as int64 even when it was encoded from float64(2),
// while 2.0 and 2e0 decode as float64.
func DecodeValue(raw []byte) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return normalize(v)
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return number(x)
	case []any:
		for i := range x {
			n, err := normalize(x[i])
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	case map[string]any:
		if id, ok := elementID(x); ok {
			return ElementRef{ID: id}, nil
		}
		if id, ok := x[ShadowRootKey].(string); ok && len(x) == 1 {
			return ShadowRef{ID: id}, nil
		}
		for k, e := range x {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	}
	return v, nil
}

func number(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n.String(), err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 && !bytes.ContainsAny([]byte(n), ".eE") {
		return int64(f), nil
	}
	return f, nil
}
