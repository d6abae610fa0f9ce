// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/fedesog/webdriver/v2/wire"
)

// Inject a snippet of JavaScript into the page for execution in the context of the currently selected frame. The executed script is assumed to be synchronous and the result of evaluating the script is returned to the client.
// The script argument defines the script to execute in the form of a function body. The value returned by that function will be returned to the client. The function will be invoked with the provided args array and the values may be accessed via the arguments object in the order specified.
// Arguments may be any JSON-primitive, array, or JSON object, and WebElements of this session at any depth. WebElements in the script result are returned as WebElement values; numbers come back as int64 or float64.
func (s *Session) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	return s.executeScript(wire.CmdExecuteScript, script, args)
}

// Inject a snippet of JavaScript into the page for execution in the context of the currently selected frame. The executed script is assumed to be asynchronous and must signal that is done by invoking the provided callback, which is always provided as the final argument to the function. The value to this callback will be returned to the client.
// Asynchronous script commands may not span page loads. If an unload event is fired while waiting for a script result, an error is returned.
// When the script timeout expires the error matches ErrTimeout.
func (s *Session) ExecuteAsyncScript(script string, args ...interface{}) (interface{}, error) {
	return s.executeScript(wire.CmdExecuteAsyncScript, script, args)
}

func (s *Session) executeScript(name, script string, args []interface{}) (interface{}, error) {
	if args == nil {
		args = []interface{}{}
	}
	wargs, err := s.toWire(args)
	if err != nil {
		return nil, err
	}
	resp, err := s.execute(name, wire.Params{"script": script, "args": wargs})
	if err != nil {
		return nil, err
	}
	return s.fromWire(resp)
}

// toWire replaces WebElements and ShadowRoots with their wire references,
// rejecting those of other sessions.
func (s *Session) toWire(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case WebElement:
		if !s.owns(x) {
			return nil, ErrForeignElement
		}
		return x.ref(), nil
	case *WebElement:
		if x == nil {
			return nil, nil
		}
		return s.toWire(*x)
	case ShadowRoot:
		if x.s != s {
			return nil, ErrForeignElement
		}
		return wire.ShadowRef{ID: x.id}, nil
	case []WebElement:
		out := make([]interface{}, len(x))
		for i, e := range x {
			r, err := s.toWire(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			r, err := s.toWire(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			r, err := s.toWire(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = r
		}
		return out, nil
	}
	if err := s.checkOwned(reflect.ValueOf(v), map[uintptr]bool{}); err != nil {
		return nil, err
	}
	return v, nil
}

// checkOwned walks the containers toWire does not rebuild. encoding/json
// still encodes the WebElements inside them, so each must belong to s.
// Unexported struct fields are skipped, as json skips them.
func (s *Session) checkOwned(v reflect.Value, seen map[uintptr]bool) error {
	if v.IsValid() && v.CanInterface() {
		switch x := v.Interface().(type) {
		case WebElement:
			if !s.owns(x) {
				return ErrForeignElement
			}
			return nil
		case ShadowRoot:
			if x.s != s {
				return ErrForeignElement
			}
			return nil
		}
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return s.checkOwned(v.Elem(), seen)
	case reflect.Pointer:
		if v.IsNil() || seen[v.Pointer()] {
			return nil
		}
		seen[v.Pointer()] = true
		return s.checkOwned(v.Elem(), seen)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := s.checkOwned(v.Field(i), seen); err != nil {
				return fmt.Errorf("%s: %w", t.Field(i).Name, err)
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := s.checkOwned(iter.Value(), seen); err != nil {
				return fmt.Errorf("%v: %w", iter.Key(), err)
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := s.checkOwned(v.Index(i), seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// fromWire decodes a response value, binding element references to s.
func (s *Session) fromWire(resp *wire.Response) (interface{}, error) {
	v, err := resp.Any()
	if err != nil {
		return nil, err
	}
	return s.bind(v), nil
}

func (s *Session) bind(v interface{}) interface{} {
	switch x := v.(type) {
	case wire.ElementRef:
		return WebElement{s: s, id: x.ID}
	case wire.ShadowRef:
		return ShadowRoot{s: s, id: x.ID}
	case []interface{}:
		for i := range x {
			x[i] = s.bind(x[i])
		}
	case map[string]interface{}:
		for k := range x {
			x[k] = s.bind(x[k])
		}
	}
	return v
}

// decodeBase64 reads a base64 string value, as screenshots and printed
// pages are sent.
func decodeBase64(resp *wire.Response) ([]byte, error) {
	encoded, err := unmarshalValue[string](resp)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ProtocolError{HTTPStatus: resp.HTTPStatus, Body: resp.Value, Err: fmt.Errorf("invalid base64 data: %w", err)}
	}
	return data, nil
}
