// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire translates WebDriver commands and responses to and from their
// JSON representation. It targets the W3C WebDriver protocol and also
// understands responses of the legacy JSON Wire Protocol.
//
// See https://www.w3.org/TR/webdriver2/
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Params is the payload of a command.
type Params map[string]any

// Response is a decoded successful response.
type Response struct {
	HTTPStatus int
	// SessionID is only set by legacy servers, which report it at the top level.
	SessionID string
	// Value is the raw "value" member.
	Value json.RawMessage
}

// Unmarshal decodes the value member into v.
func (r *Response) Unmarshal(v any) error {
	if len(r.Value) == 0 {
		return &ProtocolError{HTTPStatus: r.HTTPStatus, Err: errors.New("response has no value")}
	}
	if err := json.Unmarshal(r.Value, v); err != nil {
		return &ProtocolError{HTTPStatus: r.HTTPStatus, Body: r.Value, Err: err}
	}
	return nil
}

// Any decodes the value member with DecodeValue.
func (r *Response) Any() (any, error) {
	v, err := DecodeValue(r.Value)
	if err != nil {
		return nil, &ProtocolError{HTTPStatus: r.HTTPStatus, Body: r.Value, Err: err}
	}
	return v, nil
}

// Encode builds the request body of cmd. Commands that are not POSTs have no
// body. Params entries holding nil are dropped; use Null for an explicit null.
func Encode(cmd Command, params Params) ([]byte, error) {
	if cmd.Method != http.MethodPost {
		return nil, nil
	}
	body := make(map[string]any, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cmd.Name, err)
	}
	return data, nil
}

type envelope struct {
	SessionID json.RawMessage `json:"sessionId"`
	Status    *int            `json:"status"`
	Value     json.RawMessage `json:"value"`
}

type errorValue struct {
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Stacktrace json.RawMessage `json:"stacktrace"`
	Data       json.RawMessage `json:"data"`
}

// Decode parses a response. Server reported failures come back as *Error,
// unparseable payloads as *ProtocolError.
func Decode(httpStatus int, body []byte) (*Response, error) {
	trimmed := bytes.TrimSpace(body)
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		if httpStatus >= 400 {
			// some drivers answer errors in plain text
			return nil, &Error{
				Message:    string(trimmed),
				HTTPStatus: httpStatus,
				kind:       KindUnknown,
				kindSet:    true,
				Code:       httpStatusError(httpStatus),
			}
		}
		return nil, &ProtocolError{HTTPStatus: httpStatus, Body: body, Err: fmt.Errorf("response must be a JSON object: %w", err)}
	}

	legacy := 0
	if env.Status != nil {
		legacy = *env.Status
	}
	if httpStatus >= 400 || legacy != 0 {
		return nil, decodeError(httpStatus, legacy, env.Value)
	}
	// W3C servers use the HTTP status, but some send error objects with 200
	if e := w3cError(env.Value); e != nil {
		e.HTTPStatus = httpStatus
		return nil, e
	}

	resp := &Response{HTTPStatus: httpStatus, Value: env.Value}
	if len(env.SessionID) > 0 {
		var id string
		if err := json.Unmarshal(env.SessionID, &id); err == nil {
			resp.SessionID = id
		}
	}
	return resp, nil
}

func w3cError(value json.RawMessage) *Error {
	if len(value) == 0 || value[0] != '{' {
		return nil
	}
	var ev errorValue
	if err := json.Unmarshal(value, &ev); err != nil || ev.Error == "" {
		return nil
	}
	return &Error{
		Code:       ev.Error,
		Message:    ev.Message,
		Stacktrace: stacktrace(ev.Stacktrace),
		Data:       []byte(ev.Data),
	}
}

func decodeError(httpStatus, legacy int, value json.RawMessage) *Error {
	if e := w3cError(value); e != nil {
		e.HTTPStatus = httpStatus
		e.LegacyStatus = legacy
		return e
	}
	e := &Error{HTTPStatus: httpStatus, LegacyStatus: legacy}
	if legacy != 0 {
		e.Code = LegacyCode(legacy)
	} else {
		e.Code = httpStatusError(httpStatus)
		e.kind, e.kindSet = KindUnknown, true
	}
	var lv struct {
		Message    string          `json:"message"`
		StackTrace json.RawMessage `json:"stackTrace"`
	}
	if err := json.Unmarshal(value, &lv); err == nil {
		e.Message = lv.Message
		e.Stacktrace = stacktrace(lv.StackTrace)
	} else if len(value) > 0 {
		// firefox could return a string instead of a JSON object on errors
		var s string
		if json.Unmarshal(value, &s) == nil {
			e.Message = s
		} else {
			e.Message = string(value)
		}
	}
	return e
}

// stacktrace keeps the server trace opaque: strings verbatim, anything else
// as its JSON text.
func stacktrace(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
