// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTP status of each W3C error code.
var errorStatus = map[string]int{
	"element click intercepted": http.StatusBadRequest,
	"element not interactable":  http.StatusBadRequest,
	"insecure certificate":      http.StatusBadRequest,
	"invalid argument":          http.StatusBadRequest,
	"invalid cookie domain":     http.StatusBadRequest,
	"invalid element state":     http.StatusBadRequest,
	"invalid selector":          http.StatusBadRequest,
	"invalid session id":        http.StatusNotFound,
	"javascript error":          http.StatusInternalServerError,
	"move target out of bounds": http.StatusInternalServerError,
	"no such alert":             http.StatusNotFound,
	"no such cookie":            http.StatusNotFound,
	"no such element":           http.StatusNotFound,
	"no such frame":             http.StatusNotFound,
	"no such shadow root":       http.StatusNotFound,
	"no such window":            http.StatusNotFound,
	"detached shadow root":      http.StatusNotFound,
	"script timeout":            http.StatusInternalServerError,
	"session not created":       http.StatusInternalServerError,
	"stale element reference":   http.StatusNotFound,
	"timeout":                   http.StatusInternalServerError,
	"unable to capture screen":  http.StatusInternalServerError,
	"unable to set cookie":      http.StatusInternalServerError,
	"unexpected alert open":     http.StatusInternalServerError,
	"unknown command":           http.StatusNotFound,
	"unknown error":             http.StatusInternalServerError,
	"unknown method":            http.StatusMethodNotAllowed,
	"unsupported operation":     http.StatusInternalServerError,
}

type codeError struct {
	code string
	msg  string
}

func (e *codeError) Error() string { return e.code + ": " + e.msg }

// Error returns an error that a ScriptFunc can return to make the command
// fail with the given W3C error code.
func Error(code, message string) error {
	return &codeError{code: code, msg: message}
}

// ErrScriptTimeout makes a script command fail with "script timeout".
var ErrScriptTimeout = Error("script timeout", "script did not complete in time")

func errorf(code, format string, args ...any) *codeError {
	return &codeError{code: code, msg: fmt.Sprintf(format, args...)}
}

func writeValue(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"value": v})
}

func writeError(w http.ResponseWriter, err error) {
	var ce *codeError
	if !errors.As(err, &ce) {
		ce = &codeError{code: "unknown error", msg: err.Error()}
	}
	status, ok := errorStatus[ce.code]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{"value": map[string]any{
		"error":      ce.code,
		"message":    ce.msg,
		"stacktrace": "",
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"value":{"error":"unknown error","message":"encoding response failed","stacktrace":""}}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
