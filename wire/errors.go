// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a server reported failure. Every Kind is also an error, so
// it can be used directly as an errors.Is target:
//
//	if errors.Is(err, wire.KindNoSuchElement) { ... }
type Kind int

const (
	// KindUnknown covers "unknown error" and every error string this package
	// does not recognise.
	KindUnknown Kind = iota
	KindSessionNotCreated
	KindNoSuchSession
	KindNoSuchElement
	KindStaleElementReference
	KindTimeout
	KindNoSuchFrame
	KindNoSuchWindow
	KindNoSuchAlert
	KindNoSuchCookie
	KindUnexpectedAlertOpen
	KindInvalidArgument
	KindInvalidSelector
	KindInvalidElementState
	KindElementNotInteractable
	KindElementClickIntercepted
	KindJavascriptError
	KindUnknownCommand
	KindUnknownMethod
	KindUnsupportedOperation
	KindInvalidCookieDomain
	KindUnableToSetCookie
	KindMoveTargetOutOfBounds
	KindUnableToCaptureScreen
	KindInsecureCertificate
	KindNoSuchShadowRoot
	KindDetachedShadowRoot
)

var kindNames = map[Kind]string{
	KindUnknown:                 "unknown server error",
	KindSessionNotCreated:       "session not created",
	KindNoSuchSession:           "no such session",
	KindNoSuchElement:           "no such element",
	KindStaleElementReference:   "stale element reference",
	KindTimeout:                 "timeout",
	KindNoSuchFrame:             "no such frame",
	KindNoSuchWindow:            "no such window",
	KindNoSuchAlert:             "no such alert",
	KindNoSuchCookie:            "no such cookie",
	KindUnexpectedAlertOpen:     "unexpected alert open",
	KindInvalidArgument:         "invalid argument",
	KindInvalidSelector:         "invalid selector",
	KindInvalidElementState:     "invalid element state",
	KindElementNotInteractable:  "element not interactable",
	KindElementClickIntercepted: "element click intercepted",
	KindJavascriptError:         "javascript error",
	KindUnknownCommand:          "unknown command",
	KindUnknownMethod:           "unknown method",
	KindUnsupportedOperation:    "unsupported operation",
	KindInvalidCookieDomain:     "invalid cookie domain",
	KindUnableToSetCookie:       "unable to set cookie",
	KindMoveTargetOutOfBounds:   "move target out of bounds",
	KindUnableToCaptureScreen:   "unable to capture screen",
	KindInsecureCertificate:     "insecure certificate",
	KindNoSuchShadowRoot:        "no such shadow root",
	KindDetachedShadowRoot:      "detached shadow root",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string { return "webdriver: " + k.String() }

// W3C error codes. The mapping follows the W3C WebDriver recommendation;
// "script timeout" and "timeout" share a kind.
var codeKinds = map[string]Kind{
	"session not created":       KindSessionNotCreated,
	"invalid session id":        KindNoSuchSession,
	"no such element":           KindNoSuchElement,
	"stale element reference":   KindStaleElementReference,
	"timeout":                   KindTimeout,
	"script timeout":            KindTimeout,
	"no such frame":             KindNoSuchFrame,
	"no such window":            KindNoSuchWindow,
	"no such alert":             KindNoSuchAlert,
	"no such cookie":            KindNoSuchCookie,
	"unexpected alert open":     KindUnexpectedAlertOpen,
	"invalid argument":          KindInvalidArgument,
	"invalid selector":          KindInvalidSelector,
	"invalid element state":     KindInvalidElementState,
	"element not interactable":  KindElementNotInteractable,
	"element click intercepted": KindElementClickIntercepted,
	"javascript error":          KindJavascriptError,
	"unknown command":           KindUnknownCommand,
	"unknown method":            KindUnknownMethod,
	"unsupported operation":     KindUnsupportedOperation,
	"invalid cookie domain":     KindInvalidCookieDomain,
	"unable to set cookie":      KindUnableToSetCookie,
	"move target out of bounds": KindMoveTargetOutOfBounds,
	"unable to capture screen":  KindUnableToCaptureScreen,
	"insecure certificate":      KindInsecureCertificate,
	"no such shadow root":       KindNoSuchShadowRoot,
	"detached shadow root":      KindDetachedShadowRoot,
	"unknown error":             KindUnknown,
}

// KindOf maps a W3C error code to its Kind. Unrecognised codes map to
// KindUnknown.
func KindOf(code string) Kind {
	if k, ok := codeKinds[strings.ToLower(strings.TrimSpace(code))]; ok {
		return k
	}
	return KindUnknown
}

// Legacy JSON Wire Protocol status codes, translated to their W3C code.
var legacyStatusCodes = map[int]string{
	6:  "invalid session id",
	7:  "no such element",
	8:  "no such frame",
	9:  "unknown command",
	10: "stale element reference",
	11: "element not interactable",
	12: "invalid element state",
	13: "unknown error",
	15: "element not selectable",
	17: "javascript error",
	19: "invalid selector",
	21: "timeout",
	23: "no such window",
	24: "invalid cookie domain",
	25: "unable to set cookie",
	26: "unexpected alert open",
	27: "no such alert",
	28: "script timeout",
	29: "invalid element coordinates",
	30: "ime not available",
	31: "ime engine activation failed",
	32: "invalid selector",
	33: "session not created",
	34: "move target out of bounds",
}

// LegacyCode returns the W3C error code for a legacy numeric status.
func LegacyCode(status int) string {
	if code, ok := legacyStatusCodes[status]; ok {
		return code
	}
	return fmt.Sprintf("unknown status %d", status)
}

// Error is a failure reported by the remote end.
type Error struct {
	// Code is the raw error string sent by the server, kept verbatim.
	Code       string
	Message    string
	Stacktrace string
	// Data holds the optional "data" member, left unparsed.
	Data []byte
	// HTTPStatus is the status of the HTTP response carrying the error.
	HTTPStatus int
	// LegacyStatus is the numeric status of JSON Wire Protocol responses, 0 otherwise.
	LegacyStatus int

	kind    Kind
	kindSet bool
}

// NewError builds an Error for code, classifying it with KindOf.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Kind reports the classification of e.
func (e *Error) Kind() Kind {
	if e.kindSet {
		return e.kind
	}
	return KindOf(e.Code)
}

// WithKind returns a copy of e reclassified as k. The raw code is kept.
func (e *Error) WithKind(k Kind) *Error {
	c := *e
	c.kind = k
	c.kindSet = true
	return &c
}

func (e *Error) Error() string {
	m := "webdriver: " + e.Kind().String()
	if e.Code != "" && e.Code != e.Kind().String() {
		m += " (" + e.Code + ")"
	}
	if e.Message != "" {
		m += ": " + e.Message
	}
	return m
}

// Is matches Kind targets, so errors.Is(err, KindNoSuchElement) works on any
// wrapped *Error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind()
}

// ProtocolError reports a response that could not be understood: invalid JSON
// or a payload of an unexpected shape.
type ProtocolError struct {
	HTTPStatus int
	Body       []byte
	Err        error
}

func (e *ProtocolError) Error() string {
	head := string(e.Body)
	if len(head) > 128 {
		head = head[:128] + "..."
	}
	return fmt.Sprintf("webdriver: protocol error (HTTP %d): %v: %q", e.HTTPStatus, e.Err, head)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// httpStatusError describes HTTP failures that carry no error code.
func httpStatusError(status int) string {
	switch status {
	case 400:
		return "400: Missing Command Parameters"
	case 404:
		return "404: Unknown command/Resource Not Found"
	case 405:
		return "405: Invalid Command Method"
	case 500:
		return "500: Failed Command"
	case 501:
		return "501: Unimplemented Command"
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d: %s", status, text)
	}
	return fmt.Sprintf("%d: Unknown error", status)
}
