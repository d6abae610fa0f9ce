// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"
	"fmt"

	"github.com/fedesog/webdriver/v2/transport"
	"github.com/fedesog/webdriver/v2/wire"
)

// Error kinds reported by the remote end, for use with errors.Is.
var (
	ErrSessionNotCreated     error = wire.KindSessionNotCreated
	ErrNoSuchSession         error = wire.KindNoSuchSession
	ErrNoSuchElement         error = wire.KindNoSuchElement
	ErrStaleElementReference error = wire.KindStaleElementReference
	ErrTimeout               error = wire.KindTimeout
	ErrNoSuchFrame           error = wire.KindNoSuchFrame
	ErrNoSuchWindow          error = wire.KindNoSuchWindow
	ErrNoSuchAlert           error = wire.KindNoSuchAlert
	ErrNoSuchCookie          error = wire.KindNoSuchCookie
	ErrJavascript            error = wire.KindJavascriptError
	ErrInvalidSelector       error = wire.KindInvalidSelector
	ErrUnsupportedOperation  error = wire.KindUnsupportedOperation
	// ErrUnknownServer matches "unknown error" and any code the client does
	// not recognise; the raw code is in CommandError.Code.
	ErrUnknownServer error = wire.KindUnknown
)

// ErrForeignElement is returned when an element of one session is passed to
// a command of another.
var ErrForeignElement = errors.New("webdriver: element belongs to a different session")

type (
	// CommandError is a failure reported by the remote end.
	CommandError = wire.Error
	// ProtocolError is a response the client could not parse.
	ProtocolError = wire.ProtocolError
	// TransportError is a network failure. When Timeout is set the command
	// may or may not have run.
	TransportError = transport.Error
)

func unsupported(op string, kind BrowserKind) error {
	return wire.NewError("unsupported operation", fmt.Sprintf("%s is not available on %s", op, kind))
}

// outcome labels an error for metrics and traces.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var cerr *CommandError
	if errors.As(err, &cerr) {
		return cerr.Kind().String()
	}
	var terr *TransportError
	if errors.As(err, &terr) {
		if terr.Timeout {
			return "transport timeout"
		}
		return "transport"
	}
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return "protocol"
	}
	return "client"
}
