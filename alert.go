// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import "github.com/fedesog/webdriver/v2/wire"

// Gets the text of the currently displayed JavaScript alert(), confirm(), or prompt() dialog.
func (s *Session) AlertText() (string, error) {
	return s.getString(wire.CmdGetAlertText)
}

// Sends keystrokes to a JavaScript prompt() dialog.
func (s *Session) SendAlertText(text string) error {
	return s.do(wire.CmdSendAlertText, wire.Params{"text": text})
}

// Accepts the currently displayed alert dialog.
func (s *Session) AcceptAlert() error {
	return s.do(wire.CmdAcceptAlert, nil)
}

// Dismisses the currently displayed alert dialog.
func (s *Session) DismissAlert() error {
	return s.do(wire.CmdDismissAlert, nil)
}
