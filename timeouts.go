// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"time"

	"github.com/fedesog/webdriver/v2/wire"
)

// NoScriptTimeout as Timeouts.Script lets scripts run forever.
const NoScriptTimeout time.Duration = -1

// Timeouts are the session timeouts enforced by the remote end. They are
// unrelated to the request timeout of the client.
type Timeouts struct {
	// Implicit is how long element searches poll the page before giving up.
	Implicit time.Duration
	// PageLoad bounds navigation commands.
	PageLoad time.Duration
	// Script bounds ExecuteScript and ExecuteAsyncScript.
	Script time.Duration
}

type wireTimeouts struct {
	Implicit *int64 `json:"implicit,omitempty"`
	PageLoad *int64 `json:"pageLoad,omitempty"`
	Script   *int64 `json:"script"`
}

func ms(d time.Duration) int64 { return int64(d / time.Millisecond) }

// Retrieve the timeouts of the session.
func (s *Session) Timeouts() (Timeouts, error) {
	resp, err := s.execute(wire.CmdGetTimeouts, nil)
	if err != nil {
		return Timeouts{}, err
	}
	w, err := unmarshalValue[wireTimeouts](resp)
	if err != nil {
		return Timeouts{}, err
	}
	t := Timeouts{Script: NoScriptTimeout}
	if w.Implicit != nil {
		t.Implicit = time.Duration(*w.Implicit) * time.Millisecond
	}
	if w.PageLoad != nil {
		t.PageLoad = time.Duration(*w.PageLoad) * time.Millisecond
	}
	if w.Script != nil {
		t.Script = time.Duration(*w.Script) * time.Millisecond
	}
	return t, nil
}

// Configure all the timeouts of the session.
func (s *Session) SetTimeouts(t Timeouts) error {
	p := wire.Params{"implicit": ms(t.Implicit), "pageLoad": ms(t.PageLoad)}
	if t.Script < 0 {
		p["script"] = wire.Null
	} else {
		p["script"] = ms(t.Script)
	}
	return s.do(wire.CmdSetTimeouts, p)
}

// Set the amount of time the driver should wait when searching for elements. When searching for a single element, the driver should poll the page until an element is found or the timeout expires, whichever occurs first. When searching for multiple elements, the driver should poll the page until at least one element is found or the timeout expires, at which point it should return an empty list.
// If this command is never sent, the driver should default to an implicit wait of 0ms.
func (s *Session) SetImplicitWait(d time.Duration) error {
	return s.do(wire.CmdSetTimeouts, wire.Params{"implicit": ms(d)})
}

// Set the amount of time scripts executed by ExecuteScript and ExecuteAsyncScript are permitted to run before they are aborted and a timeout error is returned.
func (s *Session) SetScriptTimeout(d time.Duration) error {
	if d < 0 {
		return s.do(wire.CmdSetTimeouts, wire.Params{"script": wire.Null})
	}
	return s.do(wire.CmdSetTimeouts, wire.Params{"script": ms(d)})
}

// Set the amount of time a navigation may take.
func (s *Session) SetPageLoadTimeout(d time.Duration) error {
	return s.do(wire.CmdSetTimeouts, wire.Params{"pageLoad": ms(d)})
}
