// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"errors"

	"github.com/PuerkitoBio/goquery"

	"github.com/fedesog/webdriver/v2/wire"
)

// ScriptFunc answers ExecuteScript and ExecuteAsyncScript commands. The
// returned value is sent as the script result; wire.ElementRef values in it
// are sent as element references. Returning an error made with Error fails
// the command with that code, any other error is a "javascript error".
type ScriptFunc func(sc *Script) (any, error)

// Script is a script command being executed.
type Script struct {
	Source string
	// Args are decoded with wire.DecodeValue: element references arrive as
	// wire.ElementRef and have already been checked to be attached.
	Args  []any
	Async bool

	ss *session
	w  *window
}

// Document returns the document of the current window.
func (sc *Script) Document() *goquery.Document { return sc.w.doc }

// Element resolves an element reference received as an argument.
func (sc *Script) Element(ref wire.ElementRef) (*goquery.Selection, error) {
	return sc.ss.lookup(ref.ID)
}

// Find returns a reference to the first element matching a CSS selector,
// to be returned as, or inside, the script result.
func (sc *Script) Find(selector string) (wire.ElementRef, bool) {
	sel := sc.w.doc.Find(selector)
	if sel.Length() == 0 {
		return wire.ElementRef{}, false
	}
	return sc.ss.ref(sc.w, sel.Get(0)), true
}

// OpenAlert opens a user prompt showing text, as alert() would.
func (sc *Script) OpenAlert(text string) {
	sc.ss.alert = &alert{text: text}
}

func (s *Server) cmdExecute(async bool) command {
	return func(ss *session, r request) (any, error) {
		w, err := ss.window()
		if err != nil {
			return nil, err
		}
		src, err := r.str("script")
		if err != nil {
			return nil, err
		}
		args, ok := r.params["args"].([]any)
		if !ok {
			return nil, errorf("invalid argument", "args must be an array")
		}
		if err := ss.checkRefs(args); err != nil {
			return nil, err
		}
		if s.script == nil {
			return nil, nil
		}
		result, err := s.script(&Script{Source: src, Args: args, Async: async, ss: ss, w: w})
		if err != nil {
			var ce *codeError
			if errors.As(err, &ce) {
				return nil, ce
			}
			return nil, errorf("javascript error", "%v", err)
		}
		return result, nil
	}
}
