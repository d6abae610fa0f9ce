// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"

	"github.com/fedesog/webdriver/v2/wire"
)

// Rect is a position and size in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Window types for NewWindow.
const (
	WindowTypeTab    = "tab"
	WindowTypeWindow = "window"
)

// Retrieve the current window handle.
func (s *Session) WindowHandle() (string, error) {
	return s.getString(wire.CmdGetWindowHandle)
}

// Retrieve the list of all window handles available to the session.
func (s *Session) WindowHandles() ([]string, error) {
	resp, err := s.execute(wire.CmdGetWindowHandles, nil)
	if err != nil {
		return nil, err
	}
	return unmarshalValue[[]string](resp)
}

// Open a new top-level browsing context; typ is a hint, WindowTypeTab or WindowTypeWindow.
// The returned handle is not switched to.
func (s *Session) NewWindow(typ string) (string, error) {
	p := wire.Params{}
	if typ != "" {
		p["type"] = typ
	}
	resp, err := s.execute(wire.CmdNewWindow, p)
	if err != nil {
		return "", err
	}
	v, err := unmarshalValue[struct {
		Handle string `json:"handle"`
	}](resp)
	return v.Handle, err
}

// Change focus to another window, given its handle.
func (s *Session) SwitchToWindow(handle string) error {
	return s.do(wire.CmdSwitchToWindow, wire.Params{"handle": handle})
}

// Close the current window. The remaining handles are returned; closing the
// last window ends the session on most drivers.
func (s *Session) CloseWindow() ([]string, error) {
	resp, err := s.execute(wire.CmdCloseWindow, nil)
	if err != nil {
		return nil, err
	}
	return unmarshalValue[[]string](resp)
}

// Change focus to another frame on the page. frame is nil for the top-level
// browsing context, an int index, or a WebElement of this session.
func (s *Session) SwitchToFrame(frame interface{}) error {
	var id interface{}
	switch f := frame.(type) {
	case nil:
		id = wire.Null
	case int:
		id = f
	case WebElement:
		ref, err := s.toWire(f)
		if err != nil {
			return err
		}
		id = ref
	default:
		return errors.New("invalid frame, must be int|nil|WebElement")
	}
	return s.do(wire.CmdSwitchToFrame, wire.Params{"id": id})
}

// Change focus back to parent frame
func (s *Session) SwitchToParentFrame() error {
	return s.do(wire.CmdSwitchToParentFrame, nil)
}

// Get the position and size of the current window.
func (s *Session) WindowRect() (Rect, error) {
	resp, err := s.execute(wire.CmdGetWindowRect, nil)
	if err != nil {
		return Rect{}, err
	}
	return unmarshalValue[Rect](resp)
}

// Change the position and size of the current window. The resulting rect is
// returned, drivers may adjust it.
func (s *Session) SetWindowRect(r Rect) (Rect, error) {
	p := wire.Params{"x": r.X, "y": r.Y, "width": r.Width, "height": r.Height}
	return s.windowState(wire.CmdSetWindowRect, p)
}

// Maximize the current window if not already maximized.
func (s *Session) Maximize() (Rect, error) {
	return s.windowState(wire.CmdMaximizeWindow, nil)
}

// Minimize the current window.
func (s *Session) Minimize() (Rect, error) {
	return s.windowState(wire.CmdMinimizeWindow, nil)
}

// Make the current window full screen.
func (s *Session) Fullscreen() (Rect, error) {
	return s.windowState(wire.CmdFullscreenWindow, nil)
}

func (s *Session) windowState(name string, p wire.Params) (Rect, error) {
	resp, err := s.execute(name, p)
	if err != nil {
		return Rect{}, err
	}
	return unmarshalValue[Rect](resp)
}
