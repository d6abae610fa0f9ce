// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"time"

	"github.com/fedesog/webdriver/v2/wire"
)

// Special keys for SendKeys and key actions.
const (
	KeyNull      = "\ue000"
	KeyCancel    = "\ue001"
	KeyBackspace = "\ue003"
	KeyTab       = "\ue004"
	KeyReturn    = "\ue006"
	KeyEnter     = "\ue007"
	KeyShift     = "\ue008"
	KeyControl   = "\ue009"
	KeyAlt       = "\ue00a"
	KeyEscape    = "\ue00c"
	KeySpace     = "\ue00d"
	KeyLeft      = "\ue012"
	KeyUp        = "\ue013"
	KeyRight     = "\ue014"
	KeyDown      = "\ue015"
	KeyDelete    = "\ue017"
	KeyMeta      = "\ue03d"
)

type MouseButton int

const (
	LeftButton   = MouseButton(0)
	MiddleButton = MouseButton(1)
	RightButton  = MouseButton(2)
)

// ActionSequence is the input of one virtual device for PerformActions.
type ActionSequence struct {
	Type       string // "key", "pointer", "wheel" or "none"
	ID         string
	Parameters map[string]interface{}
	Actions    []map[string]interface{}
}

// Pointer returns an empty mouse pointer sequence.
func Pointer(id string) *ActionSequence {
	return &ActionSequence{Type: "pointer", ID: id, Parameters: map[string]interface{}{"pointerType": "mouse"}}
}

// Keyboard returns an empty key sequence.
func Keyboard(id string) *ActionSequence {
	return &ActionSequence{Type: "key", ID: id}
}

// MoveTo moves the pointer to the offset relative to the center of element,
// or to the viewport origin when element is the zero WebElement.
func (a *ActionSequence) MoveTo(element WebElement, x, y int, d time.Duration) *ActionSequence {
	act := map[string]interface{}{"type": "pointerMove", "x": x, "y": y, "duration": ms(d)}
	if element.s != nil {
		act["origin"] = element
	} else {
		act["origin"] = "viewport"
	}
	a.Actions = append(a.Actions, act)
	return a
}

func (a *ActionSequence) ButtonDown(b MouseButton) *ActionSequence {
	a.Actions = append(a.Actions, map[string]interface{}{"type": "pointerDown", "button": int(b)})
	return a
}

func (a *ActionSequence) ButtonUp(b MouseButton) *ActionSequence {
	a.Actions = append(a.Actions, map[string]interface{}{"type": "pointerUp", "button": int(b)})
	return a
}

// Click presses and releases b.
func (a *ActionSequence) Click(b MouseButton) *ActionSequence {
	return a.ButtonDown(b).ButtonUp(b)
}

func (a *ActionSequence) KeyDown(key string) *ActionSequence {
	a.Actions = append(a.Actions, map[string]interface{}{"type": "keyDown", "value": key})
	return a
}

func (a *ActionSequence) KeyUp(key string) *ActionSequence {
	a.Actions = append(a.Actions, map[string]interface{}{"type": "keyUp", "value": key})
	return a
}

func (a *ActionSequence) Pause(d time.Duration) *ActionSequence {
	a.Actions = append(a.Actions, map[string]interface{}{"type": "pause", "duration": ms(d)})
	return a
}

// Perform a sequence of low level input actions. Elements used as pointer origins must belong to the session.
func (s *Session) PerformActions(sequences ...*ActionSequence) error {
	out := make([]interface{}, 0, len(sequences))
	for _, seq := range sequences {
		actions := make([]interface{}, len(seq.Actions))
		for i, act := range seq.Actions {
			a, err := s.toWire(act)
			if err != nil {
				return err
			}
			actions[i] = a
		}
		m := map[string]interface{}{"type": seq.Type, "id": seq.ID, "actions": actions}
		if len(seq.Parameters) > 0 {
			m["parameters"] = seq.Parameters
		}
		out = append(out, m)
	}
	return s.do(wire.CmdPerformActions, wire.Params{"actions": out})
}

// Release all keys and pointer buttons currently depressed.
func (s *Session) ReleaseActions() error {
	return s.do(wire.CmdReleaseActions, nil)
}
