// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"fmt"
	"strings"

	"github.com/fedesog/webdriver/v2/wire"
)

type FindElementStrategy string

const (
	// Returns an element matching a CSS selector.
	CSSSelector = FindElementStrategy("css selector")
	// Returns an anchor element whose visible text matches the search value.
	LinkText = FindElementStrategy("link text")
	// Returns an anchor element whose visible text partially matches the search value.
	PartialLinkText = FindElementStrategy("partial link text")
	// Returns an element whose tag name matches the search value.
	TagName = FindElementStrategy("tag name")
	// Returns an element matching an XPath expression.
	XPath = FindElementStrategy("xpath")

	// The following are not W3C strategies; they are sent as CSS selectors.

	// Returns an element whose ID attribute matches the search value.
	ID = FindElementStrategy("id")
	// Returns an element whose NAME attribute matches the search value.
	Name = FindElementStrategy("name")
	// Returns an element whose class name contains the search value; compound class names are not permitted.
	ClassName = FindElementStrategy("class name")
)

// locator translates legacy strategies to the W3C ones.
func locator(using FindElementStrategy, value string) (wire.Params, error) {
	switch using {
	case CSSSelector, LinkText, PartialLinkText, TagName, XPath:
	case ID:
		using, value = CSSSelector, "#"+cssEscape(value)
	case Name:
		using, value = CSSSelector, `*[name="`+strings.ReplaceAll(value, `"`, `\"`)+`"]`
	case ClassName:
		if strings.ContainsAny(strings.TrimSpace(value), " \t\n") {
			return nil, wire.NewError("invalid selector", "compound class names are not permitted")
		}
		using, value = CSSSelector, "."+cssEscape(value)
	default:
		return nil, wire.NewError("invalid argument", fmt.Sprintf("unknown locator strategy %q", string(using)))
	}
	return wire.Params{"using": string(using), "value": value}, nil
}

// cssEscape escapes an identifier for use in a CSS selector.
func cssEscape(ident string) string {
	var b strings.Builder
	for i, r := range ident {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r >= 0x1 && r <= 0x1f, r == 0x7f:
			fmt.Fprintf(&b, `\%x `, r)
		case i == 0 && r >= '0' && r <= '9':
			fmt.Fprintf(&b, `\%x `, r)
		case i == 1 && r >= '0' && r <= '9' && ident[0] == '-':
			fmt.Fprintf(&b, `\%x `, r)
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// A WebElement is a reference to a DOM node, valid only within the session
// that found it. The client never caches anything about the node: every
// method asks the remote end, which reports ErrStaleElementReference once
// the node is gone.
type WebElement struct {
	s  *Session
	id string
}

// ID returns the id assigned by the remote end.
func (e WebElement) ID() string { return e.id }

// Session returns the owning session.
func (e WebElement) Session() *Session { return e.s }

func (e WebElement) ref() wire.ElementRef { return wire.ElementRef{ID: e.id} }

// MarshalJSON encodes e as a W3C element reference.
func (e WebElement) MarshalJSON() ([]byte, error) { return e.ref().MarshalJSON() }

// WebElementFromID binds an element id obtained elsewhere to s.
func (s *Session) WebElementFromID(id string) WebElement {
	return WebElement{s: s, id: id}
}

func (s *Session) findElement(cmd string, using FindElementStrategy, value string, args ...string) (WebElement, error) {
	p, err := locator(using, value)
	if err != nil {
		return WebElement{}, err
	}
	resp, err := s.execute(cmd, p, args...)
	if err != nil {
		return WebElement{}, err
	}
	ref, err := unmarshalValue[wire.ElementRef](resp)
	if err != nil {
		return WebElement{}, err
	}
	return WebElement{s: s, id: ref.ID}, nil
}

func (s *Session) findElements(cmd string, using FindElementStrategy, value string, args ...string) ([]WebElement, error) {
	p, err := locator(using, value)
	if err != nil {
		return nil, err
	}
	resp, err := s.execute(cmd, p, args...)
	if err != nil {
		return nil, err
	}
	refs, err := unmarshalValue[[]wire.ElementRef](resp)
	if err != nil {
		return nil, err
	}
	elements := make([]WebElement, len(refs))
	for i, ref := range refs {
		elements[i] = WebElement{s: s, id: ref.ID}
	}
	return elements, nil
}

// Search for an element on the page, starting from the document root.
// If nothing matches the error matches ErrNoSuchElement.
func (s *Session) FindElement(using FindElementStrategy, value string) (WebElement, error) {
	return s.findElement(wire.CmdFindElement, using, value)
}

// Search for multiple elements on the page, starting from the document root.
// If nothing matches the result is empty and the error nil.
func (s *Session) FindElements(using FindElementStrategy, value string) ([]WebElement, error) {
	return s.findElements(wire.CmdFindElements, using, value)
}

// Get the element on the page that currently has focus.
func (s *Session) ActiveElement() (WebElement, error) {
	resp, err := s.execute(wire.CmdGetActiveElement, nil)
	if err != nil {
		return WebElement{}, err
	}
	ref, err := unmarshalValue[wire.ElementRef](resp)
	if err != nil {
		return WebElement{}, err
	}
	return WebElement{s: s, id: ref.ID}, nil
}

// Send a sequence of key strokes to the element that currently has focus.
func (s *Session) SendKeysOnActiveElement(sequence string) error {
	e, err := s.ActiveElement()
	if err != nil {
		return err
	}
	return e.SendKeys(sequence)
}

// Search for an element on the page, starting from the identified element.
func (e WebElement) FindElement(using FindElementStrategy, value string) (WebElement, error) {
	return e.s.findElement(wire.CmdFindElementFromElement, using, value, e.id)
}

// Search for multiple elements on the page, starting from the identified element.
func (e WebElement) FindElements(using FindElementStrategy, value string) ([]WebElement, error) {
	return e.s.findElements(wire.CmdFindElementsFromElement, using, value, e.id)
}

// Click on an element.
func (e WebElement) Click() error {
	return e.s.do(wire.CmdElementClick, nil, e.id)
}

// Clear a TEXTAREA or text INPUT element's value.
func (e WebElement) Clear() error {
	return e.s.do(wire.CmdElementClear, nil, e.id)
}

// Send a sequence of key strokes to an element.
func (e WebElement) SendKeys(sequence string) error {
	p := wire.Params{"text": sequence, "value": strings.Split(sequence, "")}
	return e.s.do(wire.CmdElementSendKeys, p, e.id)
}

// Returns the visible text for the element.
func (e WebElement) Text() (string, error) {
	return e.s.getString(wire.CmdGetElementText, e.id)
}

// Query for an element's tag name.
func (e WebElement) TagName() (string, error) {
	return e.s.getString(wire.CmdGetElementTagName, e.id)
}

// Get the value of an element's attribute. ok is false when the attribute is not set.
func (e WebElement) Attribute(name string) (value string, ok bool, err error) {
	resp, err := e.s.execute(wire.CmdGetElementAttribute, nil, e.id, name)
	if err != nil {
		return "", false, err
	}
	v, err := unmarshalValue[*string](resp)
	if err != nil || v == nil {
		return "", false, err
	}
	return *v, true, nil
}

// Get the value of an element's DOM property.
func (e WebElement) Property(name string) (interface{}, error) {
	resp, err := e.s.execute(wire.CmdGetElementProperty, nil, e.id, name)
	if err != nil {
		return nil, err
	}
	return e.s.fromWire(resp)
}

// Query the value of an element's computed CSS property.
func (e WebElement) CSSValue(name string) (string, error) {
	return e.s.getString(wire.CmdGetElementCSSValue, e.id, name)
}

// Determine an element's location and size in CSS pixels.
func (e WebElement) Rect() (Rect, error) {
	resp, err := e.s.execute(wire.CmdGetElementRect, nil, e.id)
	if err != nil {
		return Rect{}, err
	}
	return unmarshalValue[Rect](resp)
}

// Determine if an OPTION element, or an INPUT element of type checkbox or radiobutton is currently selected.
func (e WebElement) IsSelected() (bool, error) {
	return e.s.getBool(wire.CmdIsElementSelected, e.id)
}

// Determine if an element is currently enabled.
func (e WebElement) IsEnabled() (bool, error) {
	return e.s.getBool(wire.CmdIsElementEnabled, e.id)
}

// Determine if an element is currently displayed.
func (e WebElement) IsDisplayed() (bool, error) {
	return e.s.getBool(wire.CmdIsElementDisplayed, e.id)
}

// Take a screenshot of the element's bounding box.
func (e WebElement) Screenshot() ([]byte, error) {
	resp, err := e.s.execute(wire.CmdTakeElementScreenshot, nil, e.id)
	if err != nil {
		return nil, err
	}
	return decodeBase64(resp)
}

// Test if two element references refer to the same DOM element. W3C ids are
// unique per node, so no round trip is needed.
func (e WebElement) Equal(other WebElement) bool {
	return e.s == other.s && e.id == other.id
}

// Get the shadow root hosted by the element.
func (e WebElement) ShadowRoot() (ShadowRoot, error) {
	resp, err := e.s.execute(wire.CmdGetElementShadowRoot, nil, e.id)
	if err != nil {
		return ShadowRoot{}, err
	}
	ref, err := unmarshalValue[wire.ShadowRef](resp)
	if err != nil {
		return ShadowRoot{}, err
	}
	return ShadowRoot{s: e.s, id: ref.ID}, nil
}

// ShadowRoot is a reference to a shadow root, scoped like a WebElement.
type ShadowRoot struct {
	s  *Session
	id string
}

func (r ShadowRoot) ID() string { return r.id }

// Search for an element inside the shadow root.
func (r ShadowRoot) FindElement(using FindElementStrategy, value string) (WebElement, error) {
	return r.s.findElement(wire.CmdFindElementFromShadow, using, value, r.id)
}

// Search for multiple elements inside the shadow root.
func (r ShadowRoot) FindElements(using FindElementStrategy, value string) ([]WebElement, error) {
	return r.s.findElements(wire.CmdFindElementsFromShadow, using, value, r.id)
}
