// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/fedesog/webdriver/v2/wire"
)

// ref returns the id of n, assigning one on first sight. A node keeps its
// id for the lifetime of its document.
func (ss *session) ref(w *window, n *html.Node) wire.ElementRef {
	if id, ok := ss.nodeIDs[n]; ok {
		return wire.ElementRef{ID: id}
	}
	id := uuid.NewString()
	ss.nodeIDs[n] = id
	ss.elements[id] = &element{node: n, window: w.handle, gen: w.gen}
	return wire.ElementRef{ID: id}
}

// lookup resolves an element id in the current window.
func (ss *session) lookup(id string) (*goquery.Selection, error) {
	el, ok := ss.elements[id]
	if !ok {
		return nil, errorf("no such element", "unknown element %s", id)
	}
	w, ok := ss.windows[el.window]
	if !ok || w.gen != el.gen {
		return nil, errorf("stale element reference", "element %s is not attached to the page document", id)
	}
	if el.window != ss.current {
		return nil, errorf("no such element", "element %s belongs to another window", id)
	}
	sel := w.doc.FindNodes(el.node)
	if sel.Length() == 0 {
		return nil, errorf("stale element reference", "element %s was removed from the document", id)
	}
	return sel, nil
}

func (ss *session) lookupArg(r request) (*goquery.Selection, error) {
	return ss.lookup(r.arg("elementId"))
}

// checkRefs fails when v references an element that cannot be resolved.
func (ss *session) checkRefs(v any) error {
	switch x := v.(type) {
	case wire.ElementRef:
		_, err := ss.lookup(x.ID)
		return err
	case []any:
		for _, e := range x {
			if err := ss.checkRefs(e); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, e := range x {
			if err := ss.checkRefs(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func search(root *goquery.Selection, using, value string) (*goquery.Selection, error) {
	switch using {
	case "css selector", "tag name":
		m, err := cascadia.Compile(value)
		if err != nil {
			return nil, errorf("invalid selector", "%q: %v", value, err)
		}
		return root.FindMatcher(m), nil
	case "link text", "partial link text":
		return root.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			text := visibleText(a)
			if using == "link text" {
				return text == value
			}
			return strings.Contains(text, value)
		}), nil
	case "xpath":
		return nil, errorf("invalid selector", "xpath is not supported")
	}
	return nil, errorf("invalid argument", "unknown location strategy %q", using)
}

func (ss *session) find(r request) (*window, *goquery.Selection, error) {
	w, err := ss.window()
	if err != nil {
		return nil, nil, err
	}
	using, err := r.str("using")
	if err != nil {
		return nil, nil, err
	}
	value, err := r.str("value")
	if err != nil {
		return nil, nil, err
	}
	root := w.doc.Selection
	if r.arg("elementId") != "" {
		if root, err = ss.lookupArg(r); err != nil {
			return nil, nil, err
		}
	}
	found, err := search(root, using, value)
	return w, found, err
}

func cmdFindElement(ss *session, r request) (any, error) {
	w, found, err := ss.find(r)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, errorf("no such element", "unable to locate element: %s=%v", r.params["using"], r.params["value"])
	}
	return ss.ref(w, found.Get(0)), nil
}

func cmdFindElements(ss *session, r request) (any, error) {
	w, found, err := ss.find(r)
	if err != nil {
		return nil, err
	}
	refs := make([]wire.ElementRef, 0, found.Length())
	for _, n := range found.Nodes {
		refs = append(refs, ss.ref(w, n))
	}
	return refs, nil
}

func cmdActiveElement(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	active := w.doc.Find("[autofocus]").First()
	if active.Length() == 0 {
		active = w.doc.Find("body").First()
	}
	if active.Length() == 0 {
		return nil, errorf("no such element", "document has no active element")
	}
	return ss.ref(w, active.Get(0)), nil
}

func cmdShadowRoot(ss *session, r request) (any, error) {
	if _, err := ss.lookupArg(r); err != nil {
		return nil, err
	}
	return nil, errorf("no such shadow root", "element has no shadow root")
}

func cmdNoShadowRoot(ss *session, r request) (any, error) {
	return nil, errorf("no such shadow root", "unknown shadow root %s", r.arg("shadowId"))
}

// visibleText collapses whitespace as rendered text would.
func visibleText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func tagName(sel *goquery.Selection) string {
	return strings.ToLower(goquery.NodeName(sel))
}

func hasAttr(sel *goquery.Selection, name string) bool {
	_, ok := sel.Attr(name)
	return ok
}

// style returns a property of the inline style attribute.
func style(sel *goquery.Selection, name string) string {
	for _, decl := range strings.Split(sel.AttrOr("style", ""), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func displayed(sel *goquery.Selection) bool {
	for s := sel; s.Length() > 0; s = s.Parent() {
		if hasAttr(s, "hidden") || style(s, "display") == "none" {
			return false
		}
	}
	return !(tagName(sel) == "input" && strings.EqualFold(sel.AttrOr("type", ""), "hidden"))
}

func editable(sel *goquery.Selection) bool {
	switch tagName(sel) {
	case "input", "textarea":
		return !hasAttr(sel, "readonly") && !hasAttr(sel, "disabled")
	}
	return hasAttr(sel, "contenteditable")
}

func value(sel *goquery.Selection) string {
	if v, ok := sel.Attr("value"); ok {
		return v
	}
	if tagName(sel) == "textarea" {
		return sel.Text()
	}
	return ""
}

func cmdText(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	if !displayed(sel) {
		return "", nil
	}
	return visibleText(sel), nil
}

func cmdTagName(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	return tagName(sel), nil
}

func cmdAttribute(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	if v, ok := sel.Attr(r.arg("name")); ok {
		return v, nil
	}
	return nil, nil
}

func cmdProperty(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	switch name := r.arg("name"); name {
	case "value":
		return value(sel), nil
	case "checked", "selected", "disabled", "hidden", "readOnly":
		return hasAttr(sel, strings.ToLower(name)), nil
	case "tagName":
		return strings.ToUpper(tagName(sel)), nil
	case "textContent":
		return sel.Text(), nil
	case "innerText":
		return visibleText(sel), nil
	case "id", "className":
		if name == "className" {
			name = "class"
		}
		return sel.AttrOr(name, ""), nil
	default:
		if v, ok := sel.Attr(name); ok {
			return v, nil
		}
		return nil, nil
	}
}

func cmdCSSValue(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	return style(sel, r.arg("name")), nil
}

func cmdElementRect(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	// documents are not laid out: elements are stacked in document order
	index := sel.PrevAll().Length()
	return map[string]any{"x": 8, "y": 8 + 20*index, "width": 100, "height": 20}, nil
}

func cmdIsSelected(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	return hasAttr(sel, "checked") || hasAttr(sel, "selected"), nil
}

func cmdIsEnabled(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	return !hasAttr(sel, "disabled"), nil
}

func cmdIsDisplayed(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	return displayed(sel), nil
}

// cmdClick records the click. Checkboxes and radio buttons toggle, links are
// followed.
func cmdClick(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	if !displayed(sel) {
		return nil, errorf("element not interactable", "element is not displayed")
	}
	r.srv.clicks = append(r.srv.clicks, sel.AttrOr("id", tagName(sel)))

	switch tagName(sel) {
	case "input":
		switch strings.ToLower(sel.AttrOr("type", "")) {
		case "checkbox":
			if hasAttr(sel, "checked") {
				sel.RemoveAttr("checked")
			} else {
				sel.SetAttr("checked", "")
			}
		case "radio":
			sel.SetAttr("checked", "")
		}
	case "a":
		href, ok := sel.Attr("href")
		if !ok {
			break
		}
		w, err := ss.window()
		if err != nil {
			return nil, err
		}
		target, err := resolve(w.url, href)
		if err != nil {
			return nil, err
		}
		return nil, ss.navigate(r.srv, target, true)
	}
	return nil, nil
}

func resolve(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", errorf("invalid argument", "bad href %q", href)
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref.String(), nil
	}
	return b.ResolveReference(ref).String(), nil
}

func cmdClear(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	if !editable(sel) {
		return nil, errorf("invalid element state", "element is not editable")
	}
	sel.SetAttr("value", "")
	return nil, nil
}

func cmdSendKeys(ss *session, r request) (any, error) {
	sel, err := ss.lookupArg(r)
	if err != nil {
		return nil, err
	}
	text, err := r.str("text")
	if err != nil {
		return nil, err
	}
	if !editable(sel) || !displayed(sel) {
		return nil, errorf("element not interactable", "element cannot receive keys")
	}
	sel.SetAttr("value", value(sel)+text)
	return nil, nil
}

func cmdElementScreenshot(ss *session, r request) (any, error) {
	if _, err := ss.lookupArg(r); err != nil {
		return nil, err
	}
	return ScreenshotPNG, nil
}
