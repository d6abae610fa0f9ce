// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"net/url"
	"slices"
	"strings"

	"github.com/fedesog/webdriver/v2/wire"
)

func cmdWindowHandle(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	return w.handle, nil
}

func cmdWindowHandles(ss *session, r request) (any, error) {
	return append([]string{}, ss.order...), nil
}

func cmdNewWindow(ss *session, r request) (any, error) {
	typ, _ := r.params["type"].(string)
	if typ != "window" {
		typ = "tab"
	}
	w := ss.openWindow()
	return map[string]any{"handle": w.handle, "type": typ}, nil
}

func cmdSwitchToWindow(ss *session, r request) (any, error) {
	handle, err := r.str("handle")
	if err != nil {
		return nil, err
	}
	if _, ok := ss.windows[handle]; !ok {
		return nil, errorf("no such window", "unknown window %s", handle)
	}
	ss.current = handle
	return nil, nil
}

// cmdCloseWindow closes the current window. Closing the last one ends the
// session.
func cmdCloseWindow(ss *session, r request) (any, error) {
	if _, err := ss.window(); err != nil {
		return nil, err
	}
	delete(ss.windows, ss.current)
	ss.order = slices.DeleteFunc(ss.order, func(h string) bool { return h == ss.current })
	if len(ss.order) == 0 {
		delete(r.srv.sessions, ss.id)
	}
	return append([]string{}, ss.order...), nil
}

func cmdWindowRect(ss *session, r request) (any, error) {
	if _, err := ss.window(); err != nil {
		return nil, err
	}
	return ss.rect, nil
}

func cmdSetWindowRect(ss *session, r request) (any, error) {
	if _, err := ss.window(); err != nil {
		return nil, err
	}
	for _, k := range []string{"x", "y", "width", "height"} {
		switch v := r.params[k].(type) {
		case nil:
		case int64, float64:
			ss.rect[k] = v
		default:
			return nil, errorf("invalid argument", "%s must be a number", k)
		}
	}
	return ss.rect, nil
}

func cmdMaximize(ss *session, r request) (any, error) {
	if _, err := ss.window(); err != nil {
		return nil, err
	}
	ss.rect = map[string]any{"x": 0, "y": 0, "width": 1920, "height": 1080}
	return ss.rect, nil
}

// cmdSwitchToFrame validates the frame. Frames are not loaded, so commands
// keep running against the top-level document.
func cmdSwitchToFrame(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	frames := w.doc.Find("iframe, frame")
	switch id := r.params["id"].(type) {
	case nil:
	case int64:
		if id < 0 || int(id) >= frames.Length() {
			return nil, errorf("no such frame", "no frame with index %d", id)
		}
	case wire.ElementRef:
		sel, err := ss.lookup(id.ID)
		if err != nil {
			return nil, err
		}
		if t := tagName(sel); t != "iframe" && t != "frame" {
			return nil, errorf("no such frame", "element is a %s", t)
		}
	default:
		return nil, errorf("invalid argument", "frame id must be null, a number or an element")
	}
	return nil, nil
}

type cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path"`
	Domain   string `json:"domain"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
	Expiry   int64  `json:"expiry,omitempty"`
	SameSite string `json:"sameSite"`
}

func cmdCookies(ss *session, r request) (any, error) {
	return append([]cookie{}, ss.cookies...), nil
}

func cmdCookie(ss *session, r request) (any, error) {
	name := r.arg("name")
	for _, c := range ss.cookies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, errorf("no such cookie", "no cookie named %s", name)
}

func cmdAddCookie(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	m, ok := r.params["cookie"].(map[string]any)
	if !ok {
		return nil, errorf("invalid argument", "cookie must be an object")
	}
	c := cookie{Path: "/", SameSite: "Lax"}
	c.Name, _ = m["name"].(string)
	c.Value, ok = m["value"].(string)
	if c.Name == "" || !ok {
		return nil, errorf("invalid argument", "cookie needs a name and a value")
	}
	host := ""
	if u, err := url.Parse(w.url); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		return nil, errorf("invalid cookie domain", "document %s cannot have cookies", w.url)
	}
	c.Domain = host
	if d, _ := m["domain"].(string); d != "" {
		if !strings.HasSuffix(host, strings.TrimPrefix(d, ".")) {
			return nil, errorf("invalid cookie domain", "%s does not match %s", d, host)
		}
		c.Domain = d
	}
	if p, _ := m["path"].(string); p != "" {
		c.Path = p
	}
	if s, _ := m["sameSite"].(string); s != "" {
		c.SameSite = s
	}
	c.Secure, _ = m["secure"].(bool)
	c.HTTPOnly, _ = m["httpOnly"].(bool)
	c.Expiry, _ = m["expiry"].(int64)

	ss.cookies = slices.DeleteFunc(ss.cookies, func(old cookie) bool { return old.Name == c.Name })
	ss.cookies = append(ss.cookies, c)
	return nil, nil
}

func cmdDeleteCookie(ss *session, r request) (any, error) {
	name := r.arg("name")
	ss.cookies = slices.DeleteFunc(ss.cookies, func(c cookie) bool { return c.Name == name })
	return nil, nil
}

func cmdDeleteAllCookies(ss *session, r request) (any, error) {
	ss.cookies = nil
	return nil, nil
}

func cmdAlertText(ss *session, r request) (any, error) {
	if ss.alert == nil {
		return nil, errorf("no such alert", "no user prompt is open")
	}
	return ss.alert.text, nil
}

func cmdSendAlertText(ss *session, r request) (any, error) {
	if ss.alert == nil {
		return nil, errorf("no such alert", "no user prompt is open")
	}
	text, err := r.str("text")
	if err != nil {
		return nil, err
	}
	ss.alert.input = text
	return nil, nil
}

func cmdCloseAlert(ss *session, r request) (any, error) {
	if ss.alert == nil {
		return nil, errorf("no such alert", "no user prompt is open")
	}
	ss.alert = nil
	return nil, nil
}

// cmdPerformActions only validates the sequences and their origins.
func cmdPerformActions(ss *session, r request) (any, error) {
	seqs, ok := r.params["actions"].([]any)
	if !ok {
		return nil, errorf("invalid argument", "actions must be an array")
	}
	for _, seq := range seqs {
		m, ok := seq.(map[string]any)
		if !ok {
			return nil, errorf("invalid argument", "action sequence must be an object")
		}
		switch m["type"] {
		case "key", "pointer", "wheel", "none":
		default:
			return nil, errorf("invalid argument", "unknown input source type %v", m["type"])
		}
		if err := ss.checkRefs(m["actions"]); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func cmdScreenshot(ss *session, r request) (any, error) {
	if _, err := ss.window(); err != nil {
		return nil, err
	}
	return ScreenshotPNG, nil
}

func cmdPrint(ss *session, r request) (any, error) {
	if _, err := ss.window(); err != nil {
		return nil, err
	}
	if o, ok := r.params["orientation"].(string); ok && o != "portrait" && o != "landscape" {
		return nil, errorf("invalid argument", "orientation %q", o)
	}
	return PrintedPDF, nil
}

func browserName(ss *session) string {
	name, _ := ss.caps["browserName"].(string)
	return strings.ToLower(name)
}

// cmdExecuteCDP answers vendor CDP commands of sessions of the given
// browser, echoing the method.
func cmdExecuteCDP(browser string) command {
	return func(ss *session, r request) (any, error) {
		if browserName(ss) != browser {
			return nil, errorf("unknown command", "%s is not a %s session", ss.id, browser)
		}
		method, err := r.str("cmd")
		if err != nil {
			return nil, err
		}
		return map[string]any{"method": method, "params": r.params["params"]}, nil
	}
}

func firefoxOnly(c command) command {
	return func(ss *session, r request) (any, error) {
		if browserName(ss) != "firefox" {
			return nil, errorf("unknown command", "%s is not a firefox session", ss.id)
		}
		return c(ss, r)
	}
}

func cmdContext(ss *session, r request) (any, error) {
	return ss.context, nil
}

func cmdSetContext(ss *session, r request) (any, error) {
	ctx, err := r.str("context")
	if err != nil {
		return nil, err
	}
	if ctx != "content" && ctx != "chrome" {
		return nil, errorf("invalid argument", "unknown context %q", ctx)
	}
	ss.context = ctx
	return nil, nil
}
