// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"strings"

	"github.com/fedesog/webdriver/v2/wire"
)

// BrowserKind identifies the browser behind a session. It is resolved once,
// from the negotiated browserName.
type BrowserKind int

const (
	BrowserUnknown BrowserKind = iota
	BrowserChrome
	BrowserFirefox
	BrowserEdge
	BrowserSafari
)

func (k BrowserKind) String() string {
	switch k {
	case BrowserChrome:
		return "chrome"
	case BrowserFirefox:
		return "firefox"
	case BrowserEdge:
		return "edge"
	case BrowserSafari:
		return "safari"
	}
	return "unknown browser"
}

// ParseBrowserKind maps a browserName capability to a BrowserKind.
func ParseBrowserKind(name string) BrowserKind {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "")) {
	case "chrome", "chromium", "googlechrome", "chrome-headless-shell":
		return BrowserChrome
	case "firefox", "mozillafirefox":
		return BrowserFirefox
	case "msedge", "microsoftedge", "edge":
		return BrowserEdge
	case "safari", "safaritechnologypreview":
		return BrowserSafari
	}
	return BrowserUnknown
}

// vendor implements the commands that only some browsers understand.
type vendor interface {
	Kind() BrowserKind
	executeCDP(s *Session, method string, params map[string]interface{}) (interface{}, error)
	fullPageScreenshot(s *Session) ([]byte, error)
	context(s *Session) (string, error)
	setContext(s *Session, ctx string) error
}

func vendorFor(k BrowserKind) vendor {
	switch k {
	case BrowserChrome:
		return chromium{kind: k, cdp: wire.CmdChromeExecuteCDP}
	case BrowserEdge:
		return chromium{kind: k, cdp: wire.CmdEdgeExecuteCDP}
	case BrowserFirefox:
		return gecko{}
	}
	return generic{kind: k}
}

// generic has no vendor commands.
type generic struct{ kind BrowserKind }

func (g generic) Kind() BrowserKind { return g.kind }

func (g generic) executeCDP(*Session, string, map[string]interface{}) (interface{}, error) {
	return nil, unsupported("ExecuteCDP", g.kind)
}

func (g generic) fullPageScreenshot(*Session) ([]byte, error) {
	return nil, unsupported("FullPageScreenshot", g.kind)
}

func (g generic) context(*Session) (string, error) {
	return "", unsupported("Context", g.kind)
}

func (g generic) setContext(*Session, string) error {
	return unsupported("SetContext", g.kind)
}

// chromium covers chromedriver and msedgedriver, which differ only in the
// vendor prefix of their commands.
type chromium struct {
	kind BrowserKind
	cdp  string
}

func (c chromium) Kind() BrowserKind { return c.kind }

func (c chromium) executeCDP(s *Session, method string, params map[string]interface{}) (interface{}, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	resp, err := s.execute(c.cdp, wire.Params{"cmd": method, "params": params})
	if err != nil {
		return nil, err
	}
	return s.fromWire(resp)
}

func (c chromium) fullPageScreenshot(*Session) ([]byte, error) {
	return nil, unsupported("FullPageScreenshot", c.kind)
}

func (c chromium) context(*Session) (string, error) {
	return "", unsupported("Context", c.kind)
}

func (c chromium) setContext(*Session, string) error {
	return unsupported("SetContext", c.kind)
}

// gecko is geckodriver.
type gecko struct{}

func (gecko) Kind() BrowserKind { return BrowserFirefox }

func (gecko) executeCDP(*Session, string, map[string]interface{}) (interface{}, error) {
	return nil, unsupported("ExecuteCDP", BrowserFirefox)
}

func (gecko) fullPageScreenshot(s *Session) ([]byte, error) {
	resp, err := s.execute(wire.CmdFirefoxFullScreenshot, nil)
	if err != nil {
		return nil, err
	}
	return decodeBase64(resp)
}

func (gecko) context(s *Session) (string, error) {
	return s.getString(wire.CmdFirefoxGetContext)
}

func (gecko) setContext(s *Session, ctx string) error {
	return s.do(wire.CmdFirefoxSetContext, wire.Params{"context": ctx})
}

// Firefox contexts for SetContext.
const (
	ContextContent = "content"
	ContextChrome  = "chrome"
)

// ExecuteCDP sends a Chrome DevTools Protocol command through the driver.
// Only Chrome and Edge sessions support it.
func (s *Session) ExecuteCDP(method string, params map[string]interface{}) (interface{}, error) {
	return s.browser.executeCDP(s, method, params)
}

// FullPageScreenshot captures the whole document, not only the viewport.
// Only Firefox sessions support it.
func (s *Session) FullPageScreenshot() ([]byte, error) {
	return s.browser.fullPageScreenshot(s)
}

// Context returns the Firefox context commands run in.
func (s *Session) Context() (string, error) {
	return s.browser.context(s)
}

// SetContext switches Firefox between ContextContent and ContextChrome.
func (s *Session) SetContext(ctx string) error {
	return s.browser.setContext(s, ctx)
}
