// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

// Standard capability names.
const (
	CapBrowserName               = "browserName"
	CapBrowserVersion            = "browserVersion"
	CapPlatformName              = "platformName"
	CapAcceptInsecureCerts       = "acceptInsecureCerts"
	CapPageLoadStrategy          = "pageLoadStrategy"
	CapProxy                     = "proxy"
	CapSetWindowRect             = "setWindowRect"
	CapTimeouts                  = "timeouts"
	CapStrictFileInteractability = "strictFileInteractability"
	CapUnhandledPromptBehavior   = "unhandledPromptBehavior"
	CapWebSocketURL              = "webSocketUrl"
)

// Capabilities is a map that stores capabilities of a session. Values are
// JSON compatible: strings, booleans, numbers, nested maps and slices.
// Vendor specific entries use prefixed keys such as "goog:chromeOptions".
type Capabilities map[string]interface{}

func (c Capabilities) StringValue(name string) string {
	s, _ := c[name].(string)
	return s
}

func (c Capabilities) BoolValue(name string) bool {
	b, _ := c[name].(bool)
	return b
}

func (c Capabilities) BrowserName() string    { return c.StringValue(CapBrowserName) }
func (c Capabilities) BrowserVersion() string { return c.StringValue(CapBrowserVersion) }
func (c Capabilities) PlatformName() string   { return c.StringValue(CapPlatformName) }

// Clone returns a deep copy of c.
func (c Capabilities) Clone() Capabilities {
	if c == nil {
		return nil
	}
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a copy of c where every entry of other replaces the entry of
// c with the same name.
func (c Capabilities) Merge(other Capabilities) Capabilities {
	out := c.Clone()
	if out == nil {
		out = Capabilities{}
	}
	for k, v := range other {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case Capabilities:
		return x.Clone()
	case []interface{}:
		s := make([]interface{}, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	case []string:
		return append([]string(nil), x...)
	}
	return v
}

// SessionRequest is the W3C capabilities object: AlwaysMatch applies to every
// candidate, each FirstMatch entry is one alternative.
type SessionRequest struct {
	AlwaysMatch Capabilities
	FirstMatch  []Capabilities
}

func (r SessionRequest) payload() map[string]interface{} {
	always := r.AlwaysMatch
	if always == nil {
		always = Capabilities{}
	}
	first := r.FirstMatch
	if len(first) == 0 {
		first = []Capabilities{{}}
	}
	return map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": always,
			"firstMatch":  first,
		},
		// for JSON Wire Protocol servers
		"desiredCapabilities": always.Merge(first[0]),
	}
}
