// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesog/webdriver/v2/wire"
)

const loginPage = `<html><head><title>login</title></head><body>
<form><input id="user" name="user"><input id="remember" type="checkbox"></form>
<p id="hidden" style="display: none">secret</p>
<a id="next" href="/next">next page</a>
</body></html>`

// call sends one command to h and returns the status and the decoded value.
func call(t *testing.T, h http.Handler, method, path, body string) (int, any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var resp struct {
		Value json.RawMessage `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	v, err := wire.DecodeValue(resp.Value)
	require.NoError(t, err)
	return rec.Code, v
}

func errorCode(t *testing.T, v any) string {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "%v is not an error object", v)
	code, _ := m["error"].(string)
	return code
}

func newSession(t *testing.T, s *Server, body string) (string, map[string]any) {
	t.Helper()
	status, v := call(t, s, http.MethodPost, "/session", body)
	require.Equal(t, http.StatusOK, status, v)
	m := v.(map[string]any)
	return m["sessionId"].(string), m["capabilities"].(map[string]any)
}

func TestStatus(t *testing.T) {
	status, v := call(t, New(), http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, v.(map[string]any)["ready"])
}

func TestNewSessionCapabilities(t *testing.T) {
	s := New(WithCapabilities(map[string]any{"browserVersion": "99"}))

	_, caps := newSession(t, s, `{"capabilities":{"alwaysMatch":{"acceptInsecureCerts":true},"firstMatch":[{"browserName":"firefox"},{"browserName":"chrome"}]}}`)
	assert.Equal(t, "firefox", caps["browserName"])
	assert.Equal(t, true, caps["acceptInsecureCerts"])
	assert.Equal(t, "99", caps["browserVersion"], "server capabilities win")
	assert.Equal(t, "linux", caps["platformName"])
	assert.Equal(t, map[string]any{"implicit": int64(0), "pageLoad": int64(300000), "script": int64(30000)}, caps["timeouts"])

	_, caps = newSession(t, s, `{"desiredCapabilities":{"browserName":"safari"}}`)
	assert.Equal(t, "safari", caps["browserName"])
	assert.Len(t, s.SessionIDs(), 2)
}

func TestRejectSessions(t *testing.T) {
	s := New()
	s.RejectSessions("no browser available")
	status, v := call(t, s, http.MethodPost, "/session", `{}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "session not created", errorCode(t, v))

	s.RejectSessions("")
	newSession(t, s, `{}`)
}

func TestErrorResponses(t *testing.T) {
	s := New()
	id, _ := newSession(t, s, `{}`)

	for _, tc := range []struct {
		method, path, body string
		status             int
		code               string
	}{
		{http.MethodGet, "/nope", "", http.StatusNotFound, "unknown command"},
		{http.MethodPut, "/session/" + id + "/url", "", http.StatusMethodNotAllowed, "unknown method"},
		{http.MethodGet, "/session/missing/title", "", http.StatusNotFound, "invalid session id"},
		{http.MethodPost, "/session/" + id + "/url", `{"url":"relative"}`, http.StatusBadRequest, "invalid argument"},
		{http.MethodPost, "/session/" + id + "/url", `not json`, http.StatusBadRequest, "invalid argument"},
		{http.MethodPost, "/session/" + id + "/element", `{"using":"xpath","value":"//p"}`, http.StatusBadRequest, "invalid selector"},
		{http.MethodPost, "/session/" + id + "/element", `{"using":"css selector","value":"#none"}`, http.StatusNotFound, "no such element"},
		{http.MethodGet, "/session/" + id + "/alert/text", "", http.StatusNotFound, "no such alert"},
		{http.MethodGet, "/session/" + id + "/cookie/none", "", http.StatusNotFound, "no such cookie"},
		{http.MethodPost, "/session/" + id + "/goog/cdp/execute", `{"cmd":"Page.reload","params":{}}`, http.StatusNotFound, "unknown command"},
	} {
		status, v := call(t, s, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.status, status, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.code, errorCode(t, v), "%s %s", tc.method, tc.path)
	}
}

func TestFailNextQueues(t *testing.T) {
	s := New()
	s.FailNext("timeout", "slow")
	s.FailNext("made up error", "what")

	status, v := call(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "timeout", errorCode(t, v))
	status, v = call(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusInternalServerError, status, "unknown codes are server errors")
	assert.Equal(t, "made up error", errorCode(t, v))
	status, _ = call(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, s.Requests(), 3)
}

func TestNavigationMakesElementsStale(t *testing.T) {
	s := New()
	s.AddPage("/login", loginPage)
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id

	_, v := call(t, s, http.MethodPost, base+"/url", `{"url":"http://example.test/login"}`)
	assert.Nil(t, v)
	_, v = call(t, s, http.MethodGet, base+"/title", "")
	assert.Equal(t, "login", v)

	_, v = call(t, s, http.MethodPost, base+"/element", `{"using":"css selector","value":"#user"}`)
	user, ok := v.(wire.ElementRef)
	require.True(t, ok, "%v", v)
	_, again := call(t, s, http.MethodPost, base+"/element", `{"using":"tag name","value":"input"}`)
	assert.Equal(t, user, again, "ids are stable while the document lives")

	_, v = call(t, s, http.MethodPost, base+"/element/"+user.ID+"/value", `{"text":"bob"}`)
	assert.Nil(t, v)
	_, v = call(t, s, http.MethodGet, base+"/element/"+user.ID+"/property/value", "")
	assert.Equal(t, "bob", v)

	call(t, s, http.MethodPost, base+"/refresh", `{}`)
	status, v := call(t, s, http.MethodGet, base+"/element/"+user.ID+"/name", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "stale element reference", errorCode(t, v))

	status, v = call(t, s, http.MethodGet, base+"/element/unknown/name", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no such element", errorCode(t, v))
}

func TestClickFollowsLinks(t *testing.T) {
	s := New()
	s.AddPage("/login", loginPage)
	s.AddPage("/next", `<html><title>next</title></html>`)
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id
	call(t, s, http.MethodPost, base+"/url", `{"url":"http://example.test/login"}`)

	_, v := call(t, s, http.MethodPost, base+"/element", `{"using":"css selector","value":"#remember"}`)
	box := v.(wire.ElementRef)
	call(t, s, http.MethodPost, base+"/element/"+box.ID+"/click", `{}`)
	_, v = call(t, s, http.MethodGet, base+"/element/"+box.ID+"/selected", "")
	assert.Equal(t, true, v)

	_, v = call(t, s, http.MethodPost, base+"/element", `{"using":"css selector","value":"#hidden"}`)
	hidden := v.(wire.ElementRef)
	status, v := call(t, s, http.MethodPost, base+"/element/"+hidden.ID+"/click", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "element not interactable", errorCode(t, v))

	_, v = call(t, s, http.MethodPost, base+"/element", `{"using":"link text","value":"next page"}`)
	link := v.(wire.ElementRef)
	call(t, s, http.MethodPost, base+"/element/"+link.ID+"/click", `{}`)
	_, v = call(t, s, http.MethodGet, base+"/url", "")
	assert.Equal(t, "http://example.test/next", v)
	assert.Equal(t, []string{"remember", "next"}, s.Clicks())
}

func TestAlertBlocksCommands(t *testing.T) {
	s := New(WithScript(func(sc *Script) (any, error) {
		sc.OpenAlert(sc.Source)
		return nil, nil
	}))
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id

	call(t, s, http.MethodPost, base+"/execute/sync", `{"script":"hello","args":[]}`)
	_, v := call(t, s, http.MethodGet, base+"/alert/text", "")
	assert.Equal(t, "hello", v)
	_, v = call(t, s, http.MethodGet, base+"/timeouts", "")
	assert.NotNil(t, v, "timeouts are served with a prompt open")

	status, v := call(t, s, http.MethodGet, base+"/title", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "unexpected alert open", errorCode(t, v))
	status, _ = call(t, s, http.MethodGet, base+"/title", "")
	assert.Equal(t, http.StatusOK, status, "the prompt was dismissed")
}

func TestScriptErrors(t *testing.T) {
	s := New()
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id

	_, v := call(t, s, http.MethodPost, base+"/execute/sync", `{"script":"return 1","args":[]}`)
	assert.Nil(t, v, "no handler answers null")

	s.HandleScript(func(sc *Script) (any, error) {
		if sc.Async {
			return nil, ErrScriptTimeout
		}
		return nil, assert.AnError
	})
	_, v = call(t, s, http.MethodPost, base+"/execute/sync", `{"script":"x","args":[]}`)
	assert.Equal(t, "javascript error", errorCode(t, v))
	_, v = call(t, s, http.MethodPost, base+"/execute/async", `{"script":"x","args":[]}`)
	assert.Equal(t, "script timeout", errorCode(t, v))

	status, v := call(t, s, http.MethodPost, base+"/execute/sync", `{"script":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid argument", errorCode(t, v))
}

func TestCookies(t *testing.T) {
	s := New()
	s.AddPage("/login", loginPage)
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id

	status, v := call(t, s, http.MethodPost, base+"/cookie", `{"cookie":{"name":"a","value":"1"}}`)
	assert.Equal(t, http.StatusBadRequest, status, "about:blank has no cookies")
	assert.Equal(t, "invalid cookie domain", errorCode(t, v))

	call(t, s, http.MethodPost, base+"/url", `{"url":"http://example.test/login"}`)
	status, v = call(t, s, http.MethodPost, base+"/cookie", `{"cookie":{"name":"a","value":"1","domain":"other.test"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid cookie domain", errorCode(t, v))

	call(t, s, http.MethodPost, base+"/cookie", `{"cookie":{"name":"a","value":"1"}}`)
	call(t, s, http.MethodPost, base+"/cookie", `{"cookie":{"name":"a","value":"2","path":"/app"}}`)
	_, v = call(t, s, http.MethodGet, base+"/cookie/a", "")
	assert.Equal(t, map[string]any{
		"name": "a", "value": "2", "path": "/app", "domain": "example.test",
		"secure": false, "httpOnly": false, "sameSite": "Lax",
	}, v)

	call(t, s, http.MethodDelete, base+"/cookie", "")
	_, v = call(t, s, http.MethodGet, base+"/cookie", "")
	assert.Equal(t, []any{}, v)
}

func TestClosingLastWindowEndsSession(t *testing.T) {
	s := New()
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id

	_, v := call(t, s, http.MethodPost, base+"/window/new", `{"type":"window"}`)
	handle := v.(map[string]any)["handle"].(string)
	_, v = call(t, s, http.MethodDelete, base+"/window", "")
	assert.Equal(t, []any{handle}, v)

	status, v := call(t, s, http.MethodGet, base+"/title", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no such window", errorCode(t, v))

	call(t, s, http.MethodPost, base+"/window", `{"handle":"`+handle+`"}`)
	_, v = call(t, s, http.MethodDelete, base+"/window", "")
	assert.Equal(t, []any{}, v)
	assert.Empty(t, s.SessionIDs())
}

func TestVendorRoutes(t *testing.T) {
	s := New(WithCapabilities(map[string]any{"browserName": "firefox"}))
	id, _ := newSession(t, s, `{}`)
	base := "/session/" + id

	_, v := call(t, s, http.MethodGet, base+"/moz/context", "")
	assert.Equal(t, "content", v)
	status, v := call(t, s, http.MethodPost, base+"/moz/context", `{"context":"kernel"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid argument", errorCode(t, v))
	status, _ = call(t, s, http.MethodGet, base+"/moz/screenshot/full", "")
	assert.Equal(t, http.StatusOK, status)
	status, v = call(t, s, http.MethodPost, base+"/ms/cdp/execute", `{"cmd":"Page.reload","params":{}}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unknown command", errorCode(t, v))
}
