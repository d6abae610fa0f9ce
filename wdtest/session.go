// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/fedesog/webdriver/v2/wire"
)

const blankPage = "<html><head><title></title></head><body></body></html>"

type session struct {
	id       string
	caps     map[string]any
	timeouts map[string]any

	windows map[string]*window
	order   []string
	current string

	elements map[string]*element
	nodeIDs  map[*html.Node]string

	cookies []cookie
	alert   *alert
	rect    map[string]any
	context string
}

// window is a top-level browsing context.
type window struct {
	handle  string
	url     string
	doc     *goquery.Document
	gen     int
	history []string
	pos     int
}

type element struct {
	node   *html.Node
	window string
	gen    int
}

type alert struct {
	text  string
	input string
}

type request struct {
	*http.Request
	params map[string]any
	srv    *Server
}

func (r request) arg(name string) string { return chi.URLParam(r.Request, name) }

func (r request) str(name string) (string, error) {
	v, ok := r.params[name].(string)
	if !ok {
		return "", errorf("invalid argument", "%s must be a string", name)
	}
	return v, nil
}

// command implements one endpoint. The server lock is held while it runs.
type command func(ss *session, r request) (any, error)

func (s *Server) cmd(c command) http.HandlerFunc { return s.handle(c, false) }

// prompt is cmd for commands allowed while an alert is open.
func (s *Server) prompt(c command) http.HandlerFunc { return s.handle(c, true) }

func (s *Server) handle(c command, promptOK bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := decodeParams(r)
		if err != nil {
			writeError(w, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		id := chi.URLParam(r, "sessionId")
		ss, ok := s.sessions[id]
		if !ok {
			writeError(w, errorf("invalid session id", "no active session with id %s", id))
			return
		}
		if ss.alert != nil && !promptOK {
			text := ss.alert.text
			ss.alert = nil
			writeError(w, errorf("unexpected alert open", "dismissed user prompt: %s", text))
			return
		}
		v, err := c(ss, request{Request: r, params: params, srv: s})
		if err != nil {
			writeError(w, err)
			return
		}
		writeValue(w, v)
	}
}

func decodeParams(r *http.Request) (map[string]any, error) {
	if r.Method != http.MethodPost {
		return map[string]any{}, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errorf("invalid argument", "reading body: %v", err)
	}
	v, err := wire.DecodeValue(body)
	if err != nil {
		return nil, errorf("invalid argument", "body is not JSON: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errorf("invalid argument", "body must be a JSON object")
	}
	return m, nil
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	params, err := decodeParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject != "" {
		writeError(w, errorf("session not created", "%s", s.reject))
		return
	}

	caps := requestedCapabilities(params)
	defaults := map[string]any{
		"browserName":         "wdtest",
		"browserVersion":      "1.0",
		"platformName":        "linux",
		"acceptInsecureCerts": false,
		"pageLoadStrategy":    "normal",
		"setWindowRect":       true,
	}
	for k, v := range defaults {
		if _, ok := caps[k]; !ok {
			caps[k] = v
		}
	}
	for k, v := range s.caps {
		caps[k] = v
	}

	ss := &session{
		id:       uuid.NewString(),
		caps:     caps,
		timeouts: map[string]any{"implicit": int64(0), "pageLoad": int64(300000), "script": int64(30000)},
		windows:  map[string]*window{},
		elements: map[string]*element{},
		nodeIDs:  map[*html.Node]string{},
		rect:     map[string]any{"x": 0, "y": 0, "width": 1280, "height": 800},
		context:  "content",
	}
	caps["timeouts"] = ss.timeouts
	ss.openWindow()
	s.sessions[ss.id] = ss
	s.log.Debug("wdtest session created", "session", ss.id, "browser", caps["browserName"])
	writeValue(w, map[string]any{"sessionId": ss.id, "capabilities": caps})
}

// requestedCapabilities merges alwaysMatch with the first firstMatch entry,
// falling back to the legacy desiredCapabilities.
func requestedCapabilities(params map[string]any) map[string]any {
	caps := map[string]any{}
	if c, ok := params["capabilities"].(map[string]any); ok {
		if always, ok := c["alwaysMatch"].(map[string]any); ok {
			for k, v := range always {
				caps[k] = v
			}
		}
		if first, ok := c["firstMatch"].([]any); ok && len(first) > 0 {
			if m, ok := first[0].(map[string]any); ok {
				for k, v := range m {
					caps[k] = v
				}
			}
		}
		return caps
	}
	if desired, ok := params["desiredCapabilities"].(map[string]any); ok {
		for k, v := range desired {
			caps[k] = v
		}
	}
	return caps
}

func cmdDeleteSession(ss *session, r request) (any, error) {
	delete(r.srv.sessions, ss.id)
	return nil, nil
}

func cmdGetTimeouts(ss *session, r request) (any, error) {
	return ss.timeouts, nil
}

func cmdSetTimeouts(ss *session, r request) (any, error) {
	set := map[string]any{}
	for _, name := range []string{"implicit", "pageLoad", "script"} {
		v, ok := r.params[name]
		if !ok {
			continue
		}
		if v == nil && name == "script" {
			set[name] = nil
			continue
		}
		n, ok := v.(int64)
		if !ok || n < 0 {
			return nil, errorf("invalid argument", "%s must be a non-negative integer", name)
		}
		set[name] = n
	}
	for k, v := range set {
		ss.timeouts[k] = v
	}
	return nil, nil
}

func (ss *session) openWindow() *window {
	w := &window{handle: uuid.NewString()}
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(blankPage))
	w.url, w.doc = "about:blank", doc
	w.history = []string{w.url}
	ss.windows[w.handle] = w
	ss.order = append(ss.order, w.handle)
	if ss.current == "" {
		ss.current = w.handle
	}
	return w
}

func (ss *session) window() (*window, error) {
	w, ok := ss.windows[ss.current]
	if !ok {
		return nil, errorf("no such window", "the current window was closed")
	}
	return w, nil
}

// load returns the document for rawURL: a registered page, or the body of
// an HTTP GET.
func (s *Server) load(rawURL string) (*goquery.Document, error) {
	if rawURL == "about:blank" {
		return goquery.NewDocumentFromReader(strings.NewReader(blankPage))
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, errorf("invalid argument", "%q is not an absolute url", rawURL)
	}
	if page, ok := s.pages[u.Path]; ok {
		return goquery.NewDocumentFromReader(strings.NewReader(page))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errorf("unknown error", "cannot load %s", rawURL)
	}
	resp, err := s.fetch.Get(rawURL)
	if err != nil {
		return nil, errorf("unknown error", "loading %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errorf("unknown error", "parsing %s: %v", rawURL, err)
	}
	return doc, nil
}

// show replaces the document of w; references into the old one become stale.
func (w *window) show(u string, doc *goquery.Document) {
	w.url, w.doc = u, doc
	w.gen++
}

func (ss *session) navigate(srv *Server, target string, push bool) error {
	w, err := ss.window()
	if err != nil {
		return err
	}
	doc, err := srv.load(target)
	if err != nil {
		return err
	}
	w.show(target, doc)
	if push {
		w.history = append(w.history[:w.pos+1], target)
		w.pos = len(w.history) - 1
	}
	return nil
}

func cmdNavigate(ss *session, r request) (any, error) {
	target, err := r.str("url")
	if err != nil {
		return nil, err
	}
	return nil, ss.navigate(r.srv, target, true)
}

func cmdCurrentURL(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	return w.url, nil
}

func historyMove(delta int) command {
	return func(ss *session, r request) (any, error) {
		w, err := ss.window()
		if err != nil {
			return nil, err
		}
		pos := w.pos + delta
		if pos < 0 || pos >= len(w.history) {
			return nil, nil
		}
		w.pos = pos
		return nil, ss.navigate(r.srv, w.history[pos], false)
	}
}

var (
	cmdBack    = historyMove(-1)
	cmdForward = historyMove(1)
)

func cmdRefresh(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	return nil, ss.navigate(r.srv, w.url, false)
}

func cmdTitle(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(w.doc.Find("title").First().Text()), nil
}

func cmdSource(ss *session, r request) (any, error) {
	w, err := ss.window()
	if err != nil {
		return nil, err
	}
	src, err := goquery.OuterHtml(w.doc.Selection)
	if err != nil {
		return nil, fmt.Errorf("rendering source: %w", err)
	}
	return src, nil
}

func cmdNothing(*session, request) (any, error) { return nil, nil }
