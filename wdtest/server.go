// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wdtest provides a simulated W3C WebDriver remote end for tests.
//
// Pages are real HTML documents, parsed with goquery, so element lookups,
// text and attributes behave like a browser would report them for static
// markup. Nothing is rendered and no JavaScript runs: scripts are answered by
// a ScriptFunc installed by the test.
//
//	srv := wdtest.NewServer()
//	defer srv.Close()
//	srv.AddPage("/index.html", `<html><title>hi</title><a id="go">go</a></html>`)
//	d, err := webdriver.Start(srv.URL(), nil)
package wdtest

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// ScreenshotPNG is the image returned by every screenshot command.
var ScreenshotPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// PrintedPDF is the document returned by the print command.
var PrintedPDF = []byte("%PDF-1.4\n%%EOF\n")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Request is a request received by the server.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Server is a simulated remote end. All of its state is guarded by one
// mutex, so commands of concurrent sessions are serialized.
type Server struct {
	ts      *httptest.Server
	handler http.Handler
	log     *slog.Logger
	caps    map[string]any
	fetch   *http.Client

	mu       sync.Mutex
	pages    map[string]string
	sessions map[string]*session
	script   ScriptFunc
	failures []*codeError
	reject   string
	requests []Request
	clicks   []string
}

// Option configures a Server.
type Option func(*Server)

// WithCapabilities sets capabilities the server reports for every new
// session, overriding the requested values.
func WithCapabilities(caps map[string]any) Option {
	return func(s *Server) {
		for k, v := range caps {
			s.caps[k] = v
		}
	}
}

// WithLogger sets the logger of the server. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithScript installs the handler of script commands.
func WithScript(f ScriptFunc) Option {
	return func(s *Server) { s.script = f }
}

// New returns a server that is not listening; use it as an http.Handler.
func New(opts ...Option) *Server {
	s := &Server{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		caps:     map[string]any{},
		fetch:    &http.Client{Timeout: 30 * time.Second},
		pages:    map[string]string{},
		sessions: map[string]*session{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// NewServer starts a server on a loopback port. Close it when done.
func NewServer(opts ...Option) *Server {
	s := New(opts...)
	s.ts = httptest.NewServer(s)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// URL returns the base url of a started server.
func (s *Server) URL() string {
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Close stops a started server.
func (s *Server) Close() {
	if s.ts != nil {
		s.ts.Close()
	}
}

// AddPage registers html as the document served for path, whatever the
// host of the navigated url.
func (s *Server) AddPage(path, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = html
}

// HandleScript replaces the handler of script commands.
func (s *Server) HandleScript(f ScriptFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = f
}

// FailNext makes the next request fail with the given W3C error code.
// Calls queue up.
func (s *Server) FailNext(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &codeError{code: code, msg: message})
}

// RejectSessions makes new session requests fail with "session not created"
// until called again with an empty message.
func (s *Server) RejectSessions(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = message
}

// ExpireSession forgets the session, as a remote end does after a crash or
// an idle timeout.
func (s *Server) ExpireSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SessionIDs returns the ids of the live sessions.
func (s *Server) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Clicks returns the clicked elements, by id attribute, or tag name when
// they have none.
func (s *Server) Clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.inject)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errorf("unknown command", "%s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errorf("unknown method", "%s %s", r.Method, r.URL.Path))
	})

	r.Get("/status", s.handleStatus)
	r.Post("/session", s.handleNewSession)
	r.Route("/session/{sessionId}", func(r chi.Router) {
		r.Delete("/", s.prompt(cmdDeleteSession))

		r.Get("/timeouts", s.prompt(cmdGetTimeouts))
		r.Post("/timeouts", s.prompt(cmdSetTimeouts))

		r.Post("/url", s.cmd(cmdNavigate))
		r.Get("/url", s.cmd(cmdCurrentURL))
		r.Post("/back", s.cmd(cmdBack))
		r.Post("/forward", s.cmd(cmdForward))
		r.Post("/refresh", s.cmd(cmdRefresh))
		r.Get("/title", s.cmd(cmdTitle))
		r.Get("/source", s.cmd(cmdSource))

		r.Get("/window", s.cmd(cmdWindowHandle))
		r.Post("/window", s.cmd(cmdSwitchToWindow))
		r.Delete("/window", s.cmd(cmdCloseWindow))
		r.Get("/window/handles", s.cmd(cmdWindowHandles))
		r.Post("/window/new", s.cmd(cmdNewWindow))
		r.Get("/window/rect", s.cmd(cmdWindowRect))
		r.Post("/window/rect", s.cmd(cmdSetWindowRect))
		r.Post("/window/maximize", s.cmd(cmdMaximize))
		r.Post("/window/minimize", s.cmd(cmdWindowRect))
		r.Post("/window/fullscreen", s.cmd(cmdMaximize))
		r.Post("/frame", s.cmd(cmdSwitchToFrame))
		r.Post("/frame/parent", s.cmd(cmdNothing))

		r.Post("/element", s.cmd(cmdFindElement))
		r.Post("/elements", s.cmd(cmdFindElements))
		r.Get("/element/active", s.cmd(cmdActiveElement))
		r.Route("/element/{elementId}", func(r chi.Router) {
			r.Post("/element", s.cmd(cmdFindElement))
			r.Post("/elements", s.cmd(cmdFindElements))
			r.Get("/shadow", s.cmd(cmdShadowRoot))
			r.Get("/selected", s.cmd(cmdIsSelected))
			r.Get("/enabled", s.cmd(cmdIsEnabled))
			r.Get("/displayed", s.cmd(cmdIsDisplayed))
			r.Get("/attribute/{name}", s.cmd(cmdAttribute))
			r.Get("/property/{name}", s.cmd(cmdProperty))
			r.Get("/css/{name}", s.cmd(cmdCSSValue))
			r.Get("/text", s.cmd(cmdText))
			r.Get("/name", s.cmd(cmdTagName))
			r.Get("/rect", s.cmd(cmdElementRect))
			r.Post("/click", s.cmd(cmdClick))
			r.Post("/clear", s.cmd(cmdClear))
			r.Post("/value", s.cmd(cmdSendKeys))
			r.Get("/screenshot", s.cmd(cmdElementScreenshot))
		})
		r.Post("/shadow/{shadowId}/element", s.cmd(cmdNoShadowRoot))
		r.Post("/shadow/{shadowId}/elements", s.cmd(cmdNoShadowRoot))

		r.Post("/execute/sync", s.cmd(s.cmdExecute(false)))
		r.Post("/execute/async", s.cmd(s.cmdExecute(true)))

		r.Get("/cookie", s.cmd(cmdCookies))
		r.Post("/cookie", s.cmd(cmdAddCookie))
		r.Delete("/cookie", s.cmd(cmdDeleteAllCookies))
		r.Get("/cookie/{name}", s.cmd(cmdCookie))
		r.Delete("/cookie/{name}", s.cmd(cmdDeleteCookie))

		r.Post("/actions", s.cmd(cmdPerformActions))
		r.Delete("/actions", s.cmd(cmdNothing))

		r.Post("/alert/dismiss", s.prompt(cmdCloseAlert))
		r.Post("/alert/accept", s.prompt(cmdCloseAlert))
		r.Get("/alert/text", s.prompt(cmdAlertText))
		r.Post("/alert/text", s.prompt(cmdSendAlertText))

		r.Get("/screenshot", s.cmd(cmdScreenshot))
		r.Post("/print", s.cmd(cmdPrint))

		r.Post("/goog/cdp/execute", s.cmd(cmdExecuteCDP("chrome")))
		r.Post("/ms/cdp/execute", s.cmd(cmdExecuteCDP("msedge")))
		r.Get("/moz/screenshot/full", s.cmd(firefoxOnly(cmdScreenshot)))
		r.Get("/moz/context", s.cmd(firefoxOnly(cmdContext)))
		r.Post("/moz/context", s.cmd(firefoxOnly(cmdSetContext)))
	})
	return r
}

// record keeps a copy of every request.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, errorf("invalid argument", "reading body: %v", err))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.log.Debug("wdtest request", "method", r.Method, "path", r.URL.Path)
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// inject fails requests queued by FailNext.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var fail *codeError
		if len(s.failures) > 0 {
			fail, s.failures = s.failures[0], s.failures[1:]
		}
		s.mu.Unlock()
		if fail != nil {
			writeError(w, fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeValue(w, map[string]any{
		"ready":   true,
		"message": "wdtest ready",
		"build":   map[string]any{"version": "wdtest"},
	})
}
