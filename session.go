// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fedesog/webdriver/v2/wire"
)

// State is the lifecycle state of a Session.
type State int32

const (
	StateUninitialized State = iota
	StateNegotiating
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateNegotiating:
		return "negotiating"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// A session.
//
// Commands of a session are serialized: each holds the session lock for one
// request/response cycle. A session becomes Terminated when Quit is called
// or when the remote end reports it does not know the session any more.
type Session struct {
	id      string
	caps    Capabilities
	browser vendor
	remote  *Remote

	mu    sync.Mutex
	state atomic.Int32
}

// ID returns the id assigned by the remote end.
func (s *Session) ID() string { return s.id }

// Retrieve the capabilities of the session, as negotiated. The returned map
// is a copy.
func (s *Session) Capabilities() Capabilities { return s.caps.Clone() }

// Browser returns the browser kind resolved at negotiation.
func (s *Session) Browser() BrowserKind { return s.browser.Kind() }

// State returns the lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Remote returns the endpoint the session lives on.
func (s *Session) Remote() *Remote { return s.remote }

// Quit deletes the session. It never fails: the session is gone from the
// client's point of view whatever the remote end answers, so errors are only
// logged. Calling Quit more than once is a no-op.
func (s *Session) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.terminate() {
		return
	}
	_, err := s.remote.execute(wire.MustLookup(wire.CmdDeleteSession), nil, s.id)
	if err != nil {
		s.remote.log.Warn("quit: delete session failed", "session", s.id, "err", err)
	}
}

// terminate moves an active session to Terminated and reports whether it did.
func (s *Session) terminate() bool {
	if !s.state.CompareAndSwap(int32(StateActive), int32(StateTerminated)) {
		return false
	}
	s.remote.metrics.sessionEnded()
	return true
}

func (s *Session) inactiveError() error {
	return wire.NewError("invalid session id",
		fmt.Sprintf("session %s is %s", s.id, s.State())).WithKind(wire.KindNoSuchSession)
}

// execute runs a session scoped command. args fill the path template after
// the session id.
func (s *Session) execute(name string, params wire.Params, args ...string) (*wire.Response, error) {
	if s == nil {
		// zero WebElement or ShadowRoot
		return nil, wire.NewError("invalid session id", "reference is not bound to a session").WithKind(wire.KindNoSuchSession)
	}
	cmd := wire.MustLookup(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() != StateActive {
		return nil, s.inactiveError()
	}
	resp, err := s.remote.execute(cmd, params, append([]string{s.id}, args...)...)
	if err != nil && errors.Is(err, wire.KindNoSuchSession) {
		if s.terminate() {
			s.remote.log.Debug("session expired on the remote end", "session", s.id)
		}
	}
	return resp, err
}

// do runs a command whose result is ignored.
func (s *Session) do(name string, params wire.Params, args ...string) error {
	_, err := s.execute(name, params, args...)
	return err
}

func (s *Session) getString(name string, args ...string) (string, error) {
	resp, err := s.execute(name, nil, args...)
	if err != nil {
		return "", err
	}
	return unmarshalValue[string](resp)
}

func (s *Session) getBool(name string, args ...string) (bool, error) {
	resp, err := s.execute(name, nil, args...)
	if err != nil {
		return false, err
	}
	return unmarshalValue[bool](resp)
}

// owns reports whether e was produced by s.
func (s *Session) owns(e WebElement) bool {
	return e.s == s
}
