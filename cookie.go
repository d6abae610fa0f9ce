// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"github.com/fedesog/webdriver/v2/wire"
)

type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	// Expiry is in seconds since the Unix epoch; 0 means a session cookie.
	Expiry   int64  `json:"expiry,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
}

// Retrieve all cookies visible to the current page.
func (s *Session) Cookies() ([]Cookie, error) {
	resp, err := s.execute(wire.CmdGetAllCookies, nil)
	if err != nil {
		return nil, err
	}
	return unmarshalValue[[]Cookie](resp)
}

// Retrieve the cookie with the given name. A missing cookie matches ErrNoSuchCookie.
func (s *Session) Cookie(name string) (Cookie, error) {
	resp, err := s.execute(wire.CmdGetNamedCookie, nil, name)
	if err != nil {
		return Cookie{}, err
	}
	return unmarshalValue[Cookie](resp)
}

// Set a cookie.
func (s *Session) AddCookie(cookie Cookie) error {
	return s.do(wire.CmdAddCookie, wire.Params{"cookie": cookie})
}

// Delete the cookie with the given name.
func (s *Session) DeleteCookie(name string) error {
	return s.do(wire.CmdDeleteCookie, nil, name)
}

// Delete all cookies visible to the current page.
func (s *Session) DeleteAllCookies() error {
	return s.do(wire.CmdDeleteAllCookies, nil)
}
