// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import "golang.org/x/sync/errgroup"

// Driver is a session together with the endpoint it was created on. Every
// Session method is available directly on the Driver.
//
// There is no package level driver: keep the *Driver and pass it around.
type Driver struct {
	*Session
	remote *Remote
}

// Start connects to the remote end at url and creates a session whose
// capabilities must all match desired.
func Start(url string, desired Capabilities, opts ...Option) (*Driver, error) {
	return StartRequest(url, SessionRequest{AlwaysMatch: desired}, opts...)
}

// StartRequest is like Start with W3C firstMatch alternatives.
func StartRequest(url string, req SessionRequest, opts ...Option) (*Driver, error) {
	remote, err := NewRemote(url, opts...)
	if err != nil {
		return nil, err
	}
	session, err := remote.NewSessionRequest(req)
	if err != nil {
		return nil, err
	}
	return &Driver{Session: session, remote: remote}, nil
}

// StartWithConfig starts a driver as described by cfg. opts are applied
// after the ones derived from cfg.
func StartWithConfig(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return StartRequest(cfg.RemoteURL, cfg.SessionRequest(), append(cfg.Options(), opts...)...)
}

// Remote returns the endpoint of the driver.
func (d *Driver) Remote() *Remote { return d.remote }

// Quit ends the session. It is safe to call more than once and never fails;
// see Session.Quit.
func (d *Driver) Quit() {
	d.Session.Quit()
}

// Close implements io.Closer. It calls Quit and returns nil.
func (d *Driver) Close() error {
	d.Quit()
	return nil
}

// QuitAll quits the drivers in parallel and returns when all of them are
// terminated. nil entries are skipped.
func QuitAll(drivers ...*Driver) {
	var g errgroup.Group
	for _, d := range drivers {
		if d == nil {
			continue
		}
		d := d
		g.Go(func() error {
			d.Quit()
			return nil
		})
	}
	_ = g.Wait()
}
