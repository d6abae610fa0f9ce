// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"github.com/fedesog/webdriver/v2/wire"
)

// Navigate to a new URL.
func (s *Session) Navigate(url string) error {
	return s.do(wire.CmdNavigateTo, wire.Params{"url": url})
}

// Navigate to a new URL. Same as Navigate.
func (s *Session) Url(url string) error {
	return s.Navigate(url)
}

// Retrieve the URL of the current page.
func (s *Session) CurrentURL() (string, error) {
	return s.getString(wire.CmdGetCurrentURL)
}

// Navigate forwards in the browser history, if possible.
func (s *Session) Forward() error {
	return s.do(wire.CmdForward, nil)
}

// Navigate backwards in the browser history, if possible.
func (s *Session) Back() error {
	return s.do(wire.CmdBack, nil)
}

// Refresh the current page.
func (s *Session) Refresh() error {
	return s.do(wire.CmdRefresh, nil)
}

// Get the current page title.
func (s *Session) Title() (string, error) {
	return s.getString(wire.CmdGetTitle)
}

// Get the current page source.
func (s *Session) Source() (string, error) {
	return s.getString(wire.CmdGetPageSource)
}

// Take a screenshot of the current page. The image data is returned as sent
// by the remote end (PNG for conforming drivers).
func (s *Session) Screenshot() ([]byte, error) {
	resp, err := s.execute(wire.CmdTakeScreenshot, nil)
	if err != nil {
		return nil, err
	}
	return decodeBase64(resp)
}

// PrintOptions configures PrintPage. Zero values are left to the remote end.
type PrintOptions struct {
	Orientation string // "portrait" or "landscape"
	Scale       float64
	Background  bool
	PageRanges  []string
	ShrinkToFit *bool
}

// Render the current page as PDF.
func (s *Session) PrintPage(opts PrintOptions) ([]byte, error) {
	p := wire.Params{}
	if opts.Orientation != "" {
		p["orientation"] = opts.Orientation
	}
	if opts.Scale != 0 {
		p["scale"] = opts.Scale
	}
	if opts.Background {
		p["background"] = true
	}
	if len(opts.PageRanges) > 0 {
		p["pageRanges"] = opts.PageRanges
	}
	if opts.ShrinkToFit != nil {
		p["shrinkToFit"] = *opts.ShrinkToFit
	}
	resp, err := s.execute(wire.CmdPrintPage, p)
	if err != nil {
		return nil, err
	}
	return decodeBase64(resp)
}
