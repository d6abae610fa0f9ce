// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package webdriver is a client for remote ends speaking the W3C WebDriver
// protocol (chromedriver, geckodriver, Selenium Grid, ...). Responses of
// servers still on the legacy JSON Wire Protocol are understood as well.
//
// The package does not start browsers: it needs the URL of a running remote
// end.
//
// See https://www.w3.org/TR/webdriver2/
//
// Example:
//	driver, err := webdriver.Start("http://127.0.0.1:9515",
//		webdriver.Capabilities{"browserName": "chrome"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer driver.Quit()
//	if err := driver.Navigate("https://go.dev"); err != nil {
//		log.Fatal(err)
//	}
//	link, err := driver.FindElement(webdriver.LinkText, "Learn")
//	if errors.Is(err, webdriver.ErrNoSuchElement) {
//		log.Fatal("no link")
//	}
//	err = link.Click()
//
// A Session serializes its commands: it may be shared between goroutines but
// the remote end sees one command at a time. Distinct sessions are
// independent.
//
// Every command blocks until the response arrives or the request timeout
// expires. A timed out command may still have been executed by the remote
// end; see TransportError.
package webdriver
