// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesog/webdriver/v2/wdtest"
	"github.com/fedesog/webdriver/v2/wire"
)

var pages = [][]string{
	{"simple", `<!DOCTYPE html><html><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"><title>webdriver simple</title></head><body>Simple page</body></html>`},

	{"simple2", `<!DOCTYPE html><html><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"><title>webdriver simple 2</title></head><body>Simple page 2</body></html>`},

	{"elements", `<!DOCTYPE html><html><body><form name="input" action="" method="get">
<input type="checkbox" name="check1" value="Check1">Check 1<br>
<input type="checkbox" name="check2" value="Check2">Check 2<br><br>
<input type="text" name="login" value="">
<input type="text" name="locked" value="x" disabled>
<input type="submit" value="Submit">
</form>
<div id="foo" style="color:#0000FF">
  <h3>This is a heading</h3>
  <p>This is a <a href="http://golang.com">longwordlinktogolang</a> to a page served by a go server.</p>
</div>
<p id="hidden" style="display: none">invisible</p>
<a id="next" href="/simple2">next page</a>
<iframe name="inner" src="/simple"></iframe>
</body></html>`},
}

func getUrl(page string) string {
	return "http://webdriver.test/" + page
}

func newServer(t *testing.T, opts ...wdtest.Option) *wdtest.Server {
	t.Helper()
	srv := wdtest.NewServer(opts...)
	t.Cleanup(srv.Close)
	for _, page := range pages {
		srv.AddPage("/"+page[0], page[1])
	}
	return srv
}

func startDriver(t *testing.T, srv *wdtest.Server, desired Capabilities, opts ...Option) *Driver {
	t.Helper()
	d, err := Start(srv.URL(), desired, opts...)
	require.NoError(t, err)
	t.Cleanup(d.Quit)
	return d
}

// countRequests counts the requests srv received with method whose path
// ends with suffix.
func countRequests(srv *wdtest.Server, method, suffix string) int {
	n := 0
	for _, r := range srv.Requests() {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			n++
		}
	}
	return n
}

func TestStatus(t *testing.T) {
	srv := newServer(t)
	remote, err := NewRemote(srv.URL())
	require.NoError(t, err)
	status, err := remote.Status()
	require.NoError(t, err)
	assert.True(t, status.Ready)
	assert.Equal(t, "wdtest ready", status.Message)
	assert.Equal(t, "wdtest", status.Build.Version)
}

func TestCreateSession(t *testing.T) {
	srv := newServer(t)
	d := startDriver(t, srv, Capabilities{"platformName": "linux"})
	assert.NotEmpty(t, d.ID())
	assert.Equal(t, StateActive, d.State())
	assert.Equal(t, "wdtest", d.Capabilities().BrowserName())
	assert.Equal(t, BrowserUnknown, d.Browser())
	assert.Equal(t, srv.URL(), d.Remote().URL())
	assert.Equal(t, []string{d.ID()}, srv.SessionIDs())
}

func TestTimeouts(t *testing.T) {
	d := startDriver(t, newServer(t), nil)

	got, err := d.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, Timeouts{Implicit: 0, PageLoad: 300 * time.Second, Script: 30 * time.Second}, got)

	want := Timeouts{Implicit: time.Second, PageLoad: 10 * time.Second, Script: 2 * time.Second}
	require.NoError(t, d.SetTimeouts(want))
	got, err = d.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, d.SetImplicitWait(500*time.Millisecond))
	require.NoError(t, d.SetPageLoadTimeout(time.Minute))
	require.NoError(t, d.SetScriptTimeout(NoScriptTimeout))
	got, err = d.Timeouts()
	require.NoError(t, err)
	assert.Equal(t, Timeouts{Implicit: 500 * time.Millisecond, PageLoad: time.Minute, Script: NoScriptTimeout}, got)
}

func TestWindowHandle(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	h, err := d.WindowHandle()
	require.NoError(t, err)
	hv, err := d.WindowHandles()
	require.NoError(t, err)
	require.Len(t, hv, 1)
	assert.Equal(t, h, hv[0], "mismatching window handles")
}

func TestUrl(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	url1, url2 := getUrl("simple"), getUrl("simple2")
	require.NoError(t, d.Url(url1))
	url1b, err := d.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, url1, url1b)

	require.NoError(t, d.Navigate(url2))
	require.NoError(t, d.Refresh())
	require.NoError(t, d.Back())
	url1b, err = d.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, url1, url1b, "back url")

	require.NoError(t, d.Forward())
	url2b, err := d.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, url2, url2b, "forward url")

	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "webdriver simple 2", title)
	source, err := d.Source()
	require.NoError(t, err)
	assert.Contains(t, source, "<body>Simple page 2</body>")
}

func TestNavigateRejectsRelativeURL(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	err := d.Navigate("simple")
	require.Error(t, err)
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "invalid argument", cerr.Code)
}

func sum(sc *wdtest.Script) (any, error) {
	var total int64
	for _, a := range sc.Args {
		n, ok := a.(int64)
		if !ok {
			return nil, errors.New("not a number")
		}
		total += n
	}
	return total, nil
}

func TestExecuteScript(t *testing.T) {
	d := startDriver(t, newServer(t, wdtest.WithScript(sum)), nil)
	res, err := d.ExecuteScript("return arguments[0] + arguments[1]", 4, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(11), res)

	_, err = d.ExecuteScript("return arguments[0]", "four")
	assert.ErrorIs(t, err, ErrJavascript)
}

func TestExecuteScriptAsync(t *testing.T) {
	var async atomic.Bool
	d := startDriver(t, newServer(t, wdtest.WithScript(func(sc *wdtest.Script) (any, error) {
		async.Store(sc.Async)
		return sum(sc)
	})), nil)
	res, err := d.ExecuteAsyncScript("var cb = arguments[arguments.length - 1]; cb(arguments[0] + arguments[1]);", 5, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(13), res)
	assert.True(t, async.Load())
}

func TestExecuteScriptAsyncTimeout(t *testing.T) {
	d := startDriver(t, newServer(t, wdtest.WithScript(func(*wdtest.Script) (any, error) {
		return nil, wdtest.ErrScriptTimeout
	})), nil)
	require.NoError(t, d.SetScriptTimeout(time.Second))
	_, err := d.ExecuteAsyncScript("window.setTimeout(arguments[arguments.length - 1], 10000)")
	require.ErrorIs(t, err, ErrTimeout)
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "script timeout", cerr.Code)
}

func TestScreenshot(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	require.NoError(t, d.Url(getUrl("simple")))
	buf, err := d.Screenshot()
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewBuffer(buf))
	require.NoError(t, err, "returned data is not a png image")

	pdf, err := d.PrintPage(PrintOptions{Orientation: "landscape", PageRanges: []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, wdtest.PrintedPDF, pdf)
}

func TestWindow(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	rect, err := d.WindowRect()
	require.NoError(t, err)
	half := Rect{X: 10, Y: 20, Width: rect.Width / 2, Height: rect.Height / 2}
	got, err := d.SetWindowRect(half)
	require.NoError(t, err)
	assert.Equal(t, half, got)
	got, err = d.WindowRect()
	require.NoError(t, err)
	assert.Equal(t, half, got)

	got, err = d.Maximize()
	require.NoError(t, err)
	assert.Equal(t, Rect{Width: 1920, Height: 1080}, got)
	_, err = d.Minimize()
	require.NoError(t, err)
	_, err = d.Fullscreen()
	require.NoError(t, err)

	first, err := d.WindowHandle()
	require.NoError(t, err)
	second, err := d.NewWindow(WindowTypeTab)
	require.NoError(t, err)
	handles, err := d.WindowHandles()
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, handles)

	require.NoError(t, d.SwitchToWindow(second))
	remaining, err := d.CloseWindow()
	require.NoError(t, err)
	assert.Equal(t, []string{first}, remaining)
	_, err = d.Title()
	assert.ErrorIs(t, err, ErrNoSuchWindow)
	assert.ErrorIs(t, d.SwitchToWindow("nope"), ErrNoSuchWindow)
	require.NoError(t, d.SwitchToWindow(first))
}

func TestFrames(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	require.NoError(t, d.Url(getUrl("elements")))
	require.NoError(t, d.SwitchToFrame(0))
	assert.ErrorIs(t, d.SwitchToFrame(3), ErrNoSuchFrame)
	frame, err := d.FindElement(TagName, "iframe")
	require.NoError(t, err)
	require.NoError(t, d.SwitchToFrame(frame))
	require.NoError(t, d.SwitchToParentFrame())
	require.NoError(t, d.SwitchToFrame(nil))
	assert.Error(t, d.SwitchToFrame("inner"))
}

func TestCookie(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	require.NoError(t, d.Url(getUrl("simple")))
	require.NoError(t, d.AddCookie(Cookie{Name: "a", Value: "1"}))
	require.NoError(t, d.AddCookie(Cookie{Name: "b", Value: "2", Path: "/x", HTTPOnly: true, Expiry: 4102444800}))

	cookies, err := d.Cookies()
	require.NoError(t, err)
	require.Len(t, cookies, 2)
	assert.Equal(t, Cookie{Name: "a", Value: "1", Path: "/", Domain: "webdriver.test", SameSite: "Lax"}, cookies[0])

	b, err := d.Cookie("b")
	require.NoError(t, err)
	assert.Equal(t, "/x", b.Path)
	assert.True(t, b.HTTPOnly)
	assert.Equal(t, int64(4102444800), b.Expiry)

	require.NoError(t, d.DeleteCookie("a"))
	_, err = d.Cookie("a")
	assert.ErrorIs(t, err, ErrNoSuchCookie)

	err = d.AddCookie(Cookie{Name: "c", Value: "3", Domain: "example.com"})
	assert.ErrorIs(t, err, kindOf("invalid cookie domain"))

	require.NoError(t, d.DeleteAllCookies())
	cookies, err = d.Cookies()
	require.NoError(t, err)
	assert.Empty(t, cookies)
}

func TestElements(t *testing.T) {
	srv := newServer(t)
	d := startDriver(t, srv, nil)
	require.NoError(t, d.Url(getUrl("elements")))

	we, err := d.FindElement(ID, "foo")
	require.NoError(t, err)
	wev, err := d.FindElements(ID, "foo")
	require.NoError(t, err)
	require.Len(t, wev, 1)
	assert.Equal(t, we.ID(), wev[0].ID(), "ids of same element differ")
	assert.True(t, we.Equal(wev[0]))

	we2, err := we.FindElement(PartialLinkText, "linktogo")
	require.NoError(t, err)
	text, err := we2.Text()
	require.NoError(t, err)
	assert.Equal(t, "longwordlinktogolang", text)

	tag, err := we.TagName()
	require.NoError(t, err)
	assert.Equal(t, "div", tag)
	color, err := we.CSSValue("color")
	require.NoError(t, err)
	assert.Equal(t, "#0000FF", color)
	style, ok, err := we.Attribute("style")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "color:#0000FF", style)
	_, ok, err = we.Attribute("title")
	require.NoError(t, err)
	assert.False(t, ok)

	heading, err := we.FindElements(TagName, "h3")
	require.NoError(t, err)
	require.Len(t, heading, 1)
	text, err = heading[0].Text()
	require.NoError(t, err)
	assert.Equal(t, "This is a heading", text)

	check, err := d.FindElement(Name, "check1")
	require.NoError(t, err)
	selected, err := check.IsSelected()
	require.NoError(t, err)
	assert.False(t, selected)
	require.NoError(t, check.Click())
	selected, err = check.IsSelected()
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, []string{"input"}, srv.Clicks())

	hidden, err := d.FindElement(CSSSelector, "#hidden")
	require.NoError(t, err)
	displayed, err := hidden.IsDisplayed()
	require.NoError(t, err)
	assert.False(t, displayed)
	assert.ErrorIs(t, hidden.Click(), kindOf("element not interactable"))

	locked, err := d.FindElement(CSSSelector, `input[name="locked"]`)
	require.NoError(t, err)
	enabled, err := locked.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	rect, err := we.Rect()
	require.NoError(t, err)
	assert.Equal(t, 100.0, rect.Width)

	shot, err := we.Screenshot()
	require.NoError(t, err)
	assert.Equal(t, wdtest.ScreenshotPNG, shot)

	_, err = we.ShadowRoot()
	assert.ErrorIs(t, err, kindOf("no such shadow root"))

	active, err := d.ActiveElement()
	require.NoError(t, err)
	tag, err = active.TagName()
	require.NoError(t, err)
	assert.Equal(t, "body", tag)
}

func TestSendKeys(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	require.NoError(t, d.Url(getUrl("elements")))
	login, err := d.FindElement(Name, "login")
	require.NoError(t, err)

	require.NoError(t, login.SendKeys("gopher"))
	require.NoError(t, login.SendKeys("!"))
	v, err := login.Property("value")
	require.NoError(t, err)
	assert.Equal(t, "gopher!", v)

	require.NoError(t, login.Clear())
	v, err = login.Property("value")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	heading, err := d.FindElement(TagName, "h3")
	require.NoError(t, err)
	assert.ErrorIs(t, heading.Clear(), kindOf("invalid element state"))
}

func TestLinkNavigation(t *testing.T) {
	d := startDriver(t, newServer(t), nil)
	require.NoError(t, d.Url(getUrl("elements")))
	next, err := d.FindElement(LinkText, "next page")
	require.NoError(t, err)
	require.NoError(t, next.Click())
	title, err := d.Title()
	require.NoError(t, err)
	assert.Equal(t, "webdriver simple 2", title)
}

func TestAlert(t *testing.T) {
	d := startDriver(t, newServer(t, wdtest.WithScript(func(sc *wdtest.Script) (any, error) {
		sc.OpenAlert("are you sure?")
		return nil, nil
	})), nil)

	_, err := d.AlertText()
	require.ErrorIs(t, err, ErrNoSuchAlert)

	_, err = d.ExecuteScript("window.confirm('are you sure?')")
	require.NoError(t, err)
	text, err := d.AlertText()
	require.NoError(t, err)
	assert.Equal(t, "are you sure?", text)
	require.NoError(t, d.SendAlertText("yes"))
	require.NoError(t, d.AcceptAlert())
	assert.ErrorIs(t, d.DismissAlert(), ErrNoSuchAlert)

	_, err = d.ExecuteScript("window.alert('again')")
	require.NoError(t, err)
	_, err = d.Title()
	assert.ErrorIs(t, err, kindOf("unexpected alert open"))
	require.NoError(t, d.Refresh(), "the prompt is dismissed after reporting it")
}

func TestActions(t *testing.T) {
	srv := newServer(t)
	d := startDriver(t, srv, nil)
	require.NoError(t, d.Url(getUrl("elements")))
	foo, err := d.FindElement(ID, "foo")
	require.NoError(t, err)

	mouse := Pointer("mouse").MoveTo(foo, 1, 2, 10*time.Millisecond).Click(LeftButton)
	keys := Keyboard("keys").KeyDown(KeyShift).KeyDown("a").KeyUp("a").KeyUp(KeyShift).Pause(0)
	require.NoError(t, d.PerformActions(mouse, keys))
	require.NoError(t, d.ReleaseActions())

	reqs := srv.Requests()
	var body string
	for _, r := range reqs {
		if r.Method == "POST" && strings.HasSuffix(r.Path, "/actions") {
			body = string(r.Body)
		}
	}
	assert.Contains(t, body, `"origin":{"element-6066-11e4-a52e-4f735466cecf":"`+foo.ID()+`"}`)
	assert.Contains(t, body, `"pointerType":"mouse"`)
	assert.Contains(t, body, `"value":""`)
}

func TestClose(t *testing.T) {
	srv := newServer(t)
	d, err := Start(srv.URL(), nil)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Equal(t, StateTerminated, d.State())
	assert.Empty(t, srv.SessionIDs())
}

// kindOf returns the kind of a W3C error code, as an errors.Is target.
func kindOf(code string) error {
	return wire.KindOf(code)
}
