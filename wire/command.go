// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"net/url"
	"strings"
)

// Command describes one remote end endpoint.
type Command struct {
	Name   string
	Method string

	// Path is a template; placeholders such as {sessionId} and {elementId}
	// are filled positionally by URL.
	Path string
}

// URL fills the placeholders of the path template in order of appearance.
func (c Command) URL(args ...string) (string, error) {
	var b strings.Builder
	rest := c.Path
	n := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("command %s: malformed path template %q", c.Name, c.Path)
		}
		if n >= len(args) {
			return "", fmt.Errorf("command %s: missing value for %s", c.Name, rest[open:open+end+1])
		}
		if args[n] == "" {
			return "", fmt.Errorf("command %s: empty value for %s", c.Name, rest[open:open+end+1])
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(args[n]))
		n++
		rest = rest[open+end+1:]
	}
	if n != len(args) {
		return "", fmt.Errorf("command %s: %d path values given, template takes %d", c.Name, len(args), n)
	}
	return b.String(), nil
}

// Command names. They follow the W3C WebDriver command list.
const (
	CmdNewSession              = "newSession"
	CmdDeleteSession           = "deleteSession"
	CmdStatus                  = "status"
	CmdGetTimeouts             = "getTimeouts"
	CmdSetTimeouts             = "setTimeouts"
	CmdNavigateTo              = "navigateTo"
	CmdGetCurrentURL           = "getCurrentUrl"
	CmdBack                    = "back"
	CmdForward                 = "forward"
	CmdRefresh                 = "refresh"
	CmdGetTitle                = "getTitle"
	CmdGetWindowHandle         = "getWindowHandle"
	CmdCloseWindow             = "closeWindow"
	CmdSwitchToWindow          = "switchToWindow"
	CmdGetWindowHandles        = "getWindowHandles"
	CmdNewWindow               = "newWindow"
	CmdSwitchToFrame           = "switchToFrame"
	CmdSwitchToParentFrame     = "switchToParentFrame"
	CmdGetWindowRect           = "getWindowRect"
	CmdSetWindowRect           = "setWindowRect"
	CmdMaximizeWindow          = "maximizeWindow"
	CmdMinimizeWindow          = "minimizeWindow"
	CmdFullscreenWindow        = "fullscreenWindow"
	CmdGetActiveElement        = "getActiveElement"
	CmdGetElementShadowRoot    = "getElementShadowRoot"
	CmdFindElement             = "findElement"
	CmdFindElements            = "findElements"
	CmdFindElementFromElement  = "findElementFromElement"
	CmdFindElementsFromElement = "findElementsFromElement"
	CmdFindElementFromShadow   = "findElementFromShadowRoot"
	CmdFindElementsFromShadow  = "findElementsFromShadowRoot"
	CmdIsElementSelected       = "isElementSelected"
	CmdGetElementAttribute     = "getElementAttribute"
	CmdGetElementProperty      = "getElementProperty"
	CmdGetElementCSSValue      = "getElementCssValue"
	CmdGetElementText          = "getElementText"
	CmdGetElementTagName       = "getElementTagName"
	CmdGetElementRect          = "getElementRect"
	CmdIsElementEnabled        = "isElementEnabled"
	CmdIsElementDisplayed      = "isElementDisplayed"
	CmdElementClick            = "elementClick"
	CmdElementClear            = "elementClear"
	CmdElementSendKeys         = "elementSendKeys"
	CmdGetPageSource           = "getPageSource"
	CmdExecuteScript           = "executeScript"
	CmdExecuteAsyncScript      = "executeAsyncScript"
	CmdGetAllCookies           = "getAllCookies"
	CmdGetNamedCookie          = "getNamedCookie"
	CmdAddCookie               = "addCookie"
	CmdDeleteCookie            = "deleteCookie"
	CmdDeleteAllCookies        = "deleteAllCookies"
	CmdPerformActions          = "performActions"
	CmdReleaseActions          = "releaseActions"
	CmdDismissAlert            = "dismissAlert"
	CmdAcceptAlert             = "acceptAlert"
	CmdGetAlertText            = "getAlertText"
	CmdSendAlertText           = "sendAlertText"
	CmdTakeScreenshot          = "takeScreenshot"
	CmdTakeElementScreenshot   = "takeElementScreenshot"
	CmdPrintPage               = "printPage"

	// vendor extensions
	CmdChromeExecuteCDP      = "chromeExecuteCdp"
	CmdEdgeExecuteCDP        = "edgeExecuteCdp"
	CmdFirefoxFullScreenshot = "firefoxFullPageScreenshot"
	CmdFirefoxGetContext     = "firefoxGetContext"
	CmdFirefoxSetContext     = "firefoxSetContext"
)

var commands = map[string]Command{}

func init() {
	for _, c := range []Command{
		{CmdNewSession, "POST", "/session"},
		{CmdDeleteSession, "DELETE", "/session/{sessionId}"},
		{CmdStatus, "GET", "/status"},
		{CmdGetTimeouts, "GET", "/session/{sessionId}/timeouts"},
		{CmdSetTimeouts, "POST", "/session/{sessionId}/timeouts"},
		{CmdNavigateTo, "POST", "/session/{sessionId}/url"},
		{CmdGetCurrentURL, "GET", "/session/{sessionId}/url"},
		{CmdBack, "POST", "/session/{sessionId}/back"},
		{CmdForward, "POST", "/session/{sessionId}/forward"},
		{CmdRefresh, "POST", "/session/{sessionId}/refresh"},
		{CmdGetTitle, "GET", "/session/{sessionId}/title"},
		{CmdGetWindowHandle, "GET", "/session/{sessionId}/window"},
		{CmdCloseWindow, "DELETE", "/session/{sessionId}/window"},
		{CmdSwitchToWindow, "POST", "/session/{sessionId}/window"},
		{CmdGetWindowHandles, "GET", "/session/{sessionId}/window/handles"},
		{CmdNewWindow, "POST", "/session/{sessionId}/window/new"},
		{CmdSwitchToFrame, "POST", "/session/{sessionId}/frame"},
		{CmdSwitchToParentFrame, "POST", "/session/{sessionId}/frame/parent"},
		{CmdGetWindowRect, "GET", "/session/{sessionId}/window/rect"},
		{CmdSetWindowRect, "POST", "/session/{sessionId}/window/rect"},
		{CmdMaximizeWindow, "POST", "/session/{sessionId}/window/maximize"},
		{CmdMinimizeWindow, "POST", "/session/{sessionId}/window/minimize"},
		{CmdFullscreenWindow, "POST", "/session/{sessionId}/window/fullscreen"},
		{CmdGetActiveElement, "GET", "/session/{sessionId}/element/active"},
		{CmdGetElementShadowRoot, "GET", "/session/{sessionId}/element/{elementId}/shadow"},
		{CmdFindElement, "POST", "/session/{sessionId}/element"},
		{CmdFindElements, "POST", "/session/{sessionId}/elements"},
		{CmdFindElementFromElement, "POST", "/session/{sessionId}/element/{elementId}/element"},
		{CmdFindElementsFromElement, "POST", "/session/{sessionId}/element/{elementId}/elements"},
		{CmdFindElementFromShadow, "POST", "/session/{sessionId}/shadow/{shadowId}/element"},
		{CmdFindElementsFromShadow, "POST", "/session/{sessionId}/shadow/{shadowId}/elements"},
		{CmdIsElementSelected, "GET", "/session/{sessionId}/element/{elementId}/selected"},
		{CmdGetElementAttribute, "GET", "/session/{sessionId}/element/{elementId}/attribute/{name}"},
		{CmdGetElementProperty, "GET", "/session/{sessionId}/element/{elementId}/property/{name}"},
		{CmdGetElementCSSValue, "GET", "/session/{sessionId}/element/{elementId}/css/{propertyName}"},
		{CmdGetElementText, "GET", "/session/{sessionId}/element/{elementId}/text"},
		{CmdGetElementTagName, "GET", "/session/{sessionId}/element/{elementId}/name"},
		{CmdGetElementRect, "GET", "/session/{sessionId}/element/{elementId}/rect"},
		{CmdIsElementEnabled, "GET", "/session/{sessionId}/element/{elementId}/enabled"},
		{CmdIsElementDisplayed, "GET", "/session/{sessionId}/element/{elementId}/displayed"},
		{CmdElementClick, "POST", "/session/{sessionId}/element/{elementId}/click"},
		{CmdElementClear, "POST", "/session/{sessionId}/element/{elementId}/clear"},
		{CmdElementSendKeys, "POST", "/session/{sessionId}/element/{elementId}/value"},
		{CmdGetPageSource, "GET", "/session/{sessionId}/source"},
		{CmdExecuteScript, "POST", "/session/{sessionId}/execute/sync"},
		{CmdExecuteAsyncScript, "POST", "/session/{sessionId}/execute/async"},
		{CmdGetAllCookies, "GET", "/session/{sessionId}/cookie"},
		{CmdGetNamedCookie, "GET", "/session/{sessionId}/cookie/{name}"},
		{CmdAddCookie, "POST", "/session/{sessionId}/cookie"},
		{CmdDeleteCookie, "DELETE", "/session/{sessionId}/cookie/{name}"},
		{CmdDeleteAllCookies, "DELETE", "/session/{sessionId}/cookie"},
		{CmdPerformActions, "POST", "/session/{sessionId}/actions"},
		{CmdReleaseActions, "DELETE", "/session/{sessionId}/actions"},
		{CmdDismissAlert, "POST", "/session/{sessionId}/alert/dismiss"},
		{CmdAcceptAlert, "POST", "/session/{sessionId}/alert/accept"},
		{CmdGetAlertText, "GET", "/session/{sessionId}/alert/text"},
		{CmdSendAlertText, "POST", "/session/{sessionId}/alert/text"},
		{CmdTakeScreenshot, "GET", "/session/{sessionId}/screenshot"},
		{CmdTakeElementScreenshot, "GET", "/session/{sessionId}/element/{elementId}/screenshot"},
		{CmdPrintPage, "POST", "/session/{sessionId}/print"},

		{CmdChromeExecuteCDP, "POST", "/session/{sessionId}/goog/cdp/execute"},
		{CmdEdgeExecuteCDP, "POST", "/session/{sessionId}/ms/cdp/execute"},
		{CmdFirefoxFullScreenshot, "GET", "/session/{sessionId}/moz/screenshot/full"},
		{CmdFirefoxGetContext, "GET", "/session/{sessionId}/moz/context"},
		{CmdFirefoxSetContext, "POST", "/session/{sessionId}/moz/context"},
	} {
		commands[c.Name] = c
	}
}

// Lookup returns the command registered under name.
func Lookup(name string) (Command, bool) {
	c, ok := commands[name]
	return c, ok
}

// MustLookup is like Lookup but panics on unknown names. It is meant for
// the fixed command names declared in this package.
func MustLookup(name string) Command {
	c, ok := commands[name]
	if !ok {
		panic("wire: unknown command " + name)
	}
	return c
}
