// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport performs the HTTP exchanges of the WebDriver client.
//
// A Client is bound to one remote end base URL. Each Send is one request with
// one timeout covering connect and read; there are no retries. Clients share
// DefaultHTTPClient unless told otherwise, which pools connections and is safe
// for concurrent use.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a request when neither the client nor the caller
// set one.
const DefaultTimeout = 60 * time.Second

// DefaultHTTPClient is shared by all clients created without WithHTTPClient.
var DefaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
	},
}

// ErrRateLimited is wrapped by the Error of a request that was not sent
// because the rate limiter could not admit it before its deadline.
var ErrRateLimited = errors.New("rate limit exceeded")

// Response is the raw HTTP answer of the remote end.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Error is a network level failure. It says nothing about whether the
// remote end executed the command.
type Error struct {
	Method string
	URL    string
	// Timeout is set when the request deadline expired after the request
	// was sent. The outcome of the command is then unknown.
	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("webdriver: transport: %s %s: timeout: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("webdriver: transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces DefaultHTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout used when Send is called with zero.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit throttles requests, for remote ends such as shared grids
// that reject bursts. Waiting for a token counts against the request timeout.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithLogger sets the logger used for wire traces at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// Client sends requests to one remote end.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	log     *slog.Logger
	metrics *Metrics
	header  http.Header
}

// New returns a client for the remote end at baseURL, e.g.
// "http://127.0.0.1:4444" or "http://grid:4444/wd/hub".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q: missing host", baseURL)
	}
	c := &Client{
		base:    strings.TrimRight(u.String(), "/"),
		http:    DefaultHTTPClient,
		timeout: DefaultTimeout,
		log:     slog.Default(),
		header:  http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the remote end url without trailing slash.
func (c *Client) BaseURL() string { return c.base }

// Timeout returns the default request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Send issues one request. path is appended to the base url. A zero timeout
// means the client default.
func (c *Client) Send(method, path string, body []byte, timeout time.Duration) (*Response, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, errors.New("invalid method: " + method)
	}
	if timeout <= 0 {
		timeout = c.timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	u := c.base + path
	c.log.Debug(">> "+method+" "+u, "body", head(body))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// not sent, so the outcome is known
			return nil, &Error{Method: method, URL: u, Err: fmt.Errorf("%w: %v", ErrRateLimited, err)}
		}
	}

	request, err := newRequest(ctx, method, u, body)
	if err != nil {
		return nil, &Error{Method: method, URL: u, Err: err}
	}
	for k, vs := range c.header {
		for _, v := range vs {
			request.Header.Add(k, v)
		}
	}

	start := time.Now()
	done := c.metrics.begin()
	response, err := c.http.Do(request)
	if err != nil {
		done(method, "error", time.Since(start))
		return nil, c.wrap(method, u, ctx, err)
	}
	defer response.Body.Close()

	buf, err := io.ReadAll(response.Body)
	done(method, strconv.Itoa(response.StatusCode), time.Since(start))
	if err != nil {
		return nil, c.wrap(method, u, ctx, err)
	}
	c.log.Debug("<< "+head(buf), "status", response.StatusCode, "elapsed", time.Since(start))
	return &Response{StatusCode: response.StatusCode, Header: response.Header, Body: buf}, nil
}

func (c *Client) wrap(method, u string, ctx context.Context, err error) error {
	timeout := errors.Is(ctx.Err(), context.DeadlineExceeded)
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		timeout = true
	}
	return &Error{Method: method, URL: u, Timeout: timeout, Err: err}
}

func newRequest(ctx context.Context, method, url string, data []byte) (*http.Request, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if method == http.MethodPost {
		request.Header.Set("Content-Type", "application/json;charset=utf-8")
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Charset", "utf-8")
	return request, nil
}

func head(buf []byte) string {
	if len(buf) > 1024 {
		return fmt.Sprintf("%s ...%d more bytes", string(buf[:1024]), len(buf)-1024)
	}
	return string(buf)
}
