// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/fedesog/webdriver/v2/transport"
)

const tracerName = "github.com/fedesog/webdriver/v2"

type options struct {
	logger     *slog.Logger
	timeout    time.Duration
	httpClient *http.Client
	metrics    *Metrics
	tracer     trace.TracerProvider
	limit      rate.Limit
	burst      int
	headers    map[string]string
}

// Option configures a Remote or a Driver.
type Option func(*options)

// WithLogger sets the logger. Wire traces are logged at debug level, failures
// while quitting at warn level. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTimeout sets the timeout of each request, connect and read included.
// Default: 60s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient replaces the shared pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithMetrics records command and request metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerProvider sets the provider of command spans. Default: the global
// otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// WithRateLimit limits the request rate towards the remote end.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.limit = limit
		o.burst = burst
	}
}

// WithHeader adds a header to every request, e.g. grid credentials.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider()
	}
	return o
}

func (o *options) transportOptions() []transport.Option {
	topts := []transport.Option{transport.WithLogger(o.logger)}
	if o.timeout > 0 {
		topts = append(topts, transport.WithTimeout(o.timeout))
	}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.metrics != nil && o.metrics.Transport != nil {
		topts = append(topts, transport.WithMetrics(o.metrics.Transport))
	}
	if o.limit > 0 {
		topts = append(topts, transport.WithRateLimit(o.limit, o.burst))
	}
	for k, v := range o.headers {
		topts = append(topts, transport.WithHeader(k, v))
	}
	return topts
}
