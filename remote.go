// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fedesog/webdriver/v2/transport"
	"github.com/fedesog/webdriver/v2/wire"
)

// Server details.
type Status struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
	// Build and OS are only reported by some servers.
	Build Build `json:"build"`
	OS    OS    `json:"os"`
}

// Server built details.
type Build struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Time     string `json:"time"`
}

// Server OS details
type OS struct {
	Arch    string `json:"arch"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Remote is a remote end endpoint. It is safe for concurrent use; sessions
// created from the same Remote share its connection pool.
type Remote struct {
	t       *transport.Client
	log     *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewRemote returns a Remote for the remote end listening at url.
func NewRemote(url string, opts ...Option) (*Remote, error) {
	o := newOptions(opts)
	t, err := transport.New(url, o.transportOptions()...)
	if err != nil {
		return nil, err
	}
	return &Remote{
		t:       t,
		log:     o.logger,
		metrics: o.metrics,
		tracer:  o.tracer.Tracer(tracerName),
	}, nil
}

// URL returns the base url of the remote end.
func (r *Remote) URL() string { return r.t.BaseURL() }

// Query the server's status.
func (r *Remote) Status() (*Status, error) {
	resp, err := r.execute(wire.MustLookup(wire.CmdStatus), nil)
	if err != nil {
		return nil, err
	}
	status := &Status{}
	if err := resp.Unmarshal(status); err != nil {
		return nil, err
	}
	return status, nil
}

// NewSession creates a session whose capabilities must all match desired.
func (r *Remote) NewSession(desired Capabilities) (*Session, error) {
	return r.NewSessionRequest(SessionRequest{AlwaysMatch: desired})
}

// NewSessionRequest creates a session. The server is authoritative for the
// resulting capabilities: they are the requested ones overridden by those it
// returns. A refusal is reported as ErrSessionNotCreated, keeping the
// server's error code; the request is not retried.
func (r *Remote) NewSessionRequest(req SessionRequest) (*Session, error) {
	s := &Session{remote: r}
	s.state.Store(int32(StateNegotiating))

	resp, err := r.execute(wire.MustLookup(wire.CmdNewSession), req.payload())
	if err != nil {
		s.state.Store(int32(StateTerminated))
		var cerr *CommandError
		if errors.As(err, &cerr) {
			return nil, cerr.WithKind(wire.KindSessionNotCreated)
		}
		return nil, err
	}

	id, returned, err := decodeNewSession(resp)
	if err != nil {
		s.state.Store(int32(StateTerminated))
		return nil, err
	}
	s.id = id
	s.caps = req.AlwaysMatch.Merge(returned)
	s.browser = vendorFor(ParseBrowserKind(s.caps.BrowserName()))
	s.state.Store(int32(StateActive))
	r.metrics.sessionStarted()
	r.log.Debug("session created", "session", s.id, "browser", s.browser.Kind().String())
	return s, nil
}

func decodeNewSession(resp *wire.Response) (string, Capabilities, error) {
	var w3c struct {
		SessionID    string       `json:"sessionId"`
		Capabilities Capabilities `json:"capabilities"`
	}
	if err := resp.Unmarshal(&w3c); err == nil && w3c.SessionID != "" {
		return w3c.SessionID, w3c.Capabilities, nil
	}
	if resp.SessionID != "" {
		// JSON Wire Protocol: id at the top level, capabilities as value
		var caps Capabilities
		if err := resp.Unmarshal(&caps); err != nil {
			return "", nil, err
		}
		return resp.SessionID, caps, nil
	}
	return "", nil, &ProtocolError{
		HTTPStatus: resp.HTTPStatus,
		Body:       resp.Value,
		Err:        errors.New("new session response has no session id"),
	}
}

// execute runs one command: encode, send, decode. args fill the path
// template after the session id, if any.
func (r *Remote) execute(cmd wire.Command, params wire.Params, args ...string) (*wire.Response, error) {
	start := time.Now()
	attrs := []attribute.KeyValue{attribute.String("http.method", cmd.Method)}
	if len(args) > 0 {
		attrs = append(attrs, attribute.String("webdriver.session_id", args[0]))
	}
	if len(args) > 1 {
		attrs = append(attrs, attribute.String("webdriver.element_id", args[1]))
	}
	_, span := r.tracer.Start(context.Background(), "webdriver."+cmd.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...))
	defer span.End()

	resp, err := r.roundTrip(cmd, params, args)
	r.metrics.recordCommand(cmd.Name, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("webdriver.outcome", outcome(err)))
		span.SetStatus(codes.Error, err.Error())
		r.log.Debug("command failed", "command", cmd.Name, "err", err)
		return nil, err
	}
	return resp, nil
}

func (r *Remote) roundTrip(cmd wire.Command, params wire.Params, args []string) (*wire.Response, error) {
	path, err := cmd.URL(args...)
	if err != nil {
		return nil, err
	}
	body, err := wire.Encode(cmd, params)
	if err != nil {
		return nil, err
	}
	raw, err := r.t.Send(cmd.Method, path, body, 0)
	if err != nil {
		return nil, err
	}
	return wire.Decode(raw.StatusCode, raw.Body)
}

func unmarshalValue[T any](resp *wire.Response) (T, error) {
	var v T
	if err := resp.Unmarshal(&v); err != nil {
		return v, err
	}
	return v, nil
}
