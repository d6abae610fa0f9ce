// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCommandSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	d := startDriver(t, newServer(t), nil, WithTracerProvider(tp))

	require.NoError(t, d.Url(getUrl("simple")))
	_, err := d.Title()
	require.NoError(t, err)
	_, err = d.FindElement(ID, "missing")
	require.ErrorIs(t, err, ErrNoSuchElement)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range sr.Ended() {
		byName[span.Name()] = span
	}
	require.Contains(t, byName, "webdriver.newSession")
	require.Contains(t, byName, "webdriver.getTitle")
	title := byName["webdriver.getTitle"]
	assert.Contains(t, title.Attributes(), attribute.String("webdriver.session_id", d.ID()))
	assert.Equal(t, codes.Unset, title.Status().Code)

	find := byName["webdriver.findElement"]
	require.NotNil(t, find)
	assert.Equal(t, codes.Error, find.Status().Code)
	assert.Contains(t, find.Attributes(), attribute.String("webdriver.outcome", "no such element"))
}

func TestCommandMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)
	srv := newServer(t)

	d, err := Start(srv.URL(), nil, WithMetrics(m))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))

	_, err = d.Title()
	require.NoError(t, err)
	_, err = d.Title()
	require.NoError(t, err)
	_, err = d.AlertText()
	require.ErrorIs(t, err, ErrNoSuchAlert)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("getTitle", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("getAlertText", "no such alert")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Transport.InFlight))
	assert.Positive(t, testutil.CollectAndCount(m.Transport.Requests))

	d.Quit()
	d.Quit()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions))

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestWireTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := startDriver(t, newServer(t), nil, WithLogger(logger))

	require.NoError(t, d.Url(getUrl("simple")))
	out := buf.String()
	assert.Contains(t, out, "session created")
	assert.Contains(t, out, ">> POST "+d.Remote().URL()+"/session/"+d.ID()+"/url")
	assert.Contains(t, out, "<< ")
}

func TestQuitFailureIsLoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	srv := newServer(t)
	d, err := Start(srv.URL(), nil, WithLogger(logger))
	require.NoError(t, err)

	srv.FailNext("unknown error", "browser crashed")
	d.Quit()
	assert.Equal(t, StateTerminated, d.State())
	assert.Contains(t, buf.String(), "quit: delete session failed")
	assert.NotContains(t, buf.String(), ">> ", "wire traces are debug only")
}
