// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webdriver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fedesog/webdriver/v2/transport"
)

// Metrics tracks commands and sessions.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	ActiveSessions  prometheus.Gauge
	Transport       *transport.Metrics
}

// NewMetrics creates the collectors, transport ones included, and registers
// them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "webdriver",
				Subsystem: "command",
				Name:      "total",
				Help:      "Total number of WebDriver commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "webdriver",
				Subsystem: "command",
				Name:      "duration_seconds",
				Help:      "WebDriver command latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"command"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "webdriver",
				Subsystem: "session",
				Name:      "active",
				Help:      "Number of sessions created and not yet terminated",
			},
		),
		Transport: transport.NewMetrics(reg),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.CommandDuration, m.ActiveSessions)
	}
	return m
}

func (m *Metrics) recordCommand(name string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name, outcome(err)).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *Metrics) sessionEnded() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}
