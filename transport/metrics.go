// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts HTTP exchanges with remote ends.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "webdriver",
				Subsystem: "transport",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests sent to remote ends",
			},
			[]string{"method", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "webdriver",
				Subsystem: "transport",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "webdriver",
				Subsystem: "transport",
				Name:      "in_flight",
				Help:      "Number of HTTP requests waiting for a response",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration, m.InFlight)
	}
	return m
}

// begin marks a request in flight; the returned func records its outcome.
func (m *Metrics) begin() func(method, code string, elapsed time.Duration) {
	if m == nil {
		return func(string, string, time.Duration) {}
	}
	m.InFlight.Inc()
	return func(method, code string, elapsed time.Duration) {
		m.InFlight.Dec()
		m.Requests.WithLabelValues(method, code).Inc()
		m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
	}
}
