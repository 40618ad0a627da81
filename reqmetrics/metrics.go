// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package reqmetrics records Prometheus metrics for the requests sent by
// a reqx.Client.
//
// Install a Collector into the Client's handler group:
//
//	handlers := &reqx.HandlerGroup{}
//	reqmetrics.Install(handlers, prometheus.NewRegistry())
//	cl := &reqx.Client{Handlers: handlers}
package reqmetrics

import (
	"net/http"
	"strconv"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/transient"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// knownMethods bounds the cardinality of the method label.
var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodDelete: true, http.MethodPatch: true, http.MethodHead: true,
	http.MethodOptions: true,
}

type inFlightKey struct{}

// Collector is a reqx.Handler holding the Prometheus collectors for one
// or more Clients. It is safe for concurrent use.
type Collector struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	ErrorsTotal      *prometheus.CounterVec
}

// New creates a Collector and registers its collectors with reg. If reg
// is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reqx_requests_total",
			Help: "Total HTTP responses received, by method and status code.",
		}, []string{"method", "status_code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reqx_request_duration_seconds",
			Help:    "Time from building the request to reading the whole response body.",
			Buckets: defaultBuckets,
		}, []string{"method"}),
		RequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "reqx_requests_in_flight",
			Help: "Number of requests handed to the transport and not yet finished.",
		}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reqx_errors_total",
			Help: "Total failed sends, by method and failure category.",
		}, []string{"method", "category"}),
	}
}

// Install creates a Collector registered with reg and pushes it onto
// the back of every event chain of g.
func Install(g *reqx.HandlerGroup, reg prometheus.Registerer) *Collector {
	c := New(reg)
	for _, evt := range reqx.Events() {
		g.PushBack(evt, c)
	}
	return c
}

// Handle updates the metrics for the event evt.
func (c *Collector) Handle(evt reqx.Event, e *request.Execution) {
	method := NormalizeMethod(e)
	switch evt {
	case reqx.BeforeSend:
		c.RequestsInFlight.Inc()
		e.SetValue(inFlightKey{}, true)
	case reqx.AfterSend:
		c.done(e)
		c.RequestsTotal.WithLabelValues(method, strconv.Itoa(e.StatusCode())).Inc()
		c.RequestDuration.WithLabelValues(method).Observe(e.Duration().Seconds())
	case reqx.AfterSendError:
		c.done(e)
		c.ErrorsTotal.WithLabelValues(method, transient.Categorize(e.Err).String()).Inc()
	}
}

func (c *Collector) done(e *request.Execution) {
	if e.Value(inFlightKey{}) == true {
		c.RequestsInFlight.Dec()
		e.SetValue(inFlightKey{}, false)
	}
}

// NormalizeMethod returns a bounded method label for the execution.
// Non-standard methods are mapped to "other".
func NormalizeMethod(e *request.Execution) string {
	m := e.Target.Init.Method
	if e.Request != nil {
		m = e.Request.Method
	}
	if m == "" {
		return http.MethodGet
	}
	if knownMethods[m] {
		return m
	}
	return "other"
}
