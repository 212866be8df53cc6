// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about the attempts made by
// an apiclient.Session.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/gogama/apiclient"
	"github.com/gogama/apiclient/request"
	"github.com/gogama/apiclient/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// A Collector counts attempts, retries and attempt latency. Install it
// in a session with Install. A Collector is safe for concurrent use.
type Collector struct {
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type attemptStartKey struct{}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apiclient_attempts_total",
			Help: "Request attempts by method and outcome (status code or transient error category).",
		}, []string{"method", "code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apiclient_retries_total",
			Help: "Request attempts that were retries of an earlier attempt.",
		}, []string{"method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apiclient_attempt_duration_seconds",
			Help:    "Duration of individual request attempts, body read included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	for _, m := range []prometheus.Collector{c.attempts, c.retries, c.latency} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Install adds the collector's handlers to g.
func (c *Collector) Install(g *apiclient.HandlerGroup) {
	g.PushBack(apiclient.BeforeAttempt, apiclient.HandlerFunc(c.beforeAttempt))
	g.PushBack(apiclient.AfterAttempt, apiclient.HandlerFunc(c.afterAttempt))
}

func (c *Collector) beforeAttempt(_ apiclient.Event, e *request.Execution) {
	e.SetValue(attemptStartKey{}, time.Now())
	if e.Attempt > 0 {
		c.retries.WithLabelValues(e.Plan.Method).Inc()
	}
}

func (c *Collector) afterAttempt(_ apiclient.Event, e *request.Execution) {
	method := e.Plan.Method
	c.attempts.WithLabelValues(method, outcome(e)).Inc()
	if start, ok := e.Value(attemptStartKey{}).(time.Time); ok {
		c.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}

func outcome(e *request.Execution) string {
	if e.Response != nil {
		return strconv.Itoa(e.StatusCode())
	}
	return "error_" + transient.Categorize(e.Err).String()
}

// Serve exposes the metrics gathered by g on addr at /metrics until
// ctx is done. An empty addr does nothing.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).WithField("addr", addr).Error("metrics server failed")
		}
	}()
}
