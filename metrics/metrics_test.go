// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gogama/apiclient"
	"github.com/gogama/apiclient/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err, "second registration must fail")
}

func TestCollector(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)
	handlers := &apiclient.HandlerGroup{}
	c.Install(handlers)

	s, err := apiclient.NewSession(apiclient.Config{
		HTTPDoer: server.Client(),
		Retry:    &apiclient.RetryConfig{Total: 3},
		Handlers: handlers,
	})
	require.NoError(t, err)

	p, err := request.NewPlan(context.Background(), "GET", server.URL, nil)
	require.NoError(t, err)
	e, err := s.Do(p)
	require.NoError(t, err)
	assert.Equal(t, 200, e.StatusCode())

	assert.Equal(t, float64(2), testutil.ToFloat64(c.attempts.WithLabelValues("GET", "503")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.attempts.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.retries.WithLabelValues("GET")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "404", outcome(&request.Execution{Response: &http.Response{StatusCode: 404}}))
	assert.Equal(t, "error_Timeout", outcome(&request.Execution{Err: context.DeadlineExceeded}))
	assert.Equal(t, "error_Not", outcome(&request.Execution{Err: context.Canceled}))
}
