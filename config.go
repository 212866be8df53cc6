// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gogama/apiclient/retry"
	"golang.org/x/net/http/httpguts"
)

// Config holds everything needed to build a Session or a Client. It is
// copied at construction time, so changing it afterwards has no effect.
type Config struct {
	// BaseURL is prepended verbatim to every endpoint passed to the
	// Client, for example "https://open.bigmodel.cn". It must be an
	// absolute http or https URL. Session ignores it.
	BaseURL string

	// APIKey is sent as a bearer token on every request. If empty, no
	// Authorization header is added.
	APIKey string

	// Headers holds extra default headers sent on every request.
	Headers map[string]string

	// Retry configures the retry policy. If nil, DefaultRetryConfig is
	// used.
	Retry *RetryConfig

	// Timeout bounds each individual attempt. Zero means
	// timeout.DefaultDuration and a negative value means no per-attempt
	// timeout at all.
	Timeout time.Duration

	// HTTPDoer sends the individual attempts. If nil, the session gets
	// its own *http.Client with an HTTP/2-enabled transport.
	HTTPDoer HTTPDoer

	// Logger, if not nil, receives a log of every attempt (see
	// NewRequestLogger).
	Logger log.Interface

	// Handlers are extra event handlers installed in the session, after
	// the request logger.
	Handlers *HandlerGroup
}

// RetryConfig describes a retry policy in terms of plain values. Use
// Policy to turn it into a retry.Policy.
type RetryConfig struct {
	// Total is the maximum number of attempts, the initial attempt
	// included. Values below one mean one.
	Total int

	// BackoffFactor scales the wait between attempts: none after the
	// first failure, then BackoffFactor * 2**(n-1) after the n-th. Zero
	// disables waiting; NewSession rejects a negative value.
	BackoffFactor time.Duration

	// BackoffMax caps each wait, including one requested through
	// Retry-After. Zero means retry.DefaultBackoffMax.
	BackoffMax time.Duration

	// StatusCodes are the response statuses that trigger a retry. Nil
	// means retry.DefaultStatusCodes; use an empty, non-nil slice to
	// disable status-based retries.
	StatusCodes []int

	// RespectRetryAfter makes the wait follow the Retry-After header of
	// 413, 429 and 503 responses when present.
	RespectRetryAfter bool
}

// DefaultRetryConfig returns the default retry configuration: three
// attempts, a one second backoff factor, retry on 500, 502, 503 and 504,
// and Retry-After honoured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Total:             retry.DefaultAttempts,
		BackoffFactor:     retry.DefaultBackoffFactor,
		BackoffMax:        retry.DefaultBackoffMax,
		StatusCodes:       append([]int(nil), retry.DefaultStatusCodes...),
		RespectRetryAfter: true,
	}
}

// Policy builds the retry policy described by c.
//
// Status-based retries apply to every method. Transient network errors
// are only retried for idempotent methods, since a POST that failed
// mid-flight may already have been processed by the server.
func (c RetryConfig) Policy() retry.Policy {
	total := c.Total
	if total < 1 {
		total = 1
	}
	codes := c.StatusCodes
	if codes == nil {
		codes = retry.DefaultStatusCodes
	}
	max := c.BackoffMax
	if max <= 0 {
		max = retry.DefaultBackoffMax
	}

	decider := retry.Times(total - 1).
		And(retry.StatusCode(codes...).Or(retry.TransientErr.And(retry.Idempotent)))
	waiter := retry.NewBackoffWaiter(c.BackoffFactor, max)
	if c.RespectRetryAfter {
		waiter = retry.RetryAfter(waiter, max, retry.RetryAfterStatusCodes...)
	}
	return retry.NewPolicy(decider, waiter)
}

func (cfg *Config) retryConfig() RetryConfig {
	if cfg.Retry == nil {
		return DefaultRetryConfig()
	}
	return *cfg.Retry
}

// header builds the default header set and validates every field.
func (cfg *Config) header() (http.Header, error) {
	h := make(http.Header, len(cfg.Headers)+2)
	h.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		h.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	for k, v := range cfg.Headers {
		h.Set(k, v)
	}
	for k, vv := range h {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("apiclient: invalid header name %q", k)
		}
		for _, v := range vv {
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, fmt.Errorf("apiclient: invalid value for header %q", k)
			}
		}
	}
	return h, nil
}
