// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/apiclient/request"
)

// A Waiter specifies how long to wait before retrying a failed
// attempt. The session only consults the Waiter after its Decider has
// returned true.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

const (
	// DefaultBackoffFactor is the backoff factor of DefaultWaiter.
	DefaultBackoffFactor = time.Second
	// DefaultBackoffMax caps every backoff computed by DefaultWaiter.
	DefaultBackoffMax = 120 * time.Second
)

// RetryAfterStatusCodes are the response statuses for which a
// Retry-After header is honoured by DefaultWaiter.
var RetryAfterStatusCodes = []int{413, 429, 503}

// DefaultWaiter honours Retry-After on RetryAfterStatusCodes responses,
// up to DefaultBackoffMax, and otherwise backs off with
// DefaultBackoffFactor.
var DefaultWaiter = RetryAfter(NewBackoffWaiter(DefaultBackoffFactor, DefaultBackoffMax), DefaultBackoffMax, RetryAfterStatusCodes...)

// NewFixedWaiter constructs a Waiter that always returns d.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewBackoffWaiter constructs a Waiter implementing exponential backoff
// without jitter.
//
// After the first failed attempt there is no wait at all. After the
// n-th consecutive failure, for n of two or more, the wait is
//
//	factor * 2**(n-1)
//
// capped at max. A factor of zero disables waiting entirely, which is
// what tests usually want. Parameter factor may not be negative, and
// max must be positive.
func NewBackoffWaiter(factor, max time.Duration) Waiter {
	if factor < 0 {
		panic("apiclient/retry: factor may not be negative")
	}
	if max < 1 {
		panic("apiclient/retry: max must be positive")
	}
	return backoffWaiter{factor: factor, max: max}
}

type backoffWaiter struct {
	factor time.Duration
	max    time.Duration
}

func (w backoffWaiter) Wait(e *request.Execution) time.Duration {
	// e.Attempt is the zero-based index of the attempt that just
	// failed, so it is also n-1.
	if w.factor == 0 || e.Attempt < 1 {
		return 0
	}
	if e.Attempt >= 63 || w.factor > w.max>>uint(e.Attempt) {
		return w.max
	}
	return w.factor << uint(e.Attempt)
}

// RetryAfter wraps w so that, when the most recent response has one of
// the given status codes and carries a valid Retry-After header, the
// header's delay is used instead of w's. The header may be in seconds
// or an HTTP date. A positive limit caps the header delay.
func RetryAfter(w Waiter, limit time.Duration, statusCodes ...int) Waiter {
	if w == nil {
		panic("apiclient/retry: nil waiter")
	}
	return retryAfterWaiter{
		waiter:  w,
		limit:   limit,
		decider: StatusCode(statusCodes...),
		now:     time.Now,
	}
}

type retryAfterWaiter struct {
	waiter  Waiter
	limit   time.Duration
	decider DeciderFunc
	now     func() time.Time
}

func (w retryAfterWaiter) Wait(e *request.Execution) time.Duration {
	if w.decider(e) {
		if d, ok := parseRetryAfter(e.Header().Get("Retry-After"), w.now()); ok {
			if w.limit > 0 && d > w.limit {
				d = w.limit
			}
			return d
		}
	}
	return w.waiter.Wait(e)
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
