// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/apiclient/transient"
)

// An Execution represents the state of a single Plan execution.
//
// The session updates the Execution as attempts are made and returns
// it once the plan is done. Policies and event handlers should treat
// the exported fields as read-only, apart from reasonable changes to
// Request in a BeforeAttempt handler. They may keep their own data on
// the execution with SetValue and Value.
type Execution struct {
	// Plan is the plan being executed. It is never nil.
	Plan *Plan

	// Start is set when the execution starts and never changes after.
	Start time.Time

	// End is zero until the execution ends.
	End time.Time

	// Attempt is the zero-based index of the current attempt: zero on
	// the initial attempt, one on the first retry, and so on. After
	// the execution ends it is the index of the last attempt made.
	Attempt int

	// AttemptTimeouts counts the attempts that ended in a timeout.
	AttemptTimeouts int

	// Request is the HTTP request of the current, or last, attempt.
	Request *http.Request

	// Response is the HTTP response of the most recent attempt. It is
	// nil if that attempt failed to produce one or is still underway.
	Response *http.Response

	// Err is the error from the most recent attempt, always a
	// *url.Error when non-nil. Once the execution ends it equals the
	// error returned by Session.Do.
	Err error

	// Body is the fully buffered response body of the most recent
	// attempt. It should be treated as invalid unless Err is nil.
	Body []byte

	data context.Context
}

// StatusCode returns the status code of the most recent response, or
// 0 if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the headers of the most recent response, or a nil
// header if there is none. A nil header is safe to read from.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}

	return e.Response.Header
}

// Attempts returns the number of attempts made so far, counting the
// one in progress.
func (e *Execution) Attempts() int {
	if !e.Started() {
		return 0
	}
	return e.Attempt + 1
}

// Duration returns the duration of the execution: zero before it
// starts, time elapsed since Start while it runs, and End minus Start
// once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return 0
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently holds a timeout, either of
// the last attempt or of the whole plan.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue stores an arbitrary value on the execution under key. The
// key follows the rules of context.WithValue: comparable, non-nil, and
// preferably of an unexported type.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the value stored under key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	if e.data == nil {
		return nil
	}

	return e.data.Value(key)
}
