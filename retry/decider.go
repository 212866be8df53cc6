// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/apiclient/request"
	"github.com/gogama/apiclient/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It also provides the logical composition
// methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// DefaultAttempts is the total number of attempts, initial attempt
// included, allowed by DefaultDecider.
const DefaultAttempts = 3

// DefaultStatusCodes are the response status codes retried by
// DefaultDecider.
var DefaultStatusCodes = []int{500, 502, 503, 504}

// DefaultDecider allows up to DefaultAttempts total attempts. It retries
// when the response status is one of DefaultStatusCodes, whatever the
// method, and when the attempt failed with a transient network error
// and the method is idempotent.
var DefaultDecider = Times(DefaultAttempts - 1).
	And(StatusCode(DefaultStatusCodes...).Or(TransientErr.And(Idempotent)))

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
var TransientErr DeciderFunc = transientErr

// Idempotent is a decider that returns true if the plan's method is
// idempotent, so it is safe to send twice.
var Idempotent DeciderFunc = idempotent

// Decide returns true if a retry should be done, and false otherwise.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into one that returns true only if both
// do. g is not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into one that returns true if either does.
// g is not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a decider which allows up to n retries, that is
// n+1 attempts in total. It returns true while the zero-based attempt
// index is less than n.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// StatusCode constructs a decider that returns true if the most recent
// attempt received a response whose status code is in ss.
func StatusCode(ss ...int) DeciderFunc {
	set := make(map[int]bool, len(ss))
	for _, s := range ss {
		set[s] = true
	}
	return func(e *request.Execution) bool {
		return set[e.StatusCode()]
	}
}

func transientErr(e *request.Execution) bool {
	return transient.IsTransient(e.Err)
}

func idempotent(e *request.Execution) bool {
	return e.Plan != nil && e.Plan.Idempotent()
}
