// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides whether a failed API call attempt is retried,
// and how long to wait before the retry.
//
// A Policy is a Decider plus a Waiter. Both have constructors for the
// common cases, so a policy can be put together in a few lines:
//
//	decider := retry.Times(2).And(retry.StatusCode(500, 502, 503, 504))
//	waiter := retry.NewBackoffWaiter(time.Second, 2*time.Minute)
//	policy := retry.NewPolicy(decider, waiter)
//
// DefaultPolicy is the policy every session uses unless told otherwise:
// three attempts in total, retrying 500, 502, 503 and 504 responses on
// any method and transient network errors on idempotent methods, with
// a one second backoff factor.
package retry
