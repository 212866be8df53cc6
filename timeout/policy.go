// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/apiclient/request"
)

// A Policy returns the timeout to set on the next attempt of a plan
// execution.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Timeout(e *request.Execution) time.Duration
}

// DefaultDuration is the per-attempt timeout of DefaultPolicy.
const DefaultDuration = 30 * time.Second

// DefaultPolicy sets a fixed timeout of DefaultDuration on each attempt.
var DefaultPolicy = Fixed(DefaultDuration)

// Infinite is a policy which never times out. The plan context can
// still cancel the attempt.
var Infinite = Fixed(1<<63 - 1)

// Fixed constructs a policy that uses d as the timeout of every
// attempt.
func Fixed(d time.Duration) Policy {
	if d < 1 {
		panic("apiclient/timeout: duration must be positive")
	}
	return fixed(d)
}

// FromDuration maps a configured duration onto a policy: zero means
// DefaultPolicy, a negative value means Infinite, and anything else
// means Fixed(d).
func FromDuration(d time.Duration) Policy {
	switch {
	case d == 0:
		return DefaultPolicy
	case d < 0:
		return Infinite
	default:
		return Fixed(d)
	}
}

type fixed time.Duration

func (p fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(p)
}
