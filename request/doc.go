// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the two values that flow through a session:
Plan, which describes one logical API call, and Execution, which records
how that call went.

A Plan is a stripped-down http.Request with a pre-buffered body, so the
session can turn it into as many http.Request attempts as the retry
policy allows:

	p, err := request.NewPlan(ctx, "POST", "https://open.bigmodel.cn/api/paas/v4/chat/completions", body)
	...
	e, err := session.Do(p)

The plan context bounds the whole call, including backoff waits between
attempts. Individual attempts are additionally bounded by the session's
timeout policy; an attempt timeout may be retried, a plan timeout never
is.

An Execution is both the result of Session.Do and the argument handed to
retry deciders, waiters, timeout policies and event handlers while the
call is in flight.
*/
package request
