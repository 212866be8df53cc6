// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package apiclient is a small JSON API client built on a retrying HTTP
session.

Create a Client from a Config holding the API's base URL and key:

	client, err := apiclient.New(apiclient.Config{
		BaseURL: "https://open.bigmodel.cn",
		APIKey:  os.Getenv("API_KEY"),
	})
	...
	v, err := client.Get(ctx, "/api/paas/v4/models", url.Values{"page": {"1"}})
	...
	v, err := client.Post(ctx, "/api/paas/v4/chat/completions", body)

Every request carries "Authorization: Bearer <key>" and
"Content-Type: application/json". Responses with status 500, 502, 503
or 504 are retried, up to three attempts in total, with exponential
backoff; other failure statuses are returned at once as a *StatusError.
Network failures are returned as a *url.Error.

Retry, timeout and logging behaviour are all set through Config:

	client, err := apiclient.New(apiclient.Config{
		BaseURL: baseURL,
		APIKey:  key,
		Retry:   &apiclient.RetryConfig{Total: 5, BackoffFactor: 500 * time.Millisecond},
		Timeout: 10 * time.Second,
		Logger:  log.Log,
	})

The Session underneath the Client can also be used on its own to
execute request plans (see package request) with the same retry and
timeout policies. Hook into a session's attempt loop by installing
handlers into a HandlerGroup:

	handlers := &apiclient.HandlerGroup{}
	handlers.PushBack(apiclient.BeforeAttempt, apiclient.HandlerFunc(
		func(_ apiclient.Event, e *request.Execution) {
			log.Infof("Attempt %d to %s", e.Attempt, e.Request.URL)
		}))
*/
package apiclient
