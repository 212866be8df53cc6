// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gogama/apiclient/request"
)

// An HTTPDoer sends a single HTTP request in the manner of
// http.Client.Do from the standard library. *http.Client is the usual
// implementation.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

// Doer is the interface that wraps the Do method of Session.
//
// Do executes a request plan, retrying as policy dictates, and returns
// the final execution state.
type Doer interface {
	Do(p *request.Plan) (*request.Execution, error)
}

// IdleCloser is the interface that wraps the CloseIdleConnections
// method of http.Client, Session and Client.
type IdleCloser interface {
	CloseIdleConnections()
}

// Getter is the interface that wraps the JSON GET methods of Client.
type Getter interface {
	Get(ctx context.Context, endpoint string, params url.Values) (interface{}, error)
	GetInto(ctx context.Context, endpoint string, params url.Values, out interface{}) error
}

// Poster is the interface that wraps the JSON POST methods of Client.
type Poster interface {
	Post(ctx context.Context, endpoint string, body interface{}) (interface{}, error)
	PostInto(ctx context.Context, endpoint string, body, out interface{}) error
}

// API groups Getter and Poster. Client implements it; code that only
// needs to call an API should depend on API, or on the narrower Getter
// or Poster, so tests can substitute a fake.
type API interface {
	Getter
	Poster
}
