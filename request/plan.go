// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var template, _ = http.NewRequest("GET", "", nil)

const nilCtxMsg = "apiclient/request: nil context"

// A Plan describes a logical HTTP request that may take several
// attempts to complete.
//
// Unlike http.Request, a Plan holds its body as a []byte so that it can
// be replayed on every retry.
type Plan struct {
	// Method specifies the HTTP method. An empty string means GET.
	Method string

	// URL specifies the absolute URL to access, query included.
	URL *urlpkg.URL

	// Header contains the request header fields set on this plan. The
	// session adds its default headers to every attempt, but never
	// overrides a field already present here.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body means
	// no body is sent.
	Body []byte

	ctx context.Context
}

// NewPlan returns a new Plan for the given context, method, URL and
// optional body.
//
// Parameter body may be nil, a string, a []byte, or an io.Reader (read
// to the end and, if it is also an io.Closer, closed).
func NewPlan(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("apiclient/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
	}, nil
}

// Context returns the plan's context, which is never nil.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// SetBearerAuth sets the plan's Authorization header to the bearer
// token scheme with the given token.
func (p *Plan) SetBearerAuth(token string) {
	p.Header.Set("Authorization", "Bearer "+token)
}

// Idempotent reports whether the plan's method is idempotent under RFC
// 7231 section 4.2.2, meaning the plan may be replayed after a network
// failure without risking a duplicated side effect.
func (p *Plan) Idempotent() bool {
	switch strings.ToUpper(p.Method) {
	case "", "GET", "HEAD", "PUT", "DELETE", "OPTIONS", "TRACE":
		return true
	default:
		return false
	}
}

// ToRequest creates the http.Request for one attempt at executing the
// plan. The request's context is set to ctx, which may not be nil.
//
// The request shares the plan's URL and a clone of its Header, so
// changes made to the request by event handlers do not leak back into
// the plan.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Host = p.URL.Host
	r.Header = p.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(p.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
	}
	return r
}

func validMethod(method string) bool {
	return strings.IndexFunc(method, func(r rune) bool {
		return !httpguts.IsTokenRune(r)
	}) == -1
}
