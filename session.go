// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/apiclient/request"
	"github.com/gogama/apiclient/retry"
	"github.com/gogama/apiclient/timeout"
	"golang.org/x/net/http2"
)

var emptyHandlers = HandlerGroup{}

// A Session executes request plans with retries, per-attempt timeouts
// and default headers. Its zero value is a valid configuration that
// uses http.DefaultClient, retry.DefaultPolicy, timeout.DefaultPolicy,
// no default headers and no handlers.
//
// A Session's HTTPDoer usually caches TCP connections, so sessions
// should be reused rather than created per call. A Session is safe for
// concurrent use by multiple goroutines as long as its fields are not
// changed after first use.
type Session struct {
	// HTTPDoer sends the individual attempts. If nil,
	// http.DefaultClient is used.
	HTTPDoer HTTPDoer
	// RetryPolicy decides when to retry failed attempts and how long
	// to wait first. If nil, retry.DefaultPolicy is used.
	RetryPolicy retry.Policy
	// TimeoutPolicy sets the timeout of each attempt. If nil,
	// timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Handlers are run when events occur during plan execution. If
	// nil, no handlers are run.
	Handlers *HandlerGroup
	// Header holds default header fields added to every attempt for
	// which the plan does not already set the same field.
	Header http.Header
}

// NewSession builds a Session from cfg: default headers including the
// bearer token and JSON content type, the retry policy from cfg.Retry,
// the timeout from cfg.Timeout, and the request logger if cfg.Logger is
// set. It performs no network I/O.
func NewSession(cfg Config) (*Session, error) {
	h, err := cfg.header()
	if err != nil {
		return nil, err
	}
	rc := cfg.retryConfig()
	if rc.BackoffFactor < 0 {
		return nil, errors.New("apiclient: negative backoff factor")
	}

	doer := cfg.HTTPDoer
	if doer == nil {
		t, err := newTransport()
		if err != nil {
			return nil, err
		}
		doer = &http.Client{Transport: t}
	}

	handlers := &HandlerGroup{}
	if cfg.Logger != nil {
		handlers.PushBack(AfterAttempt, NewRequestLogger(cfg.Logger))
	}
	handlers.pushBackAll(cfg.Handlers)

	return &Session{
		HTTPDoer:      doer,
		RetryPolicy:   rc.Policy(),
		TimeoutPolicy: timeout.FromDuration(cfg.Timeout),
		Handlers:      handlers,
		Header:        h,
	}, nil
}

// newTransport returns a transport with the same tuning as
// http.DefaultTransport, negotiating HTTP/2 over TLS.
func newTransport() (*http.Transport, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Do executes a request plan following the session's retry and timeout
// policies, and returns the state after the final attempt.
//
// An error is returned only if the final attempt failed to produce a
// complete HTTP response: a network failure, an attempt or plan
// timeout, or cancellation of the plan context. Such errors are always
// of type *url.Error. A non-2XX status code is not an error at this
// level.
//
// The returned Execution is never nil. If the error is nil, it holds a
// non-nil Response and Body (which may be empty).
func (s *Session) Do(p *request.Plan) (*request.Execution, error) {
	e := request.Execution{
		Plan: p,
	}

	doer := s.doer()

	timeoutPolicy := s.TimeoutPolicy
	if timeoutPolicy == nil {
		timeoutPolicy = timeout.DefaultPolicy
	}

	retryPolicy := s.RetryPolicy
	if retryPolicy == nil {
		retryPolicy = retry.DefaultPolicy
	}

	handlers := s.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()

RetryLoop:
	for {
		s.sendAndReceive(&e, doer, handlers, timeoutPolicy)
		if e.Timeout() {
			e.AttemptTimeouts++
			handlers.run(AfterAttemptTimeout, &e)
		}
		handlers.run(AfterAttempt, &e)
		planCtxErr := p.Context().Err()
		if planCtxErr == context.DeadlineExceeded {
			handlers.run(AfterPlanTimeout, &e)
			break
		} else if planCtxErr != nil {
			e.Err = urlErrorWrap(p, planCtxErr)
			break
		} else if retryPolicy.Decide(&e) {
			timer := time.NewTimer(retryPolicy.Wait(&e))
			select {
			case <-timer.C:
			case <-p.Context().Done():
				timer.Stop()
				err := p.Context().Err()
				e.Err = urlErrorWrap(p, err)
				if err == context.DeadlineExceeded {
					handlers.run(AfterPlanTimeout, &e)
				}
				break RetryLoop
			}
			e.Response = nil
			e.Err = nil
			e.Body = nil
			e.Attempt++
		} else {
			break
		}
	}

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, &e)
	return &e, e.Err
}

func (s *Session) sendAndReceive(e *request.Execution, doer HTTPDoer, handlers *HandlerGroup, timeoutPolicy timeout.Policy) {
	p := e.Plan
	ctx, cancel := context.WithTimeout(p.Context(), timeoutPolicy.Timeout(e))
	defer cancel()
	e.Request = p.ToRequest(ctx)
	for k, vv := range s.Header {
		if _, ok := e.Request.Header[k]; !ok {
			e.Request.Header[k] = append([]string(nil), vv...)
		}
	}
	handlers.run(BeforeAttempt, e)
	var err error
	e.Response, err = doer.Do(e.Request)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
		return
	}
	defer func() {
		_ = e.Response.Body.Close()
	}()
	handlers.run(BeforeReadBody, e)
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
	}
}

// CloseIdleConnections invokes the same method on the session's
// HTTPDoer, if it has one.
func (s *Session) CloseIdleConnections() {
	if ic, ok := s.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (s *Session) doer() HTTPDoer {
	if s.HTTPDoer == nil {
		return http.DefaultClient
	}

	return s.HTTPDoer
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
