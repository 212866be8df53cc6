// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gogama/apiclient/request"
)

// A Client calls a JSON API at a fixed base URL through a Session.
//
// Every request carries the session's default headers: the bearer
// token, "Content-Type: application/json" and Config.Headers. Each
// call is independent; a Client is safe for concurrent use by multiple
// goroutines.
type Client struct {
	baseURL string
	doer    Doer
}

// New validates cfg, builds its Session with NewSession, and returns a
// Client bound to cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	s, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: cfg.BaseURL, doer: s}, nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("apiclient: empty base URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("apiclient: base URL %q must be an absolute http or https URL", raw)
	}
	return nil
}

// BaseURL returns the base URL every endpoint is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET to the base URL followed by endpoint, with params
// added to the query string, and returns the parsed JSON response
// body. JSON objects decode to map[string]interface{}, arrays to
// []interface{} and numbers to float64. An empty body decodes to nil.
//
// The call fails with a *StatusError if the final response status,
// after any retries, is 400 or above, and with a *url.Error if no
// response could be obtained.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (interface{}, error) {
	var v interface{}
	if err := c.Do(ctx, http.MethodGet, endpoint, params, nil, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetInto is like Get but decodes the response body into out.
func (c *Client) GetInto(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, endpoint, params, nil, out)
}

// Post issues a POST to the base URL followed by endpoint, with body
// encoded as JSON, and returns the parsed JSON response body. It fails
// in the same ways as Get.
//
// A json.RawMessage or []byte body is sent as is. A nil body sends no
// request body at all.
func (c *Client) Post(ctx context.Context, endpoint string, body interface{}) (interface{}, error) {
	var v interface{}
	if err := c.Do(ctx, http.MethodPost, endpoint, nil, body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// PostInto is like Post but decodes the response body into out.
func (c *Client) PostInto(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, endpoint, nil, body, out)
}

// Do issues a request with any method. The URL is the base URL
// followed by endpoint, with params added to the query string. A
// non-nil body is encoded as JSON, and a non-nil out receives the
// decoded response body.
func (c *Client) Do(ctx context.Context, method, endpoint string, params url.Values, body, out interface{}) error {
	u, err := c.url(endpoint, params)
	if err != nil {
		return err
	}
	b, err := encodeBody(body)
	if err != nil {
		return err
	}
	p, err := request.NewPlan(ctx, method, u, b)
	if err != nil {
		return err
	}

	e, err := c.doer.Do(p)
	if err != nil {
		return err
	}
	if e.StatusCode() >= 400 {
		return newStatusError(e)
	}
	if out == nil || len(bytes.TrimSpace(e.Body)) == 0 {
		return nil
	}
	if err = json.Unmarshal(e.Body, out); err != nil {
		return &DecodeError{URL: u, StatusCode: e.StatusCode(), Body: e.Body, Err: err}
	}
	return nil
}

// Session returns the session the client sends its requests through,
// or nil if the client was not built by New.
func (c *Client) Session() *Session {
	s, _ := c.doer.(*Session)
	return s
}

// CloseIdleConnections releases the idle connections held by the
// client's session.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) url(endpoint string, params url.Values) (string, error) {
	raw := c.baseURL + endpoint
	if len(params) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vv := range params {
		for _, v := range vv {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return x, nil
	case []byte:
		return x, nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode request body: %w", err)
		}
		return b, nil
	}
}
