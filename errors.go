// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gogama/apiclient/request"
)

// A StatusError is returned by Client when the final response of a
// call, after any retries, has a status code of 400 or above.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	// Body is the complete response body.
	Body []byte
	// Attempts is the number of attempts made, including retries.
	Attempts int
}

func newStatusError(e *request.Execution) *StatusError {
	return &StatusError{
		Method:     e.Plan.Method,
		URL:        e.Plan.URL.String(),
		StatusCode: e.StatusCode(),
		Body:       e.Body,
		Attempts:   e.Attempts(),
	}
}

func (e *StatusError) Error() string {
	kind := "server error"
	if e.StatusCode < 500 {
		kind = "client error"
	}
	msg := fmt.Sprintf("apiclient: %s %s: %d %s (%s)", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), kind)
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	return msg
}

// A DecodeError is returned by Client when a successful response body
// is not valid JSON, or does not fit the destination value.
type DecodeError struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("apiclient: decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is, or wraps, a *StatusError with the
// given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// IsTransport reports whether err is, or wraps, a network-level
// failure: no HTTP response was obtained at all.
func IsTransport(err error) bool {
	var ue *url.Error
	return errors.As(err, &ue)
}
