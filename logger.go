// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

import (
	"github.com/apex/log"
	"github.com/gogama/apiclient/request"
)

// LogRequest writes three info lines about the latest attempt of e:
// its URL, its method and the response status code. e must have a
// request.
func LogRequest(l log.Interface, e *request.Execution) {
	l.Infof("Request URL: %s", e.Request.URL)
	l.Infof("Request Method: %s", e.Request.Method)
	l.Infof("Response Status Code: %d", e.StatusCode())
}

// NewRequestLogger returns a handler for the AfterAttempt event that
// calls LogRequest when the attempt got a response, and logs a warning
// carrying the error when it did not.
func NewRequestLogger(l log.Interface) Handler {
	if l == nil {
		panic("apiclient: nil logger")
	}
	return HandlerFunc(func(_ Event, e *request.Execution) {
		if e.Response == nil {
			l.WithError(e.Err).
				WithField("attempt", e.Attempts()).
				Warnf("Request %s %s failed", e.Request.Method, e.Request.URL)
			return
		}
		LogRequest(l, e)
	})
}
