// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// Not means a retry is very unlikely to succeed. Every other category
// means the same call has some prospect of succeeding if sent again.
type Category int

const (
	// Not indicates any non-transient error, including nil.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error, or one of
	// the errors it wraps, has a Timeout method reporting true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). An API server that is restarting is
	// briefly not listening, so this is treated as transient.
	ConnRefused
	// ConnReset indicates the remote host reset an established
	// connection (syscall.ECONNRESET), typically a load balancer or a
	// server shutting down mid-response.
	ConnReset
	// ConnAborted indicates the local stack aborted the connection
	// (syscall.ECONNABORTED).
	ConnAborted
)

var categoryNames = [...]string{"Not", "Timeout", "ConnRefused", "ConnReset", "ConnAborted"}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Category(?)"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err. A nil error and
// an error with no transient cause both produce Not.
//
// Categorize walks the whole chain of wrapped errors. It deliberately
// ignores Temporary methods, whose meaning varies between packages.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET):
		return ConnReset
	case errors.Is(err, syscall.ECONNREFUSED):
		return ConnRefused
	case errors.Is(err, syscall.ECONNABORTED):
		return ConnAborted
	}

	return Not
}

// IsTransient reports whether Categorize(err) is anything but Not.
func IsTransient(err error) bool {
	return Categorize(err) != Not
}

type timeouter interface {
	Timeout() bool
}
