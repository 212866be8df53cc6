// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apiclient

// An Event identifies a point in a session's attempt loop at which
// installed handlers are run.
type Event int

const (
	// BeforeExecutionStart fires once, before the first attempt. Only
	// the execution's plan has been set at this point.
	BeforeExecutionStart Event = iota
	// BeforeAttempt fires before each attempt is sent. The execution's
	// request is the one that will be sent, with the session's default
	// headers already merged in. Handlers may change its header freely,
	// but should clone the URL before changing it.
	BeforeAttempt
	// BeforeReadBody fires when an attempt has produced a response,
	// whatever its status code, before the body is buffered. It never
	// fires for an attempt that ended in a network error.
	BeforeReadBody
	// AfterAttemptTimeout fires when an attempt failed with a timeout.
	// The attempt timeout counter has already been incremented.
	AfterAttemptTimeout
	// AfterAttempt fires after every attempt, successful or not, and
	// before the retry policy is consulted. At least one of the
	// execution's response and error is non-nil; both are if reading
	// the body failed. The request logger and the metrics collector
	// hook in here.
	AfterAttempt
	// AfterPlanTimeout fires when the plan context's deadline has been
	// exceeded, either during an attempt or during a backoff wait. It
	// always follows AfterAttempt.
	AfterPlanTimeout
	// AfterExecutionEnd fires once, after the last attempt. The
	// execution is in its final state, end time included.
	AfterExecutionEnd

	eventSentinel
	numEvents = int(eventSentinel)
)

var eventNames = [numEvents]string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"AfterPlanTimeout",
	"AfterExecutionEnd",
}

// Events returns all events, in the order in which they occur.
func Events() []Event {
	evts := make([]Event, numEvents)
	for i := range evts {
		evts[i] = Event(i)
	}
	return evts
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[evt]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
