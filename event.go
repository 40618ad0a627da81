// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeSend identifies the event that occurs after the HTTP request
	// has been built from the target, immediately before it is handed
	// to the HTTPDoer.
	//
	// When Client fires BeforeSend, the execution's request field is set
	// to the HTTP request that WILL BE sent after all BeforeSend handlers
	// have finished. Handlers should treat the request as read-only.
	BeforeSend Event = iota
	// AfterSend identifies the event that occurs after a response was
	// received and its body was read and buffered.
	//
	// When Client fires AfterSend, the execution's response and body
	// fields are set and its end time is recorded. AfterSend fires
	// regardless of the response status code, so it fires before the
	// pipeline decides whether the status code is acceptable.
	AfterSend
	// AfterSendError identifies the event that occurs when the send
	// failed: the request could not be built, the pipeline was aborted,
	// the HTTPDoer returned an error, or the body could not be read.
	//
	// When Client fires AfterSendError, the execution's error field is
	// set and its end time is recorded. The response field is non-nil
	// only if the failure happened while reading the body.
	AfterSendError
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeSend",
	"AfterSend",
	"AfterSendError",
}

// Events returns a slice containing all events which can occur while
// Client sends a request, in the order in which they would occur.
// AfterSend and AfterSendError are mutually exclusive.
func Events() []Event {
	return []Event{
		BeforeSend,
		AfterSend,
		AfterSendError,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
