// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/reqx/transient"
)

// An Execution represents the state of the single HTTP round trip made
// at the end of a pipeline run.
//
// When the final stage of a pipeline sends its Target, an Execution is
// created for it and updated as the send progresses (when the request
// is built, when the response arrives, when the body has been read).
// Event handlers receive the Execution at each step.
//
// Event handlers may attach values to an Execution using its SetValue
// method and read them back using the Value method. However, they
// should treat the exported fields as read-only.
type Execution struct {
	// Target is the normalized target being sent, after every pipeline
	// combinator has been applied.
	Target Target
	// Start is the time the send started. It is set before the request
	// is built and never changes afterward.
	Start time.Time
	// End is the time the send ended. It contains the zero value until
	// the response body is read or the send fails.
	End time.Time
	// Request is the HTTP request built from Target. It is nil if the
	// request could not be built.
	Request *http.Request
	// Response is the HTTP response received. It is nil while the send
	// is underway, and if the send ended in an error before a response
	// existed.
	Response *http.Response
	// Body is the complete response body, read and buffered before the
	// pipeline continues. It is nil until the body has been read.
	Body []byte
	// Err is the error the send ended with, if any. It is the cause of
	// the pipeline error, not the pipeline error itself.
	Err error

	data context.Context
}

// StatusCode returns the status code of the HTTP response. If there is
// no HTTP response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}
	return e.Response.Header
}

// Duration returns the duration of the send.
//
// If the send has not yet started, the duration is zero. If it has
// ended, the duration returned is equal to End minus Start. Otherwise,
// it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the send has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the send has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different event handlers putting data into the
// same execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}
