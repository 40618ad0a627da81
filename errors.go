// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/transient"
)

// Err is the error type returned by every pipeline. It is implemented by
// exactly two types, *RequestError and *ResponseError, and no other type
// can implement it.
//
// Use a type switch or errors.As to handle each kind:
//
//	switch e := err.(type) {
//	case *reqx.RequestError:
//		// No response was received.
//	case *reqx.ResponseError:
//		// e.Response holds the unacceptable response.
//	}
type Err interface {
	error
	// Timeout reports whether the failure was caused by a timeout.
	Timeout() bool

	isErr()
}

// A RequestError reports a failure that happened before any response
// existed: the request could not be built, the pipeline was aborted, or
// the HTTPDoer returned an error.
type RequestError struct {
	// Err is the underlying cause.
	Err error
	// Target is the normalized target that was being attempted.
	Target request.Target
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return "reqx: request error"
	}
	return "reqx: request error: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying cause is a timeout, either a
// WithTimeout expiry, a context deadline, or a timeout reported by the
// HTTPDoer.
func (e *RequestError) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

func (e *RequestError) isErr() {}

// A ResponseError reports a failure that happened after a response was
// received: the status code was not accepted, the body could not be
// read, or the body could not be parsed or decoded.
type ResponseError struct {
	// Err is the underlying cause.
	Err error
	// Response is the response that was judged unacceptable. Its body
	// can always be read in full.
	Response *http.Response
	// Target is the normalized target that produced the response.
	Target request.Target
}

func (e *ResponseError) Error() string {
	if e.Err == nil {
		return "reqx: response error"
	}
	return "reqx: response error: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ResponseError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying cause is a timeout. This is
// only possible if the timeout struck while the body was being read.
func (e *ResponseError) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// StatusCode returns the status code of the response, or 0 if there is
// no response.
func (e *ResponseError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func (e *ResponseError) isErr() {}

// A StatusError is the cause of a ResponseError produced because the
// response status code was not accepted.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return "Request responded with status code " + strconv.Itoa(e.Code)
}

// StatusCode returns the rejected status code.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// ErrNoResponse is the cause of the RequestError reported when a run
// function given to New returns neither a Resp nor an error.
var ErrNoResponse = errors.New("reqx: run function returned no response")

// ErrTimeout is the abort cause of a pipeline stopped by WithTimeout.
// Test for it with errors.Is.
var ErrTimeout error = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string {
	return "reqx: request timed out"
}

func (timeoutError) Timeout() bool {
	return true
}

func toRequestError(err error, t request.Target) Err {
	if e, ok := err.(Err); ok {
		return e
	}
	return &RequestError{Err: err, Target: t}
}

func toResponseError(err error, resp *http.Response, t request.Target) Err {
	if e, ok := err.(Err); ok {
		return e
	}
	return &ResponseError{Err: err, Response: resp, Target: t}
}
