// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/http"

	"github.com/gogama/reqx/request"
)

const nilCtxMsg = "reqx: nil context"

// A Resp is the result of a successful pipeline run.
type Resp[A any] struct {
	// Response is the HTTP response. Its body has already been read in
	// full and replaced with a re-readable copy.
	Response *http.Response
	// Data is the typed payload extracted from the response.
	Data A
	// Target is the normalized target that was sent, after every
	// combinator in the pipeline was applied.
	Target request.Target
}

// A Req is a pipeline: a deferred HTTP request which yields a payload of
// type A when run.
//
// Req values are immutable. Combinator methods return a new Req and
// leave the receiver unchanged, and a Req may be run any number of
// times, concurrently if desired. Each run sends its own request.
//
// The zero value is not usable. Obtain a Req from one of the entry
// points (Request, Get, Post, Put, Patch, Delete, or the same-named
// methods of Client), from RequestAs, or from New.
type Req[A any] struct {
	run func(context.Context, request.Target) (*Resp[A], error)
}

// New creates a Req from a run function. It is the extension point for
// combinators not provided by this package.
//
// The run function receives the normalized target and should return
// either a non-nil Resp or an Err. Any other error it returns is
// reported to the caller wrapped in a RequestError, and so is a nil
// Resp returned without an error (as ErrNoResponse).
func New[A any](run func(ctx context.Context, t request.Target) (*Resp[A], error)) Req[A] {
	if run == nil {
		panic("reqx: nil run function")
	}
	return Req[A]{
		run: func(ctx context.Context, t request.Target) (*Resp[A], error) {
			resp, err := run(ctx, t)
			if err != nil {
				return nil, toRequestError(err, t)
			}
			if resp == nil {
				return nil, &RequestError{Err: ErrNoResponse, Target: t}
			}
			return resp, nil
		},
	}
}

// Run normalizes the input into a request.Target, sends the request it
// describes through the pipeline, and blocks until a result is ready.
//
// The returned error is nil if and only if the returned Resp is non-nil,
// and when non-nil it is always a *RequestError or a *ResponseError.
//
// The request is aborted if ctx is done before a result is ready, and
// in that case the returned error wraps the cause of ctx. The context
// must not be nil.
func (r Req[A]) Run(ctx context.Context, in request.Input) (*Resp[A], error) {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	return r.run(ctx, request.Normalize(in))
}

// Local returns a pipeline which passes every target through f before
// handing it to r.
//
// This is the primitive used by all the target-configuring combinators.
// If f returns an error, r is not run, and the error is reported as a
// RequestError for the target f received.
func (r Req[A]) Local(f func(request.Target) (request.Target, error)) Req[A] {
	return Req[A]{
		run: func(ctx context.Context, t request.Target) (*Resp[A], error) {
			t2, err := f(t)
			if err != nil {
				return nil, toRequestError(err, t)
			}
			return r.run(ctx, t2)
		},
	}
}

// Then returns a pipeline which passes every successful result of r
// through f. Errors from r are returned unchanged and f is not called.
//
// If f returns an error which is not already an Err, it is reported as
// a ResponseError for the response f received.
func Then[A, B any](r Req[A], f func(*Resp[A]) (*Resp[B], error)) Req[B] {
	return Req[B]{
		run: func(ctx context.Context, t request.Target) (*Resp[B], error) {
			resp, err := r.run(ctx, t)
			if err != nil {
				return nil, err
			}
			out, err := f(resp)
			if err != nil {
				return nil, toResponseError(err, resp.Response, resp.Target)
			}
			return out, nil
		},
	}
}
