// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gogama/reqx/request"
)

var emptyHandlers = HandlerGroup{}

// A Client sends the requests at the end of pipelines. Its zero value
// is a valid configuration which uses http.DefaultClient (from net/http)
// as the HTTPDoer and runs no event handlers.
//
// Client's HTTPDoer typically has an internal state (cached TCP
// connections) so Client instances should be reused instead of created
// as needed. Client is safe for concurrent use by multiple goroutines.
//
// A Client is lower-level than a pipeline. The HTTPDoer is responsible
// for all details of sending the HTTP request and receiving the response
// (redirects, connection reuse, TLS), while Client adds the following:
//
// • Client merges the cancellation signal configured on the target into
// the context of the request;
//
// • Client reads and buffers the entire HTTP response body, and replaces
// the response body with a re-readable copy; and
//
// • Client invokes user-provided handler functions before and after
// sending, allowing features such as logging and metrics to be mixed in
// from outside packages.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used.
	HTTPDoer HTTPDoer
	// Handlers allows custom handler chains to be invoked when
	// designated events occur while a request is sent.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
}

// An Extractor produces the payload of a successful response from the
// response and its fully buffered body.
//
// An error returned by an Extractor is reported as a ResponseError.
type Extractor[A any] func(resp *http.Response, body []byte) (A, error)

// Text extracts the response body as a string. It never fails.
func Text(_ *http.Response, body []byte) (string, error) {
	return string(body), nil
}

// Bytes extracts the response body as a byte slice. It never fails.
func Bytes(_ *http.Response, body []byte) ([]byte, error) {
	return body, nil
}

// RequestAs returns the terminal pipeline of Client c: it sends the
// target using c, and extracts the payload of the response using x.
//
// The pipeline fails with a RequestError if the HTTP request cannot be
// built from the target, if it is aborted before being sent, or if the
// HTTPDoer returns an error. It fails with a ResponseError if the
// response body cannot be read, if the status code is neither 2XX nor
// listed in the target's SuccessStatuses, or if x returns an error.
func RequestAs[A any](c *Client, x Extractor[A]) Req[A] {
	if c == nil {
		panic("reqx: nil client")
	}
	if x == nil {
		panic("reqx: nil extractor")
	}
	return Req[A]{
		run: func(ctx context.Context, t request.Target) (*Resp[A], error) {
			e, err := c.send(ctx, t)
			if err != nil {
				return nil, err
			}
			if !t.Init.Accepts(e.StatusCode()) {
				return nil, &ResponseError{Err: &StatusError{Code: e.StatusCode()}, Response: e.Response, Target: t}
			}
			data, err := x(e.Response, e.Body)
			if err != nil {
				return nil, &ResponseError{Err: err, Response: e.Response, Target: t}
			}
			return &Resp[A]{Response: e.Response, Data: data, Target: t}, nil
		},
	}
}

// Request returns a pipeline which sends requests through c and yields
// the response body as text. No method is preset, so the method is GET
// unless configured otherwise.
func (c *Client) Request() Req[string] {
	return RequestAs[string](c, Text)
}

// Get returns a text pipeline which sends GET requests through c.
func (c *Client) Get() Req[string] {
	return c.Request().WithMethod(http.MethodGet)
}

// Post returns a text pipeline which sends POST requests through c.
func (c *Client) Post() Req[string] {
	return c.Request().WithMethod(http.MethodPost)
}

// Put returns a text pipeline which sends PUT requests through c.
func (c *Client) Put() Req[string] {
	return c.Request().WithMethod(http.MethodPut)
}

// Patch returns a text pipeline which sends PATCH requests through c.
func (c *Client) Patch() Req[string] {
	return c.Request().WithMethod(http.MethodPatch)
}

// Delete returns a text pipeline which sends DELETE requests through c.
func (c *Client) Delete() Req[string] {
	return c.Request().WithMethod(http.MethodDelete)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	doer := c.doer()
	if ic, ok := doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}

	return c.HTTPDoer
}

func (c *Client) handlers() *HandlerGroup {
	if c.Handlers == nil {
		return &emptyHandlers
	}

	return c.Handlers
}

func (c *Client) send(ctx context.Context, t request.Target) (*request.Execution, error) {
	handlers := c.handlers()
	e := &request.Execution{
		Target: t,
		Start:  time.Now(),
	}

	ctx, release := withSignal(ctx, t.Init.Signal)
	defer release()

	var err error
	e.Request, err = t.ToRequest(ctx)
	if err != nil {
		return e, fail(e, handlers, err, &RequestError{Err: err, Target: t})
	}
	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		return e, fail(e, handlers, cause, &RequestError{Err: cause, Target: t})
	}

	handlers.notify(BeforeSend, e)

	e.Response, err = c.doer().Do(e.Request)
	if err != nil {
		e.Response = nil
		err = abortCause(ctx, err)
		return e, fail(e, handlers, err, &RequestError{Err: err, Target: t})
	}

	e.Body, err = readBody(e.Response)
	if err != nil {
		err = abortCause(ctx, err)
		return e, fail(e, handlers, err, &ResponseError{Err: err, Response: e.Response, Target: t})
	}

	e.End = time.Now()
	handlers.notify(AfterSend, e)
	return e, nil
}

func fail(e *request.Execution, handlers *HandlerGroup, cause error, err Err) Err {
	e.Err = cause
	e.End = time.Now()
	handlers.notify(AfterSendError, e)
	return err
}

// withSignal returns a context which is done when either ctx or signal
// is done. The cause of the returned context is the cause of whichever
// finished first. The release function must be called once the request
// is complete.
func withSignal(ctx, signal context.Context) (context.Context, func()) {
	if signal == nil {
		return ctx, func() {}
	}

	merged, cancel := context.WithCancelCause(ctx)
	if signal.Err() != nil {
		cancel(context.Cause(signal))
		return merged, func() { cancel(nil) }
	}

	stop := context.AfterFunc(signal, func() {
		cancel(context.Cause(signal))
	})
	return merged, func() {
		stop()
		cancel(nil)
	}
}

// abortCause makes sure an error caused by the request context being
// done identifies the reason the context was done.
func abortCause(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(err, cause) {
		return err
	}
	return fmt.Errorf("%w: %w", cause, err)
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		resp.Body = http.NoBody
		return []byte{}, nil
	}

	body := resp.Body
	defer func() {
		_ = body.Close()
	}()

	b, err := io.ReadAll(body)
	if err != nil {
		resp.Body = http.NoBody
		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewReader(b))
	return b, nil
}

var defaultClient = &Client{}

// Package-level entry points. They send requests through a zero-value
// Client, and therefore through http.DefaultClient.
var (
	// Request is a text pipeline with no preset method (GET unless
	// configured otherwise).
	Request = defaultClient.Request()
	// Get is a text pipeline which sends GET requests.
	Get = defaultClient.Get()
	// Post is a text pipeline which sends POST requests.
	Post = defaultClient.Post()
	// Put is a text pipeline which sends PUT requests.
	Put = defaultClient.Put()
	// Patch is a text pipeline which sends PATCH requests.
	Patch = defaultClient.Patch()
	// Delete is a text pipeline which sends DELETE requests.
	Delete = defaultClient.Delete()
)
