// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	urlpkg "net/url"
)

const (
	nilCtxMsg = "reqx/request: nil context"
	formType  = "application/x-www-form-urlencoded"
)

// An Input is anything a pipeline can be run with: either a bare
// resource identifier (URL) or a full Target.
//
// Input is a closed set. Use Normalize to turn any Input into a Target.
type Input interface {
	target() Target
}

// A URL is a bare resource identifier. It normalizes to a Target with
// an empty Init.
type URL string

func (u URL) target() Target {
	return Target{URL: string(u)}
}

// A Target is the pair (resource identifier, configuration) that is
// ultimately turned into an HTTP request by the final stage of a
// pipeline.
//
// Targets are values. Pipeline stages receive a copy and must not
// modify the reference-typed fields of Init in place; replace them
// instead (see Clone).
type Target struct {
	// URL specifies the resource to access. It is parsed only when the
	// request is sent, or by stages that need to inspect it.
	URL string
	// Init holds the request configuration.
	Init Init
}

func (t Target) target() Target {
	return t
}

// Clone returns a deep copy of t. The Header and SuccessStatuses of the
// copy can be modified without affecting t. Body and Signal are shared.
func (t Target) Clone() Target {
	t2 := t
	t2.Init.Header = t.Init.Header.Clone()
	if t.Init.SuccessStatuses != nil {
		t2.Init.SuccessStatuses = append([]int(nil), t.Init.SuccessStatuses...)
	}
	return t2
}

// Init contains the configuration of a Target. Its zero value is the
// empty configuration: method GET, no headers, no body, no signal.
//
// The field structure mirrors the client-side fields of http.Request
// (net/http) wherever possible.
type Init struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string
	// Header contains the request header fields to be sent.
	Header http.Header
	// Body is the request body. It may be nil (no body), a string, a
	// []byte, a url.Values (sent URL-encoded), or an io.Reader. An
	// io.Reader is consumed by the first send, so pipelines meant to
	// run more than once should use one of the other types.
	Body interface{}
	// Signal, when non-nil, cancels the request as soon as it is done.
	// It is combined with, not substituted for, the context the
	// pipeline is run with.
	Signal context.Context
	// SuccessStatuses lists non-2XX status codes which are accepted as
	// success by the final stage of the pipeline.
	SuccessStatuses []int
	// Close stipulates whether to close the connection after sending
	// the request and reading the response.
	Close bool
	// Host optionally overrides the Host header to send. If empty, the
	// host of URL is sent.
	Host string
}

// Accepts reports whether a response with the given status code is a
// success: either a 2XX code, or one of SuccessStatuses.
func (i *Init) Accepts(statusCode int) bool {
	if statusCode >= 200 && statusCode <= 299 {
		return true
	}
	for _, code := range i.SuccessStatuses {
		if code == statusCode {
			return true
		}
	}
	return false
}

// Normalize converts any Input into a Target. A bare URL becomes a
// Target with an empty Init, and a nil Input becomes the zero Target.
func Normalize(in Input) Target {
	if in == nil {
		return Target{}
	}
	return in.target()
}

// ToRequest creates the HTTP request described by the target. The
// context of the new request is set to ctx, which may not be nil.
//
// An error is returned if the method is not a valid HTTP token, if
// the URL cannot be parsed, or if the body cannot be converted by
// BodyBytes.
func (t Target) ToRequest(ctx context.Context) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	method := t.Init.Method
	if method == "" {
		method = http.MethodGet
	}
	b, err := BodyBytes(t.Init.Body)
	if err != nil {
		return nil, err
	}
	r, err := http.NewRequestWithContext(ctx, method, t.URL, nil)
	if err != nil {
		return nil, err
	}
	r.Header = t.Init.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(b) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(b))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
		r.ContentLength = int64(len(b))
	}
	if _, ok := t.Init.Body.(urlpkg.Values); ok && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", formType)
	}
	r.Close = t.Init.Close
	if t.Init.Host != "" {
		r.Host = t.Init.Host
	}
	return r, nil
}
