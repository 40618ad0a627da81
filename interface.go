// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/http"

	"github.com/gogama/reqx/request"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
//
// HTTPDoer is the transport primitive at the end of every pipeline. A
// pipeline never sends HTTP requests any other way.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// The HTTPDoerFunc type is an adapter to allow the use of ordinary
// functions as an HTTPDoer.
type HTTPDoerFunc func(*http.Request) (*http.Response, error)

// Do calls f(r).
func (f HTTPDoerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any idle which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
//
// If the underlying implementation does not support this ability,
// CloseIdleConnections does nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Runner is the interface that wraps the basic Run method.
//
// Req implements Runner. Code which only runs pipelines, as opposed to
// building them, can accept a Runner so that it can be handed a Req
// wrapped by another package (for example a rate limiter).
type Runner[A any] interface {
	Run(ctx context.Context, in request.Input) (*Resp[A], error)
}
