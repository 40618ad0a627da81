// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reqx builds HTTP requests as composable pipelines.

A pipeline is a Req value: a deferred computation which, when run with a
target, sends exactly one HTTP request and yields either a typed response
(Resp) or one of two error kinds. Nothing is sent until Run is called, and
every call to Run sends an independent request.

	users, err := reqx.Get.Run(ctx, request.URL("https://example.com/users"))
	...
	fmt.Println(users.Response.StatusCode, users.Data)

Pipelines are assembled from combinators. Each combinator returns a new
Req, leaving the receiver untouched, so partially configured pipelines can
be shared and extended freely:

	base := reqx.Post.
		WithHeaders(map[string]string{"Authorization": "Bearer " + token}).
		WithTimeout(5 * time.Second)

	create := base.WithBody(newUser)
	resp, err := create.Run(ctx, request.URL("https://example.com/users"))

When the same field is configured more than once, the value supplied at
the call site (the request.Target passed to Run) wins over any combinator,
and among combinators the one applied last wins:

	r := reqx.Get.
		WithHeaders(map[string]string{"X-Foo": "a"}).
		WithHeaders(map[string]string{"X-Foo": "b"})
	r.Run(ctx, request.URL(u))                      // sends X-Foo: b
	r.Run(ctx, request.Target{URL: u, Init: request.Init{
		Header: http.Header{"X-Foo": {"c"}},
	}})                                              // sends X-Foo: c

URL query parameters follow the same rule: parameters already present in
the URL at the call site win over those added by WithURLParams.

Every error returned by Run is either a *RequestError, meaning the
request failed before any response existed, or a *ResponseError, meaning
a response was received but judged unacceptable (status, body read,
JSON parse or decode failure). Both implement Err:

	_, err := r.Run(ctx, request.URL(u))
	var respErr *reqx.ResponseError
	if errors.As(err, &respErr) {
		log.Printf("status %d", respErr.StatusCode())
	}

Responses are always read in full and buffered before a pipeline
continues, so Response.Body can be read again by later stages and by the
caller.

WithDecoder turns a text pipeline into a typed one:

	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	getUser := reqx.WithDecoder(reqx.Get, reqx.JSONDecoder[user]())

To control how HTTP requests are actually sent, use a Client with a
custom HTTPDoer, and build pipelines from its entry points:

	client := &reqx.Client{
		HTTPDoer: &http.Client{Transport: ...},
	}
	get := client.Get()

To observe the requests a Client sends, install handlers into its
HandlerGroup (see packages reqlog and reqmetrics for ready-made ones):

	handlers := &reqx.HandlerGroup{}
	handlers.PushBack(reqx.AfterSend, reqx.HandlerFunc(
		func(_ reqx.Event, e *request.Execution) {
			log.Printf("%s took %v", e.Request.URL, e.Duration())
		}),
	)
	client := &reqx.Client{Handlers: handlers}
*/
package reqx
