// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"encoding/json"

	"github.com/gogama/reqx/request"
)

// WithBody returns a pipeline which sends the given request body,
// unless a body was already set closer to the call site.
//
// Values of the types request.BodyBytes accepts (string, []byte,
// url.Values, io.Reader) are sent unchanged. Any other value is encoded
// to JSON once, when WithBody is called; if the encoding fails the
// pipeline fails with a RequestError and nothing is sent.
//
// An io.Reader body can only be read once, so a pipeline built with one
// should only be run once.
func (r Req[A]) WithBody(body interface{}) Req[A] {
	b, err := encodeBody(body)
	return r.Local(func(t request.Target) (request.Target, error) {
		if err != nil {
			return t, err
		}
		if t.Init.Body == nil {
			t.Init.Body = b
		}
		return t, nil
	})
}

func encodeBody(body interface{}) (interface{}, error) {
	if body == nil || request.IsRawBody(body) {
		return body, nil
	}
	j, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return string(j), nil
}
