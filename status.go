// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"github.com/gogama/reqx/request"
)

// WithSuccessStatuses returns a pipeline which treats a response as
// successful if its status code is 2XX or one of codes. Any other status
// code makes the pipeline fail with a ResponseError whose cause is a
// *StatusError.
//
// The codes are added to the target's SuccessStatuses so that the final
// stage lets the response through, and the status is checked again once
// the result is ready. When several WithSuccessStatuses are applied, a
// response must satisfy each of them.
func (r Req[A]) WithSuccessStatuses(codes ...int) Req[A] {
	accepted := append([]int(nil), codes...)
	widened := r.Local(func(t request.Target) (request.Target, error) {
		t.Init.SuccessStatuses = unionStatuses(t.Init.SuccessStatuses, accepted)
		return t, nil
	})
	return Then(widened, func(resp *Resp[A]) (*Resp[A], error) {
		if resp.Response == nil {
			return resp, nil
		}
		code := resp.Response.StatusCode
		check := request.Init{SuccessStatuses: accepted}
		if !check.Accepts(code) {
			return nil, &ResponseError{Err: &StatusError{Code: code}, Response: resp.Response, Target: resp.Target}
		}
		return resp, nil
	})
}

func unionStatuses(a, b []int) []int {
	u := make([]int, 0, len(a)+len(b))
	u = append(u, a...)
Outer:
	for _, code := range b {
		for _, existing := range u {
			if code == existing {
				continue Outer
			}
		}
		u = append(u, code)
	}
	return u
}
