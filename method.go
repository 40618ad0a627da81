// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import "github.com/gogama/reqx/request"

// WithMethod returns a pipeline which sends requests with the given
// HTTP method, unless a method was already set closer to the call site.
func (r Req[A]) WithMethod(method string) Req[A] {
	return r.Local(func(t request.Target) (request.Target, error) {
		if t.Init.Method == "" {
			t.Init.Method = method
		}
		return t, nil
	})
}
