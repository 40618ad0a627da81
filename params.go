// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"fmt"
	"net/url"

	"github.com/gogama/reqx/request"
)

// WithURLParams returns a pipeline which adds the given query
// parameters to the URL of every request.
//
// Parameters already present in the URL win over the given ones for
// the same name. Because this combinator sees the target before any
// combinator applied earlier, "present in the URL" includes parameters
// added by WithURLParams applied later in the chain.
//
// The existing query string is kept exactly as it is, and the missing
// parameters are appended to it with names in sorted order. If the URL
// or its query string cannot be parsed, the pipeline fails with a
// RequestError and nothing is sent.
func (r Req[A]) WithURLParams(params map[string]string) Req[A] {
	p := make(url.Values, len(params))
	for name, value := range params {
		p.Set(name, value)
	}
	return r.Local(func(t request.Target) (request.Target, error) {
		u, err := url.Parse(t.URL)
		if err != nil {
			return t, err
		}
		existing, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return t, fmt.Errorf("reqx: invalid query in URL %q: %w", t.URL, err)
		}
		missing := make(url.Values, len(p))
		for name, values := range p {
			if _, ok := existing[name]; !ok {
				missing[name] = values
			}
		}
		if len(missing) == 0 {
			return t, nil
		}
		if u.RawQuery == "" {
			u.RawQuery = missing.Encode()
		} else {
			u.RawQuery += "&" + missing.Encode()
		}
		u.ForceQuery = false
		t.URL = u.String()
		return t, nil
	})
}
