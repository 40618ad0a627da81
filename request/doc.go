// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Target (describes the request a
pipeline is about to send) and Execution (describes a single send of a
Target). These two types are what every reqx pipeline stage reads and
produces.

The first core type is Target, which pairs a resource identifier (a URL
string) with an Init configuration holding the method, headers, body,
cancellation signal and the other options the final send needs. Most
callers never build a Target themselves: a bare URL is enough, and
Normalize turns it into a Target with an empty Init.

	resp, err := reqx.Get.Run(ctx, request.URL("https://example.com/users"))
	...

When call-site options are needed, pass a Target instead:

	resp, err := reqx.Post.Run(ctx, request.Target{
		URL: "https://example.com/users",
		Init: request.Init{
			Header: http.Header{"Content-Type": {"application/json"}},
			Body:   `{"name":"x"}`,
		},
	})

Values in the call-site Init always win over values set by pipeline
combinators.

The second core type is Execution, which represents the state of the
single HTTP round trip at the end of a pipeline. It is handed to event
handlers installed on a reqx.Client. You will typically not allocate
Execution instances yourself.
*/
package request
