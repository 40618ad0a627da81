// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"

	"github.com/gogama/reqx/request"
	"golang.org/x/sync/errgroup"
)

// RunAll runs r once for each input, concurrently, and waits for all the
// runs to finish. The results are returned in the order of the inputs.
//
// If any run fails, the context of the remaining runs is canceled, and
// RunAll returns a nil slice and the first error. If r is a Req, the
// error is always an Err.
func RunAll[A any](ctx context.Context, r Runner[A], inputs ...request.Input) ([]*Resp[A], error) {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	results := make([]*Resp[A], len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			resp, err := r.Run(gctx, in)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
