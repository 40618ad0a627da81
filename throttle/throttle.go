// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package throttle limits the rate at which pipelines are run.
package throttle

import (
	"context"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/request"

	"golang.org/x/time/rate"
)

// Wrap returns a pipeline which waits for a token from l before running
// r. Every run of the returned pipeline consumes one token, so a single
// limiter can be shared by many pipelines to cap their combined rate.
//
// The wait is abandoned when the run context is done or when the
// target's Signal is done, whichever comes first, and the run then
// fails with a RequestError whose cause is the abort cause. If l would
// have to wait past the run context deadline, the run fails
// immediately with the limiter's error.
//
// A nil l means no limit.
func Wrap[A any](r reqx.Runner[A], l *rate.Limiter) reqx.Req[A] {
	if r == nil {
		panic("reqx/throttle: nil pipeline")
	}
	return reqx.New(func(ctx context.Context, t request.Target) (*reqx.Resp[A], error) {
		if l != nil {
			if err := wait(ctx, t.Init.Signal, l); err != nil {
				return nil, err
			}
		}
		return r.Run(ctx, t)
	})
}

// NewLimiter returns a limiter allowing rps runs per second with the
// given burst. A burst below one is raised to one.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func wait(ctx, signal context.Context, l *rate.Limiter) error {
	if signal != nil {
		merged, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)
		stop := context.AfterFunc(signal, func() {
			cancel(context.Cause(signal))
		})
		defer stop()
		ctx = merged
	}

	if err := l.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return err
	}
	return nil
}
