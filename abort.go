// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"time"

	"github.com/gogama/reqx/request"
)

// WithCancel returns a pipeline whose requests are aborted as soon as
// signal is done, unless a signal was already set closer to the call
// site.
//
// The signal is combined with, not substituted for, the context passed
// to Run: the request is aborted when either is done. An aborted request
// fails with a RequestError which wraps the cause of signal (see
// context.Cause).
func (r Req[A]) WithCancel(signal context.Context) Req[A] {
	return r.Local(func(t request.Target) (request.Target, error) {
		if t.Init.Signal == nil {
			t.Init.Signal = signal
		}
		return t, nil
	})
}

// WithTimeout returns a pipeline whose requests are aborted if no
// result is ready within d. A timed out request fails with a
// RequestError which wraps ErrTimeout and reports true from its Timeout
// method. If the response arrives in time but reading its body does not
// finish before d, a ResponseError wrapping ErrTimeout is returned.
//
// Every run gets its own timer, and the timer is stopped as soon as a
// result is ready, whether success or failure.
//
// The timeout is applied as a cancellation signal, so a signal set
// closer to the call site (by WithCancel or in the target) replaces it.
// To bound a single run regardless of the pipeline, pass a context with
// a deadline to Run.
func (r Req[A]) WithTimeout(d time.Duration) Req[A] {
	return Req[A]{
		run: func(ctx context.Context, t request.Target) (*Resp[A], error) {
			signal, cancel := context.WithCancelCause(context.Background())
			timer := time.AfterFunc(d, func() {
				cancel(ErrTimeout)
			})
			defer cancel(nil)
			defer timer.Stop()
			return r.WithCancel(signal).run(ctx, t)
		},
	}
}
