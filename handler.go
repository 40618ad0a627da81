// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"github.com/gogama/reqx/request"
)

// A HandlerGroup holds the observers a Client notifies around the
// terminal send of every pipeline built on it. Each Event has its own
// chain, run in insertion order. Packages such as reqlog and reqmetrics
// install themselves into a group with a single call.
//
// Populate the group before the first pipeline runs. PushBack takes no
// lock and must not race with sends.
type HandlerGroup struct {
	chains [][]Handler
}

// PushBack appends h to the chain for evt. It panics if h is nil.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("reqx: nil handler")
	}
	if g.chains == nil {
		g.chains = make([][]Handler, numEvents)
	}
	g.chains[evt] = append(g.chains[evt], h)
}

// notify runs the chain for evt against the in-progress send.
func (g *HandlerGroup) notify(evt Event, e *request.Execution) {
	if i := int(evt); i < len(g.chains) {
		for _, h := range g.chains[i] {
			h.Handle(evt, e)
		}
	}
}

// A Handler observes one stage of a pipeline's send. It may read any
// field of the Execution and may stash per-send state with SetValue,
// but it cannot change the outcome the pipeline sees.
type Handler interface {
	Handle(Event, *request.Execution)
}

// HandlerFunc lets a plain function act as a Handler.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
