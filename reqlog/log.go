// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package reqlog logs the requests sent by a reqx.Client using log/slog.
//
// Install the logger into the Client's handler group before the Client
// starts sending:
//
//	handlers := &reqx.HandlerGroup{}
//	reqlog.Install(handlers, slog.Default())
//	cl := &reqx.Client{Handlers: handlers}
//
// Each send produces a debug record when the request is about to be
// sent, then either an info record once the response body has been read
// or a warn record if the send failed.
package reqlog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/request"
)

// Logger is a reqx.Handler which writes one record per event to a
// slog.Logger.
type Logger struct {
	logger *slog.Logger
}

// New returns a Logger writing to l. If l is nil, slog.Default() is
// used.
func New(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l.With("component", "reqx")}
}

// Install pushes a new Logger writing to l onto the back of the
// BeforeSend, AfterSend and AfterSendError chains of g.
func Install(g *reqx.HandlerGroup, l *slog.Logger) *Logger {
	lg := New(l)
	for _, evt := range reqx.Events() {
		g.PushBack(evt, lg)
	}
	return lg
}

// Handle logs the execution e at a level chosen by evt.
func (lg *Logger) Handle(evt reqx.Event, e *request.Execution) {
	ctx := context.Background()
	if e.Request != nil {
		ctx = e.Request.Context()
	}

	switch evt {
	case reqx.BeforeSend:
		lg.logger.DebugContext(ctx, "sending request",
			"method", method(e),
			"url", e.Target.URL,
		)
	case reqx.AfterSend:
		lg.logger.InfoContext(ctx, "request",
			"method", method(e),
			"url", e.Target.URL,
			"status", e.StatusCode(),
			"duration_ms", e.Duration().Milliseconds(),
			"bytes_in", len(e.Body),
		)
	case reqx.AfterSendError:
		attrs := []any{
			"method", method(e),
			"url", e.Target.URL,
			"duration_ms", e.Duration().Milliseconds(),
			"timeout", e.Timeout(),
		}
		if e.Response != nil {
			attrs = append(attrs, "status", e.StatusCode())
		}
		if e.Err != nil {
			attrs = append(attrs, "error", e.Err.Error())
		}
		lg.logger.WarnContext(ctx, "request failed", attrs...)
	}
}

func method(e *request.Execution) string {
	if e.Request != nil {
		return e.Request.Method
	}
	if e.Target.Init.Method != "" {
		return e.Target.Init.Method
	}
	return http.MethodGet
}
