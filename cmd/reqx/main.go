// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command reqx sends one HTTP request through a reqx pipeline and
// prints the response body to standard output.
//
// Usage:
//
//	reqx [flags] METHOD PATH
//
// PATH is appended to the base URI from the configuration file (or
// --base-uri), so with no base URI it must be an absolute URL. The exit
// status is 0 on success, 1 if no response was received, 2 if a
// response was received but rejected, and 3 if the command line or
// configuration is invalid.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/api"
	"github.com/gogama/reqx/internal/config"
	"github.com/gogama/reqx/reqlog"
	"github.com/gogama/reqx/reqmetrics"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/throttle"
)

const (
	exitOK       = 0
	exitRequest  = 1
	exitResponse = 2
	exitConfig   = 3
)

// streams carries the command's output writers through the fx graph.
type streams struct {
	stdout io.Writer
	stderr io.Writer
}

func main() {
	var cli config.CLI
	kong.Parse(&cli, kongOptions()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, &cli, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("reqx"),
		kong.Description("Send an HTTP request through a reqx pipeline."),
		kong.UsageOnError(),
	}
}

func run(ctx context.Context, cli *config.CLI, stdout, stderr io.Writer) int {
	code := exitOK
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cli, streams{stdout: stdout, stderr: stderr}),
		fx.Provide(
			config.Load,
			newLogger,
			prometheus.NewRegistry,
			newClient,
			newAPI,
			newLimiter,
			newPipeline,
		),
		fx.Invoke(warnConfigPermissions, func(p reqx.Req[string], reg *prometheus.Registry, logger *slog.Logger, s streams) {
			code = send(ctx, cli, p, s)
			writeMetrics(cli, reg, logger)
		}),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(stderr, "reqx: %v\n", err)
		return exitConfig
	}
	return code
}

func newLogger(cfg *config.Config, s streams) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		h = slog.NewJSONHandler(s.stderr, opts)
	default:
		h = slog.NewTextHandler(s.stderr, opts)
	}

	return slog.New(h)
}

func newClient(logger *slog.Logger, reg *prometheus.Registry) *reqx.Client {
	handlers := &reqx.HandlerGroup{}
	reqlog.Install(handlers, logger)
	reqmetrics.Install(handlers, reg)
	return &reqx.Client{
		HTTPDoer: &http.Client{},
		Handlers: handlers,
	}
}

func newAPI(cfg *config.Config, c *reqx.Client) *api.API {
	return api.New(api.Config{
		BaseURI:       cfg.API.BaseURI,
		Token:         cfg.API.Token,
		ClientID:      cfg.API.ClientID,
		ClientVersion: cfg.API.ClientVersion,
	}, c)
}

func newLimiter(cfg *config.Config, logger *slog.Logger) *rate.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	logger.Debug("rate limiter enabled", "rps", cfg.RateLimit.RequestsPerSecond, "burst", cfg.RateLimit.Burst)
	return throttle.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
}

func newPipeline(cli *config.CLI, cfg *config.Config, a *api.API, l *rate.Limiter) (reqx.Req[string], error) {
	method := strings.ToUpper(cli.Method)
	if method == "" {
		return reqx.Req[string]{}, errors.New("missing method")
	}

	params, err := parsePairs(cli.Query, "=")
	if err != nil {
		return reqx.Req[string]{}, fmt.Errorf("--query: %w", err)
	}

	r := a.Request().WithMethod(method)
	if len(cfg.Request.Headers) > 0 {
		r = r.WithHeaders(cfg.Request.Headers)
	}
	if len(cfg.Request.SuccessStatuses) > 0 {
		r = r.WithSuccessStatuses(cfg.Request.SuccessStatuses...)
	}
	if d := cfg.Request.TimeoutDuration(); d > 0 {
		r = r.WithTimeout(d)
	}
	if cli.Data != "" {
		r = r.WithBody(cli.Data)
	}
	if len(params) > 0 {
		r = r.WithURLParams(params)
	}
	return throttle.Wrap[string](r, l), nil
}

func send(ctx context.Context, cli *config.CLI, p reqx.Req[string], s streams) int {
	header, err := parseHeaders(cli.Header)
	if err != nil {
		fmt.Fprintf(s.stderr, "reqx: --header: %v\n", err)
		return exitConfig
	}

	target := request.Target{URL: cli.Path, Init: request.Init{Header: header}}
	resp, err := p.Run(ctx, target)
	if err == nil {
		_, _ = io.WriteString(s.stdout, resp.Data)
		return exitOK
	}

	fmt.Fprintln(s.stderr, err)
	var respErr *reqx.ResponseError
	if errors.As(err, &respErr) {
		if respErr.Response != nil && respErr.Response.Body != nil {
			_, _ = io.Copy(s.stdout, respErr.Response.Body)
		}
		return exitResponse
	}
	return exitRequest
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

func writeMetrics(cli *config.CLI, reg *prometheus.Registry, logger *slog.Logger) {
	if cli.Metrics == "" {
		return
	}
	if err := prometheus.WriteToTextfile(cli.Metrics, reg); err != nil {
		logger.Error("failed to write metrics", "path", cli.Metrics, "err", err)
	}
}

func parseHeaders(values []string) (http.Header, error) {
	if len(values) == 0 {
		return nil, nil
	}
	h := make(http.Header, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%q is not in NAME:VALUE form", v)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func parsePairs(values []string, sep string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, sep)
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not in KEY%sVALUE form", v, sep)
		}
		m[key] = value
	}
	return m, nil
}
