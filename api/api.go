// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package api builds pipelines for a JSON web API living under a single
// base URI.
//
// An API prefixes the base URI to the URL of every target and sends
// the headers that JSON APIs conventionally expect:
//
//	a := api.New(api.Config{BaseURI: "https://api.example.com/v1", Token: tok}, nil)
//	resp, err := reqx.WithDecoder(a.Get(), reqx.JSONDecoder[User]()).
//		Run(ctx, request.URL("/users/42"))
//
// The headers are added with reqx.WithHeaders, so a header given at the
// call site, or by a combinator applied later, takes precedence.
package api

import (
	"github.com/gogama/reqx"
	"github.com/gogama/reqx/request"
)

const (
	// HeaderClientID carries Config.ClientID.
	HeaderClientID = "Contactlab-ClientId"
	// HeaderClientVersion carries Config.ClientVersion.
	HeaderClientVersion = "Contactlab-ClientVersion"

	jsonType = "application/json"
)

// Config describes the web API pipelines are built for.
type Config struct {
	// BaseURI is prefixed to the URL of every target as is. It should
	// not end with a slash if target URLs start with one.
	BaseURI string
	// Token, if not empty, is sent as a bearer token in the
	// Authorization header.
	Token string
	// ClientID, if not empty, is sent in the HeaderClientID header.
	ClientID string
	// ClientVersion, if not empty, is sent in the HeaderClientVersion
	// header.
	ClientVersion string
}

// An API builds text pipelines for the web API described by its
// Config. It is immutable and safe for concurrent use.
type API struct {
	config Config
	client *reqx.Client
}

// New returns an API which sends its requests through c. If c is nil,
// the zero reqx.Client is used.
func New(config Config, c *reqx.Client) *API {
	if c == nil {
		c = &reqx.Client{}
	}
	return &API{config: config, client: c}
}

// Config returns the configuration of a.
func (a *API) Config() Config {
	return a.config
}

// Request returns a pipeline with no preset method.
func (a *API) Request() reqx.Req[string] {
	return a.wrap(a.client.Request())
}

// Get returns a GET pipeline.
func (a *API) Get() reqx.Req[string] {
	return a.wrap(a.client.Get())
}

// Post returns a POST pipeline.
func (a *API) Post() reqx.Req[string] {
	return a.wrap(a.client.Post())
}

// Put returns a PUT pipeline.
func (a *API) Put() reqx.Req[string] {
	return a.wrap(a.client.Put())
}

// Patch returns a PATCH pipeline.
func (a *API) Patch() reqx.Req[string] {
	return a.wrap(a.client.Patch())
}

// Delete returns a DELETE pipeline.
func (a *API) Delete() reqx.Req[string] {
	return a.wrap(a.client.Delete())
}

func (a *API) wrap(r reqx.Req[string]) reqx.Req[string] {
	base := a.config.BaseURI
	return r.WithHeaders(a.headers()).Local(func(t request.Target) (request.Target, error) {
		t.URL = base + t.URL
		return t, nil
	})
}

func (a *API) headers() [][2]string {
	h := [][2]string{
		{"Accept", jsonType},
		{"Content-Type", jsonType},
	}
	if a.config.Token != "" {
		h = append(h, [2]string{"Authorization", "Bearer " + a.config.Token})
	}
	if a.config.ClientID != "" {
		h = append(h, [2]string{HeaderClientID, a.config.ClientID})
	}
	if a.config.ClientVersion != "" {
		h = append(h, [2]string{HeaderClientVersion, a.config.ClientVersion})
	}
	return h
}
