// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gogama/reqx/request"
	"golang.org/x/net/http/httpguts"
)

// WithHeaders returns a pipeline which adds the given header fields to
// every request.
//
// The headers may be given as a map[string]string, as a [][2]string of
// name/value pairs, or as an http.Header. Within a map or a list of
// pairs, the last value given for a name wins.
//
// Headers are merged per name (case-insensitively): a name set closer to
// the call site replaces all values this combinator sets for it, and
// names this combinator does not set are left alone.
//
// If a header name or value is not legal, or h is of another type, the
// pipeline fails with a RequestError and nothing is sent.
func (r Req[A]) WithHeaders(h interface{}) Req[A] {
	header, err := toHeader(h)
	return r.Local(func(t request.Target) (request.Target, error) {
		if err != nil {
			return t, err
		}
		t.Init.Header = mergeHeader(header, t.Init.Header)
		return t, nil
	})
}

func toHeader(h interface{}) (http.Header, error) {
	header := make(http.Header)
	switch x := h.(type) {
	case nil:
	case map[string]string:
		names := make([]string, 0, len(x))
		for name := range x {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := setHeader(header, name, x[name]); err != nil {
				return nil, err
			}
		}
	case [][2]string:
		for _, pair := range x {
			if err := setHeader(header, pair[0], pair[1]); err != nil {
				return nil, err
			}
		}
	case http.Header:
		// Names differing only by case share one canonical key; visit
		// them in sorted order so their values always merge the same way.
		names := make([]string, 0, len(x))
		for name := range x {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			values := x[name]
			if !httpguts.ValidHeaderFieldName(name) {
				return nil, fmt.Errorf("reqx: %q is not a legal HTTP header name", name)
			}
			name = http.CanonicalHeaderKey(name)
			for _, value := range values {
				if !httpguts.ValidHeaderFieldValue(value) {
					return nil, fmt.Errorf("reqx: invalid value for HTTP header %q", name)
				}
				header[name] = append(header[name], value)
			}
		}
	default:
		return nil, fmt.Errorf("reqx: invalid header type %T (use map[string]string, [][2]string or http.Header)", h)
	}
	return header, nil
}

func setHeader(header http.Header, name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("reqx: %q is not a legal HTTP header name", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("reqx: invalid value for HTTP header %q", name)
	}
	header.Set(name, value)
	return nil
}

// mergeHeader returns a new header holding base overlaid by incoming.
// Neither argument is modified.
func mergeHeader(base, incoming http.Header) http.Header {
	merged := base.Clone()
	if merged == nil {
		merged = make(http.Header, len(incoming))
	}
	for name, values := range incoming {
		merged[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}
	return merged
}
