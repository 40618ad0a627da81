// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gogama/reqx/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestWithDecoder(t *testing.T) {
	t.Run("decodes", func(t *testing.T) {
		doer := &bodyDoer{status: 200, body: `{"id":1,"name":"x"}`}
		cl := &Client{HTTPDoer: doer}

		resp, err := WithDecoder(cl.Get(), JSONDecoder[user]()).Run(context.Background(), request.URL("http://example.com/users/1"))

		require.NoError(t, err)
		assert.Equal(t, user{ID: 1, Name: "x"}, resp.Data)
		assert.Equal(t, 200, resp.Response.StatusCode)
		assert.Equal(t, "application/json", doer.header.Get("Accept"))
	})
	t.Run("call site Accept wins", func(t *testing.T) {
		doer := &bodyDoer{status: 200, body: `{}`}
		cl := &Client{HTTPDoer: doer}
		target := request.Target{
			URL:  "http://example.com",
			Init: request.Init{Header: http.Header{"Accept": {"application/vnd.api+json"}}},
		}

		_, err := WithDecoder(cl.Get(), JSONDecoder[user]()).Run(context.Background(), target)

		require.NoError(t, err)
		assert.Equal(t, "application/vnd.api+json", doer.header.Get("Accept"))
	})
	t.Run("empty body", func(t *testing.T) {
		var got interface{}
		d := Decoder[int](func(v interface{}) (int, error) {
			got = v
			return 7, nil
		})
		cl := &Client{HTTPDoer: &bodyDoer{status: 204}}

		resp, err := WithDecoder(cl.Delete(), d).Run(context.Background(), request.URL("http://example.com"))

		require.NoError(t, err)
		assert.Equal(t, 7, resp.Data)
		assert.Equal(t, map[string]interface{}{}, got)
	})
	t.Run("bytes payload", func(t *testing.T) {
		cl := &Client{HTTPDoer: &bodyDoer{status: 200, body: `[1,2,3]`}}

		resp, err := WithDecoder(RequestAs[[]byte](cl, Bytes), JSONDecoder[[]int]()).Run(context.Background(), request.URL("http://example.com"))

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, resp.Data)
	})
	t.Run("structured payload used as is", func(t *testing.T) {
		payload := map[string]interface{}{"id": float64(3), "name": "z"}
		r := New(func(_ context.Context, tg request.Target) (*Resp[map[string]interface{}], error) {
			assert.Equal(t, "application/json", tg.Init.Header.Get("Accept"))
			return &Resp[map[string]interface{}]{Response: &http.Response{StatusCode: 200}, Data: payload, Target: tg}, nil
		})

		resp, err := WithDecoder(r, JSONDecoder[user]()).Run(context.Background(), request.URL("x"))

		require.NoError(t, err)
		assert.Equal(t, user{ID: 3, Name: "z"}, resp.Data)
	})
	t.Run("parse failure", func(t *testing.T) {
		cl := &Client{HTTPDoer: &bodyDoer{status: 200, body: `{"id":1,`}}

		resp, err := WithDecoder(cl.Get(), JSONDecoder[user]()).Run(context.Background(), request.URL("http://example.com"))

		assert.Nil(t, resp)
		require.IsType(t, &ResponseError{}, err)
		respErr := err.(*ResponseError)
		require.NotNil(t, respErr.Response)
		assert.Equal(t, 200, respErr.Response.StatusCode)
		assert.Equal(t, "text/plain", respErr.Response.Header.Get("Content-Type"))
		b, err := io.ReadAll(respErr.Response.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"id":1,`, string(b))
	})
	t.Run("decode failure", func(t *testing.T) {
		cl := &Client{HTTPDoer: &bodyDoer{status: 200, body: `{"id":"one","name":"x"}`}}

		_, err := WithDecoder(cl.Get(), JSONDecoder[user]()).Run(context.Background(), request.URL("http://example.com"))

		require.IsType(t, &ResponseError{}, err)
		b, err := io.ReadAll(err.(*ResponseError).Response.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"one","name":"x"}`, string(b))
	})
	t.Run("upstream error unchanged", func(t *testing.T) {
		cl := &Client{HTTPDoer: &bodyDoer{status: 500, body: `{"id":1}`}}

		_, err := WithDecoder(cl.Get(), JSONDecoder[user]()).Run(context.Background(), request.URL("http://example.com"))

		require.IsType(t, &ResponseError{}, err)
		assert.IsType(t, &StatusError{}, err.(*ResponseError).Err)
	})
	t.Run("large integers keep precision", func(t *testing.T) {
		type record struct {
			ID int64 `json:"id"`
		}
		var got interface{}
		capture := Decoder[record](func(v interface{}) (record, error) {
			got = v
			return JSONDecoder[record]()(v)
		})
		cl := &Client{HTTPDoer: &bodyDoer{status: 200, body: `{"id":9007199254740993}`}}

		resp, err := WithDecoder(cl.Get(), capture).Run(context.Background(), request.URL("http://example.com"))

		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), resp.Data.ID)
		assert.Equal(t, map[string]interface{}{"id": json.Number("9007199254740993")}, got)
	})
	t.Run("trailing data", func(t *testing.T) {
		cl := &Client{HTTPDoer: &bodyDoer{status: 200, body: `{"id":1,"name":"x"} {}`}}

		_, err := WithDecoder(cl.Get(), JSONDecoder[user]()).Run(context.Background(), request.URL("http://example.com"))

		require.IsType(t, &ResponseError{}, err)
		assert.ErrorIs(t, err, errTrailingData)
	})
	t.Run("nil decoder", func(t *testing.T) {
		assert.Panics(t, func() { WithDecoder[string, int](Get, nil) })
	})
}

func TestJSONDecoder(t *testing.T) {
	d := JSONDecoder[user]()
	t.Run("ok", func(t *testing.T) {
		u, err := d(map[string]interface{}{"id": 1, "name": "a"})
		assert.NoError(t, err)
		assert.Equal(t, user{ID: 1, Name: "a"}, u)
	})
	t.Run("unknown field", func(t *testing.T) {
		u, err := d(map[string]interface{}{"id": 1, "extra": true})
		assert.Error(t, err)
		assert.Equal(t, user{}, u)
	})
	t.Run("wrong type", func(t *testing.T) {
		_, err := d("not an object")
		assert.Error(t, err)
	})
	t.Run("unencodable", func(t *testing.T) {
		_, err := d(make(chan int))
		assert.Error(t, err)
	})
}

func TestToDecoder(t *testing.T) {
	type problem struct {
		path string
		msg  string
	}
	validate := func(v interface{}) (string, []problem) {
		m, ok := v.(map[string]interface{})
		if !ok {
			return "", []problem{{"", "expected object"}}
		}
		var problems []problem
		name, ok := m["name"].(string)
		if !ok {
			problems = append(problems, problem{"name", "expected string"})
		}
		if _, ok := m["id"].(float64); !ok {
			problems = append(problems, problem{"id", "expected number"})
		}
		return name, problems
	}
	onLeft := func(problems []problem) error {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = fmt.Sprintf("%s: %s", p.path, p.msg)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	d := ToDecoder(validate, onLeft)

	name, err := d(map[string]interface{}{"id": float64(1), "name": "n"})
	assert.NoError(t, err)
	assert.Equal(t, "n", name)

	name, err = d(map[string]interface{}{})
	assert.EqualError(t, err, "name: expected string; id: expected number")
	assert.Equal(t, "", name)

	_, err = d(42)
	assert.EqualError(t, err, ": expected object")
}

func TestCloneResponse(t *testing.T) {
	req, err := http.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, err)
	from := &http.Response{
		Status:     "418 I'm a teapot",
		StatusCode: 418,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"X-Foo": {"bar"}},
		Body:       http.NoBody,
		Request:    req,
	}

	testCases := []struct {
		name     string
		content  interface{}
		expected string
	}{
		{"string", "raw text", "raw text"},
		{"bytes", []byte("raw bytes"), "raw bytes"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"object", map[string]int{"a": 1}, `{"a":1}`},
		{"nil", nil, "null"},
		{"unencodable", make(chan int), ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			to := CloneResponse(from, testCase.content)
			require.NotNil(t, to)
			assert.NotSame(t, from, to)
			assert.Equal(t, "418 I'm a teapot", to.Status)
			assert.Equal(t, 418, to.StatusCode)
			assert.Equal(t, "HTTP/1.1", to.Proto)
			assert.Same(t, req, to.Request)
			assert.Equal(t, from.Header, to.Header)
			to.Header.Set("X-Foo", "changed")
			assert.Equal(t, "bar", from.Header.Get("X-Foo"))
			b, err := io.ReadAll(to.Body)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, string(b))
			assert.Equal(t, int64(len(testCase.expected)), to.ContentLength)
		})
	}
	t.Run("nil response", func(t *testing.T) {
		assert.Nil(t, CloneResponse(nil, "x"))
	})
}

type bodyDoer struct {
	status int
	body   string
	header http.Header
}

func (d *bodyDoer) Do(r *http.Request) (*http.Response, error) {
	d.header = r.Header
	return &http.Response{
		StatusCode: d.status,
		Header:     http.Header{"Content-Type": {"text/plain"}},
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Request:    r,
	}, nil
}
