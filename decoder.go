// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// A Decoder converts a generic value, as produced by encoding/json when
// unmarshalling into an interface{}, into a value of type B. It returns
// an error describing why the value could not be converted.
//
// Numbers parsed by WithDecoder arrive as json.Number, not float64, so
// that large integers keep their exact value.
//
// Decoders are independent of any particular validation library. Use
// ToDecoder to adapt a function which reports a list of problems, or
// JSONDecoder to decode into a Go type using encoding/json.
type Decoder[B any] func(v interface{}) (B, error)

// ToDecoder adapts a decoding function which reports a list of problems
// into a Decoder. Decoding fails if d reports at least one problem, in
// which case onLeft is called to turn the problems into a single error.
func ToDecoder[L, B any](d func(v interface{}) (B, []L), onLeft func([]L) error) Decoder[B] {
	return func(v interface{}) (B, error) {
		b, problems := d(v)
		if len(problems) > 0 {
			var zero B
			return zero, onLeft(problems)
		}
		return b, nil
	}
}

// JSONDecoder returns a Decoder which converts a generic value into B by
// way of encoding/json. Object fields that do not match any field of B
// are an error.
func JSONDecoder[B any]() Decoder[B] {
	return func(v interface{}) (B, error) {
		var b B
		j, err := json.Marshal(v)
		if err != nil {
			return b, err
		}
		dec := json.NewDecoder(bytes.NewReader(j))
		dec.DisallowUnknownFields()
		if err = dec.Decode(&b); err != nil {
			var zero B
			return zero, err
		}
		return b, nil
	}
}

// WithDecoder returns a pipeline which decodes the payload of r with d.
//
// The returned pipeline adds the header "Accept: application/json" to
// every request (a value set closer to the call site wins). Once r
// succeeds, its payload is prepared for d as follows. A string or []byte
// payload is parsed as JSON, with an empty payload standing for an
// empty JSON object. Any other payload is passed to d as it is.
//
// If parsing or decoding fails, the pipeline fails with a ResponseError
// whose Response is a clone of the original response carrying the
// original payload as its body, so the caller can still read it.
func WithDecoder[A, B any](r Req[A], d Decoder[B]) Req[B] {
	if d == nil {
		panic("reqx: nil decoder")
	}
	withAccept := r.WithHeaders(map[string]string{"Accept": "application/json"})
	return Then(withAccept, func(resp *Resp[A]) (*Resp[B], error) {
		fail := func(err error) (*Resp[B], error) {
			return nil, &ResponseError{
				Err:      err,
				Response: CloneResponse(resp.Response, resp.Data),
				Target:   resp.Target,
			}
		}
		v, err := parsePayload(resp.Data)
		if err != nil {
			return fail(err)
		}
		b, err := d(v)
		if err != nil {
			return fail(err)
		}
		return &Resp[B]{Response: resp.Response, Data: b, Target: resp.Target}, nil
	})
}

var errTrailingData = errors.New("reqx: invalid data after top-level JSON value")

func parsePayload(data interface{}) (interface{}, error) {
	var text []byte
	switch x := data.(type) {
	case string:
		text = []byte(x)
	case []byte:
		text = x
	default:
		return data, nil
	}
	if len(text) == 0 {
		return map[string]interface{}{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

// CloneResponse returns a copy of from whose body is content.
//
// The copy has the same status, protocol, request and trailer as from,
// and a deep copy of its header. A string or []byte content becomes the
// body as it is, a bool or number is formatted as text, and any other
// value is encoded to JSON. If the encoding fails, the body is empty.
//
// CloneResponse returns nil if from is nil.
func CloneResponse(from *http.Response, content interface{}) *http.Response {
	if from == nil {
		return nil
	}
	b := contentBytes(content)
	to := &http.Response{
		Status:        from.Status,
		StatusCode:    from.StatusCode,
		Proto:         from.Proto,
		ProtoMajor:    from.ProtoMajor,
		ProtoMinor:    from.ProtoMinor,
		Header:        from.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentLength: int64(len(b)),
		Trailer:       from.Trailer.Clone(),
		Request:       from.Request,
		TLS:           from.TLS,
	}
	return to
}

func contentBytes(content interface{}) []byte {
	switch x := content.(type) {
	case string:
		return []byte(x)
	case []byte:
		return x
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return []byte(fmt.Sprint(x))
	}
	b, err := json.Marshal(content)
	if err != nil {
		return []byte{}
	}
	return b
}
