// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the transience category of a pipeline error, as
// reported by function Categorize().
//
// The category Not means the error is not transient, or in other words
// that running the same pipeline again is very unlikely to succeed.
// Every other category indicates some prospect of success on a rerun.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// Canceled indicates the request was aborted through its context
	// or cancellation signal for a reason other than a timeout.
	Canceled
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	ConnReset
	// Status indicates a response was received but its status code
	// (429 or any 5XX) suggests the server may accept a later attempt.
	//
	// Function Categorize() will return Status if the error or any of
	// its wrapped causes has a StatusCode() function reporting one of
	// those codes.
	Status
)

var categoryNames = []string{
	"not",
	"timeout",
	"canceled",
	"conn_refused",
	"conn_reset",
	"status",
}

// String returns the lower-case name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of the given error. A nil
// error, and an error that is not transient, both produce the return
// value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Categorize never checks
// if an error has a Temporary() function, as the semantics of
// Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var hasStatus hasStatusCode
	if errors.As(err, &hasStatus) {
		code := hasStatus.StatusCode()
		if code == 429 || (code >= 500 && code <= 599) {
			return Status
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}

type hasStatusCode interface {
	StatusCode() int
}
