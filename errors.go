// MIT License
//
// Copyright (c) 2024-2025 gremux authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package gremux

import (
	"fmt"

	"github.com/google/uuid"
	E "github.com/sagernet/sing/common/exceptions"
)

var (
	// ErrResponseTimeout ends a request's stream when the final response did
	// not arrive within the configured deadline.
	ErrResponseTimeout = E.New("timed out waiting for a response")

	// ErrServerClosed ends the streams of every request still pending when
	// the server closed the connection, and of every request still queued
	// when the connection was torn down.
	ErrServerClosed = E.New("server closed the connection")

	// ErrConnectionClosed is returned by operations on a dead connection.
	ErrConnectionClosed = E.New("connection closed")
)

// DuplicateRequestIDError ends the stream of a request whose correlation id
// was already pending on the connection. The original request is unaffected.
type DuplicateRequestIDError struct {
	RequestID uuid.UUID
}

func (e *DuplicateRequestIDError) Error() string {
	return fmt.Sprintf("request id %s is already pending", e.RequestID)
}

// ResponseParseError is passed to OnGeneralException when an inbound frame
// does not decode. It is not attributed to any request.
type ResponseParseError struct {
	Cause error
}

func (e *ResponseParseError) Error() string {
	return "failed to parse response: " + e.Cause.Error()
}

func (e *ResponseParseError) Unwrap() error {
	return e.Cause
}

// UnexpectedRequestIDError is passed to OnGeneralException when a response
// carries a correlation id with no pending request. The response is dropped.
type UnexpectedRequestIDError struct {
	RequestID uuid.UUID
}

func (e *UnexpectedRequestIDError) Error() string {
	return fmt.Sprintf("response for unknown request id %s", e.RequestID)
}
