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
	"encoding/json"

	"github.com/google/uuid"
)

// Gremlin Server response status codes.
const (
	StatusSuccess                  = 200
	StatusNoContent                = 204
	StatusPartialContent           = 206
	StatusUnauthorized             = 401
	StatusAuthenticate             = 407
	StatusMalformedRequest         = 498
	StatusInvalidRequestArguments  = 499
	StatusServerError              = 500
	StatusScriptEvaluationError    = 597
	StatusServerTimeout            = 598
	StatusServerSerializationError = 599
)

// RequestMessage is one request to the server. RequestID correlates every
// response of the resulting stream back to this request and must be unique
// among the requests currently pending on a connection.
type RequestMessage struct {
	RequestID uuid.UUID      `json:"requestId"`
	Op        string         `json:"op"`
	Processor string         `json:"processor"`
	Args      map[string]any `json:"args"`
}

// NewEvalRequest builds a standard script evaluation request with a fresh
// correlation id.
func NewEvalRequest(gremlin string, bindings map[string]any) *RequestMessage {
	args := map[string]any{
		"gremlin":  gremlin,
		"language": "gremlin-groovy",
	}
	if len(bindings) > 0 {
		args["bindings"] = bindings
	}
	return &RequestMessage{
		RequestID: uuid.New(),
		Op:        "eval",
		Args:      args,
	}
}

// ResponseStatus carries the server's verdict on one response message.
type ResponseStatus struct {
	Code       int            `json:"code"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes"`
}

// ResponseResult holds the payload of one response message. Data is kept raw;
// interpreting the serialization format is the codec user's concern.
type ResponseResult struct {
	Data json.RawMessage `json:"data"`
	Meta map[string]any  `json:"meta"`
}

// ResponseMessage is one message of a response stream.
type ResponseMessage struct {
	RequestID uuid.UUID      `json:"requestId"`
	Status    ResponseStatus `json:"status"`
	Result    ResponseResult `json:"result"`
}

// Terminating reports whether this message ends its response stream. Partial
// content (206) announces more messages to come; every other status is final.
func (m *ResponseMessage) Terminating() bool {
	return m.Status.Code != StatusPartialContent
}
