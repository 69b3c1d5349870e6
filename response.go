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

import "sync"

// result is one element of a request's output stream: a response message or
// the error that ends the stream.
type result struct {
	msg *ResponseMessage
	err error
}

// ResponseHandle is the caller's view of one request's response stream.
// Dropping a handle does not cancel the request; remaining responses buffer
// in the stream until the terminating message retires it server-side.
type ResponseHandle struct {
	mu         sync.Mutex
	out        *queue[result]
	terminated bool
}

// Next returns the next response message for the request, blocking until the
// server produces one. Once the stream has ended — a terminating response
// was returned, an error was raised, or the connection died — Next returns
// (nil, nil) without touching the stream, idempotently. Next serializes with
// itself on one handle; handles of different requests are independent.
func (h *ResponseHandle) Next() (*ResponseMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.terminated {
		return nil, nil
	}
	r, ok := h.out.pop()
	if !ok {
		h.terminated = true
		return nil, nil
	}
	if r.err != nil {
		h.terminated = true
		return nil, r.err
	}
	if r.msg.Terminating() {
		h.terminated = true
	}
	return r.msg, nil
}

// ReadAll eagerly collects the remaining messages of the stream, in arrival
// order. An error ends the collection and is returned alongside whatever
// arrived before it.
func (h *ResponseHandle) ReadAll() ([]*ResponseMessage, error) {
	var msgs []*ResponseMessage
	for {
		msg, err := h.Next()
		if err != nil {
			return msgs, err
		}
		if msg == nil {
			return msgs, nil
		}
		msgs = append(msgs, msg)
	}
}
