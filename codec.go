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

	E "github.com/sagernet/sing/common/exceptions"
)

// Codec converts between request/response messages and wire payloads. The
// connection treats responses as opaque beyond the correlation id and the
// Terminating predicate.
type Codec interface {
	// ContentType names the serialization format embedded in request framing.
	ContentType() string

	// EncodeBinary produces the complete binary WebSocket payload for a
	// request: one byte holding the content-type length, the content-type
	// bytes, then the encoded body. Identical input encodes identically.
	EncodeBinary(msg *RequestMessage) ([]byte, error)

	// Decode parses a raw inbound payload. A decode failure is not fatal to
	// the connection.
	Decode(payload []byte) (*ResponseMessage, error)
}

const mimeGraphSONv3 = "application/vnd.gremlin-v3.0+json"

// JSONCodec is the default codec: GraphSON v3 content type, plain JSON
// envelope, result data passed through uninterpreted.
type JSONCodec struct{}

func (JSONCodec) ContentType() string {
	return mimeGraphSONv3
}

func (JSONCodec) EncodeBinary(msg *RequestMessage) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, E.Cause(err, "encode request body")
	}
	payload := make([]byte, 0, 1+len(mimeGraphSONv3)+len(body))
	payload = append(payload, byte(len(mimeGraphSONv3)))
	payload = append(payload, mimeGraphSONv3...)
	payload = append(payload, body...)
	return payload, nil
}

func (JSONCodec) Decode(payload []byte) (*ResponseMessage, error) {
	var msg ResponseMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
