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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBinaryFraming(t *testing.T) {
	codec := JSONCodec{}
	req := NewEvalRequest("g.V().count()", map[string]any{"x": 1})

	payload, err := codec.EncodeBinary(req)
	require.NoError(t, err)

	mime := codec.ContentType()
	require.Greater(t, len(payload), 1+len(mime))
	assert.Equal(t, byte(len(mime)), payload[0])
	assert.Equal(t, mime, string(payload[1:1+len(mime)]))

	var decoded RequestMessage
	require.NoError(t, json.Unmarshal(payload[1+len(mime):], &decoded))
	assert.Equal(t, req.RequestID, decoded.RequestID)
	assert.Equal(t, "eval", decoded.Op)
	assert.Equal(t, "g.V().count()", decoded.Args["gremlin"])
}

func TestEncodeBinaryDeterministic(t *testing.T) {
	codec := JSONCodec{}
	req := NewEvalRequest("g.V()", map[string]any{"b": 2, "a": 1, "c": 3})

	first, err := codec.EncodeBinary(req)
	require.NoError(t, err)
	second, err := codec.EncodeBinary(req)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical input must encode identically")
}

func TestDecodeResponse(t *testing.T) {
	codec := JSONCodec{}
	id := uuid.New()
	payload := []byte(`{
		"requestId": "` + id.String() + `",
		"status": {"code": 206, "message": "partial", "attributes": {}},
		"result": {"data": [1, 2, 3], "meta": {}}
	}`)

	msg, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, id, msg.RequestID)
	assert.Equal(t, StatusPartialContent, msg.Status.Code)
	assert.Equal(t, "partial", msg.Status.Message)
	assert.JSONEq(t, `[1,2,3]`, string(msg.Result.Data))
	assert.False(t, msg.Terminating())
}

func TestDecodeFailure(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("{not json"))
	require.Error(t, err)
}

func TestTerminating(t *testing.T) {
	terminal := []int{
		StatusSuccess, StatusNoContent, StatusUnauthorized, StatusAuthenticate,
		StatusMalformedRequest, StatusInvalidRequestArguments, StatusServerError,
		StatusScriptEvaluationError, StatusServerTimeout, StatusServerSerializationError,
	}
	for _, code := range terminal {
		msg := &ResponseMessage{Status: ResponseStatus{Code: code}}
		assert.True(t, msg.Terminating(), "status %d must terminate the stream", code)
	}
	msg := &ResponseMessage{Status: ResponseStatus{Code: StatusPartialContent}}
	assert.False(t, msg.Terminating())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := JSONCodec{}
	id := uuid.New()
	resp := &ResponseMessage{
		RequestID: id,
		Status:    ResponseStatus{Code: StatusSuccess, Message: "ok"},
		Result:    ResponseResult{Data: json.RawMessage(`{"value": 42}`)},
	}
	payload, err := json.Marshal(resp)
	require.NoError(t, err)

	decoded, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, id, decoded.RequestID)
	assert.True(t, decoded.Terminating())
	assert.JSONEq(t, `{"value": 42}`, string(decoded.Result.Data))
}
