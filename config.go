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
	"os"
	"time"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/logger"
)

// Config tunes a connection. Start from DefaultConfig and override fields as
// needed; Connect rejects configs that fail VerifyConfig.
type Config struct {
	// Codec frames outgoing requests and parses incoming responses.
	Codec Codec

	// EndpointPath is the URL path of the Gremlin WebSocket endpoint.
	EndpointPath string

	// OnGeneralException receives anomalies that cannot be attributed to a
	// single request: response parse failures and responses carrying an
	// unknown correlation id. The connection keeps running after the call.
	OnGeneralException func(error)

	// ResponseTimeout bounds the wait for the final response of a request's
	// stream, measured from the moment the request is taken off the queue.
	ResponseTimeout time.Duration

	// RequestQueueSize is the capacity of the caller-to-multiplexer queue.
	// Send blocks while the queue is full.
	RequestQueueSize int

	// HandshakeTimeout bounds the WebSocket opening handshake.
	HandshakeTimeout time.Duration

	// Logger receives connection lifecycle events at debug level.
	Logger logger.Logger
}

// DefaultConfig is used for a nil config passed to Connect.
func DefaultConfig() *Config {
	return &Config{
		Codec:              JSONCodec{},
		EndpointPath:       "/gremlin",
		OnGeneralException: defaultGeneralException,
		ResponseTimeout:    60 * time.Second,
		RequestQueueSize:   8,
		HandshakeTimeout:   10 * time.Second,
		Logger:             logger.NOP(),
	}
}

// VerifyConfig checks that a config is usable.
func VerifyConfig(config *Config) error {
	if config.Codec == nil {
		return E.New("missing codec")
	}
	if config.EndpointPath == "" || config.EndpointPath[0] != '/' {
		return E.New("endpoint path must begin with /")
	}
	if config.ResponseTimeout <= 0 {
		return E.New("response timeout must be positive")
	}
	if config.RequestQueueSize <= 0 {
		return E.New("request queue size must be positive")
	}
	if config.HandshakeTimeout <= 0 {
		return E.New("handshake timeout must be positive")
	}
	return nil
}

func defaultGeneralException(err error) {
	fmt.Fprintln(os.Stderr, "gremux:", err)
}
