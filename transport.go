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
	"context"
	"errors"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the byte-level connection the core multiplexes over: binary
// messages in, binary messages out. ReadBinary reports a clean shutdown by
// the peer as io.EOF; every other failure is returned as-is.
type Transport interface {
	WriteBinary(payload []byte) error
	ReadBinary() ([]byte, error)
	Close() error
}

// wsTransport adapts a gorilla/websocket client connection.
type wsTransport struct {
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, addr string, config *Config) (*wsTransport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, "ws://"+addr+config.EndpointPath, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) WriteBinary(payload []byte) error {
	return t.conn.WriteMessage(websocket.BinaryMessage, payload)
}

// ReadBinary returns the next binary message, skipping other frame types.
// A normal-closure frame reads as io.EOF. So does a bare end-of-stream:
// gorilla reports a TCP shutdown without a close frame as an
// abnormal-closure pseudo frame or an unexpected EOF, depending on where in
// the stream it lands.
func (t *wsTransport) ReadBinary() ([]byte, error) {
	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) ||
				errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

// Close announces a normal closure to the peer on a best-effort basis, then
// tears the connection down.
func (t *wsTransport) Close() error {
	deadline := time.Now().Add(time.Second)
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return t.conn.Close()
}
