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

// Package gremux multiplexes concurrent Gremlin Server requests over a
// single WebSocket connection. Callers enqueue requests carrying their own
// correlation id and read the resulting response stream from a per-request
// handle; one event loop owns the wire, routes responses back by id and
// enforces per-request timeouts.
package gremux

import (
	"context"
	"errors"
	"io"
	"sync"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/logger"
)

// Conn is one multiplexed connection to a Gremlin server.
type Conn struct {
	config    *Config
	transport Transport

	requests chan requestPacket

	die     chan struct{} // flag connection has died
	dieOnce sync.Once
	done    chan struct{} // closed once cleanup has finished

	// sendGate latches shut during cleanup so a late Send cannot strand a
	// packet on the producer queue after it has been drained.
	sendGate   sync.RWMutex
	sendClosed bool

	logger logger.Logger
}

// Connect opens a WebSocket to addr ("host:port"), starts the connection's
// reader and multiplexer, and returns once the transport is established or
// the dial has failed. A nil config means DefaultConfig.
func Connect(ctx context.Context, addr string, config *Config) (*Conn, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = logger.NOP()
	}
	if config.OnGeneralException == nil {
		config.OnGeneralException = defaultGeneralException
	}
	if err := VerifyConfig(config); err != nil {
		return nil, err
	}
	c := newConn(config)
	connectResult := make(chan error, 1)
	go c.supervise(ctx, addr, connectResult)
	if err := <-connectResult; err != nil {
		return nil, err
	}
	return c, nil
}

func newConn(config *Config) *Conn {
	return &Conn{
		config:   config,
		requests: make(chan requestPacket, config.RequestQueueSize),
		die:      make(chan struct{}),
		done:     make(chan struct{}),
		logger:   config.Logger,
	}
}

func (c *Conn) supervise(ctx context.Context, addr string, connectResult chan<- error) {
	transport, err := dialWebSocket(ctx, addr, c.config)
	if err != nil {
		close(c.done)
		connectResult <- E.Cause(err, "connect to ", addr)
		return
	}
	connectResult <- nil
	c.logger.Debug("connected to ", addr, c.config.EndpointPath)
	c.run(transport)
}

// run drives the reader and the multiplexer over an established transport.
// The cleanup at the bottom runs on every exit path: Close, reader
// completion, or a write failure. Afterwards the pool is empty, every timer
// is dead, and every pending or queued request has received the cause.
func (c *Conn) run(transport Transport) {
	defer close(c.done)
	c.transport = transport

	pool := newReqPool(c.config.ResponseTimeout)
	inbound := newQueue[[]byte]()
	readerDone := make(chan error, 1)
	go c.readLoop(inbound, readerDone)

	cause, readerExited := c.mux(pool, inbound, readerDone)

	c.dieOnce.Do(func() {
		close(c.die)
	})
	transport.Close()
	if !readerExited {
		<-readerDone
	}
	if cause == nil {
		cause = ErrServerClosed
	}

	c.sendGate.Lock()
	c.sendClosed = true
	c.sendGate.Unlock()

	if n := pool.pending(); n > 0 {
		c.logger.Debug("failing ", n, " pending requests: ", cause)
	}
	pool.drain(cause)
	for {
		select {
		case pk := <-c.requests:
			pk.out.push(result{err: cause})
			pk.out.close()
		default:
			c.logger.Debug("connection closed")
			return
		}
	}
}

// readLoop pulls binary messages off the transport into the inbound queue
// until the peer goes away. The queue is unbounded, so the loop never blocks
// behind the multiplexer; it touches neither the pool nor the timers.
func (c *Conn) readLoop(inbound *queue[[]byte], done chan<- error) {
	for {
		data, err := c.transport.ReadBinary()
		if err != nil {
			inbound.close()
			if errors.Is(err, io.EOF) {
				done <- nil
			} else {
				done <- err
			}
			return
		}
		inbound.push(data)
	}
}

// Send enqueues req on the connection and returns the handle its responses
// arrive on. It returns as soon as the request is queued; delivery is
// asynchronous. Send blocks while the request queue is full and fails only
// when the codec cannot encode req or the connection is already torn down.
func (c *Conn) Send(req *RequestMessage) (*ResponseHandle, error) {
	payload, err := c.config.Codec.EncodeBinary(req)
	if err != nil {
		return nil, E.Cause(err, "encode request")
	}
	out := newQueue[result]()
	c.sendGate.RLock()
	defer c.sendGate.RUnlock()
	if c.sendClosed || c.IsClosed() {
		return nil, ErrConnectionClosed
	}
	select {
	case c.requests <- requestPacket{id: req.RequestID, payload: payload, out: out}:
		return &ResponseHandle{out: out}, nil
	case <-c.die:
		return nil, ErrConnectionClosed
	}
}

// Close tears the connection down and waits for cleanup to finish. Requests
// still pending or queued fail with ErrServerClosed; queued-but-unsent
// requests are dropped, not flushed. Closing a connection that already died
// returns ErrConnectionClosed.
func (c *Conn) Close() error {
	var once bool
	c.dieOnce.Do(func() {
		close(c.die)
		once = true
	})
	<-c.done
	if !once {
		return ErrConnectionClosed
	}
	return nil
}

// CloseChan can be used by someone who wants to be notified immediately when
// the connection dies.
func (c *Conn) CloseChan() <-chan struct{} {
	return c.die
}

// IsClosed does a safe check to see if the connection has shut down.
func (c *Conn) IsClosed() bool {
	select {
	case <-c.die:
		return true
	default:
		return false
	}
}
