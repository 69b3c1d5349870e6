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
	"github.com/google/uuid"
	E "github.com/sagernet/sing/common/exceptions"
)

// requestPacket is one enqueued request: correlation id, framed payload and
// the output stream its responses are routed to.
type requestPacket struct {
	id      uuid.UUID
	payload []byte
	out     *queue[result]
}

// mux is the connection's event loop. It is the sole owner of the pool and
// of the transport's write side, and merges four event sources per
// iteration: new requests, inbound frames, reader completion and response
// timer expirations. It returns the fatal cause of the exit (nil for a clean
// end) and whether the reader's completion has already been observed.
func (c *Conn) mux(pool *reqPool, inbound *queue[[]byte], readerDone <-chan error) (cause error, readerExited bool) {
	for {
		select {
		case <-c.die:
			return nil, false

		case pk := <-c.requests:
			if !pool.insert(pk.id, pk.out) {
				pk.out.push(result{err: &DuplicateRequestIDError{RequestID: pk.id}})
				pk.out.close()
				continue
			}
			if err := c.transport.WriteBinary(pk.payload); err != nil {
				return E.Cause(err, "write request"), false
			}

		case <-inbound.wait():
			for {
				data, ok := inbound.tryPop()
				if !ok {
					break
				}
				c.route(pool, data)
			}

		case id := <-pool.timeouts:
			if entry := pool.remove(id); entry != nil {
				entry.out.push(result{err: ErrResponseTimeout})
				entry.out.close()
			}

		case err := <-readerDone:
			return err, true
		}
	}
}

// route decodes one inbound frame and delivers it to the pending request it
// answers. Decode failures and unknown correlation ids are attributable to
// no caller and go to the general exception callback instead.
func (c *Conn) route(pool *reqPool, data []byte) {
	msg, err := c.config.Codec.Decode(data)
	if err != nil {
		c.generalException(&ResponseParseError{Cause: err})
		return
	}
	entry := pool.lookup(msg.RequestID)
	if entry == nil {
		c.generalException(&UnexpectedRequestIDError{RequestID: msg.RequestID})
		return
	}
	if msg.Terminating() {
		// remove first, so no timer event can trail the final message
		pool.remove(msg.RequestID)
		entry.out.push(result{msg: msg})
		entry.out.close()
		return
	}
	entry.out.push(result{msg: msg})
}

func (c *Conn) generalException(err error) {
	if c.config.OnGeneralException != nil {
		c.config.OnGeneralException(err)
		return
	}
	defaultGeneralException(err)
}
