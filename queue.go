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

// queue is an unbounded single-writer single-reader FIFO. push never blocks.
// The reader either parks on the cap-1 signal channel (pop) or races the
// signal in a select and drains with tryPop. With a single reader the cap-1
// signal cannot lose a wakeup.
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{signal: make(chan struct{}, 1)}
}

// kick posts a wakeup unless one is already pending.
func (q *queue[T]) kick() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// push appends v and wakes the reader. Returns false if the queue is closed.
func (q *queue[T]) push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.kick()
	return true
}

// close marks end of stream. Items already queued remain readable.
func (q *queue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.kick()
}

// wait returns the channel a select-based reader parks on. A receive means
// the queue may have items; drain with tryPop.
func (q *queue[T]) wait() <-chan struct{} {
	return q.signal
}

// tryPop removes the head without blocking. When items remain afterwards the
// signal is re-armed so a select-based reader wakes again.
func (q *queue[T]) tryPop() (v T, ok bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	v, ok = q.items[0], true
	q.items = q.items[1:]
	remaining := len(q.items) > 0
	q.mu.Unlock()
	if remaining {
		q.kick()
	}
	return
}

// pop blocks until an item is available, or returns ok=false once the queue
// is closed and drained.
func (q *queue[T]) pop() (T, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, true
		}
		if q.closed {
			q.mu.Unlock()
			var zero T
			return zero, false
		}
		q.mu.Unlock()
		<-q.signal
	}
}
