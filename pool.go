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
	"time"

	"github.com/google/uuid"
)

// poolEntry tracks one in-flight request. Closing timerCancel both aborts
// the timer's sleep and withdraws an expiration already being offered.
type poolEntry struct {
	id          uuid.UUID
	out         *queue[result]
	timerCancel chan struct{}
}

// reqPool indexes in-flight requests by correlation id. It is owned by the
// multiplexer goroutine alone, so none of its methods lock. Expirations from
// the per-entry timers merge onto the shared timeouts channel, which the
// multiplexer selects on alongside its other event sources.
type reqPool struct {
	entries  map[uuid.UUID]*poolEntry
	timeouts chan uuid.UUID
	timeout  time.Duration
}

func newReqPool(timeout time.Duration) *reqPool {
	return &reqPool{
		entries:  make(map[uuid.UUID]*poolEntry),
		timeouts: make(chan uuid.UUID),
		timeout:  timeout,
	}
}

// insert registers a pending request and arms its response timer. If the id
// is already pending the pool is left untouched and insert returns false.
func (p *reqPool) insert(id uuid.UUID, out *queue[result]) bool {
	if _, ok := p.entries[id]; ok {
		return false
	}
	entry := &poolEntry{id: id, out: out, timerCancel: make(chan struct{})}
	p.entries[id] = entry
	go p.watchTimer(id, entry.timerCancel)
	return true
}

func (p *reqPool) watchTimer(id uuid.UUID, cancel <-chan struct{}) {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		select {
		case p.timeouts <- id:
		case <-cancel:
		}
	case <-cancel:
	}
}

// lookup borrows the entry for id, or nil.
func (p *reqPool) lookup(id uuid.UUID) *poolEntry {
	return p.entries[id]
}

// remove cancels the entry's timer and deletes it, returning the removed
// entry. Removing an absent id is a no-op returning nil.
func (p *reqPool) remove(id uuid.UUID) *poolEntry {
	entry, ok := p.entries[id]
	if !ok {
		return nil
	}
	close(entry.timerCancel)
	delete(p.entries, id)
	return entry
}

// drain fails every pending request with err, cancels every timer and leaves
// the pool empty.
func (p *reqPool) drain(err error) {
	for id, entry := range p.entries {
		close(entry.timerCancel)
		delete(p.entries, id)
		entry.out.push(result{err: err})
		entry.out.close()
	}
}

func (p *reqPool) pending() int {
	return len(p.entries)
}
