// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package event

import (
	"context"
	"sync"
)

// Publisher accepts events without blocking.
type Publisher interface {
	Publish(e Event)
}

var (
	_ Publisher = (*Inbox)(nil)
	_ Publisher = Discard
)

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// Inbox is an unbounded single-consumer queue of events.
// Publish never blocks and never drops an event while the inbox is open.
// Real-time consumers call Poll once per loop iteration; others wait on C.
type Inbox struct {
	mx     sync.Mutex
	queue  []Event
	closed bool
	ready  chan struct{}
}

func NewInbox() *Inbox {
	return &Inbox{
		ready: make(chan struct{}, 1),
	}
}

func (b *Inbox) Publish(e Event) {
	b.mx.Lock()
	if b.closed {
		b.mx.Unlock()
		return
	}
	b.queue = append(b.queue, e)
	b.mx.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Poll returns the oldest pending event, if any. It never waits.
func (b *Inbox) Poll() (Event, bool) {
	b.mx.Lock()
	defer b.mx.Unlock()

	if len(b.queue) == 0 {
		return nil, false
	}

	e := b.queue[0]
	b.queue[0] = nil
	b.queue = b.queue[1:]

	return e, true
}

// Drain returns all pending events in publish order.
func (b *Inbox) Drain() []Event {
	b.mx.Lock()
	defer b.mx.Unlock()

	events := b.queue
	b.queue = nil

	return events
}

// Len returns the number of pending events.
func (b *Inbox) Len() int {
	b.mx.Lock()
	defer b.mx.Unlock()

	return len(b.queue)
}

// C is signalled after an event has been published. A signal can cover several events,
// so the consumer should Drain after receiving from it.
func (b *Inbox) C() <-chan struct{} {
	return b.ready
}

// Wait blocks until at least one event is pending or the context is done.
func (b *Inbox) Wait(ctx context.Context) ([]Event, error) {
	for {
		if events := b.Drain(); len(events) > 0 {
			return events, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-b.ready:
		}
	}
}

// Close makes the inbox drop all further events. Pending events can still be drained.
func (b *Inbox) Close() {
	b.mx.Lock()
	b.closed = true
	b.mx.Unlock()
}
