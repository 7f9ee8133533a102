// If you are AI: This file defines publish lifecycle events delivered to the transcoding collaborator.

package bus

import (
	"net/url"
	"sync"
)

// EventKind identifies a publish lifecycle event.
type EventKind int

const (
	// EventPublished fires after a publish succeeds.
	EventPublished EventKind = iota
	// EventUnpublished fires when that publisher unpublishes or disconnects.
	EventUnpublished
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventPublished:
		return "published"
	case EventUnpublished:
		return "unpublished"
	default:
		return "unknown"
	}
}

// Event is one publish lifecycle notification.
type Event struct {
	Kind      EventKind
	SessionID string
	Key       StreamKey
	Args      url.Values
}

// Events is a buffered event queue with a single consumer.
// A nil *Events discards everything.
type Events struct {
	ch       chan Event
	done     chan struct{}
	stopOnce sync.Once
}

// NewEvents creates a queue holding up to buffer pending events.
func NewEvents(buffer int) *Events {
	return &Events{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Emit queues ev. It blocks while the queue is full until the consumer stops.
func (e *Events) Emit(ev Event) {
	if e == nil {
		return
	}
	select {
	case <-e.done:
		return
	default:
	}
	select {
	case e.ch <- ev:
	case <-e.done:
	}
}

// C returns the channel the consumer reads.
func (e *Events) C() <-chan Event {
	return e.ch
}

// Done is closed once the consumer has stopped.
func (e *Events) Done() <-chan struct{} {
	return e.done
}

// Stop marks the consumer gone; later emits are dropped.
func (e *Events) Stop() {
	e.stopOnce.Do(func() { close(e.done) })
}
