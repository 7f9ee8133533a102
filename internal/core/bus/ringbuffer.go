// If you are AI: This file implements a bounded ring buffer for subscriber message delivery.
// The ring buffer provides bounded buffering with configurable backpressure behavior.
// Both writePos and readPos increment freely (never masked). Only use the mask
// when indexing into the buffer array.

package bus

import (
	"sync"
)

// BackpressureStrategy defines how the ring buffer handles overflow.
type BackpressureStrategy uint8

const (
	// BackpressureDropOldest drops the oldest message when buffer is full.
	BackpressureDropOldest BackpressureStrategy = iota
	// BackpressureDropNewest drops the newest message when buffer is full.
	BackpressureDropNewest
)

// RingBuffer is a bounded circular buffer for MediaMessage delivery.
// Writes never block; a reader waits on Notify.
type RingBuffer struct {
	mu       sync.Mutex
	buffer   []*MediaMessage // Pre-allocated message slots
	size     uint32          // Buffer size (power of 2 for efficient modulo)
	mask     uint32          // size - 1, for efficient modulo (index = pos & mask)
	writePos uint32          // Write position (free-running)
	readPos  uint32          // Read position (free-running)
	strategy BackpressureStrategy
	dropped  uint64
	notify   chan struct{}
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
// Capacity is rounded up to a power of 2 for efficient modulo via bitmask.
func NewRingBuffer(capacity uint32, strategy BackpressureStrategy) *RingBuffer {
	// Round up to next power of 2
	actualSize := uint32(1)
	for actualSize < capacity {
		actualSize <<= 1
	}

	return &RingBuffer{
		buffer:   make([]*MediaMessage, actualSize),
		size:     actualSize,
		mask:     actualSize - 1,
		strategy: strategy,
		notify:   make(chan struct{}, 1),
	}
}

// Write attempts to write a message to the buffer.
// Returns true if written, false if buffer was full and message was dropped (DropNewest).
func (rb *RingBuffer) Write(msg *MediaMessage) bool {
	if msg == nil {
		return false
	}

	rb.mu.Lock()
	// Unsigned subtraction works correctly even after uint32 wrap.
	if rb.writePos-rb.readPos >= rb.size {
		rb.dropped++
		if rb.strategy == BackpressureDropNewest {
			rb.mu.Unlock()
			return false
		}
		rb.buffer[rb.readPos&rb.mask] = nil
		rb.readPos++
	}
	rb.buffer[rb.writePos&rb.mask] = msg
	rb.writePos++
	rb.mu.Unlock()

	select {
	case rb.notify <- struct{}{}:
	default:
	}
	return true
}

// Read attempts to read a message from the buffer.
// Returns the message and true if available, nil and false if empty.
func (rb *RingBuffer) Read() (*MediaMessage, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.readPos == rb.writePos {
		return nil, false
	}
	idx := rb.readPos & rb.mask
	msg := rb.buffer[idx]
	rb.buffer[idx] = nil
	rb.readPos++
	return msg, true
}

// Notify returns a channel that receives a value after writes.
func (rb *RingBuffer) Notify() <-chan struct{} {
	return rb.notify
}

// Dropped returns the number of messages dropped due to backpressure.
func (rb *RingBuffer) Dropped() uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.dropped
}

// Len returns the number of buffered messages.
func (rb *RingBuffer) Len() uint32 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.writePos - rb.readPos
}

// Available returns the number of free slots in the buffer.
func (rb *RingBuffer) Available() uint32 {
	return rb.size - rb.Len()
}
