// If you are AI: This file implements the Stream tap that fans a live path out to buffered subscribers.
// The publisher's RTMP session feeds it; HTTP viewers subscribe to it.

package bus

import (
	"errors"
	"sync"
)

// ErrStreamClosed is returned when subscribing to a stream that has ended.
var ErrStreamClosed = errors.New("stream closed")

// Stream represents a live media stream instance.
// It caches init messages so late subscribers can decode from the next frame.
type Stream struct {
	key         StreamKey
	mu          sync.RWMutex
	subscribers map[uint64]*Subscriber
	nextSubID   uint64
	metadata    *MediaMessage
	audioInit   *MediaMessage
	videoInit   *MediaMessage
	closed      bool
}

// NewStream creates a new stream with the given key.
func NewStream(key StreamKey) *Stream {
	return &Stream{
		key:         key,
		subscribers: make(map[uint64]*Subscriber),
		nextSubID:   1,
	}
}

// Key returns the stream's key.
func (s *Stream) Key() StreamKey {
	return s.key
}

// Subscribe attaches a new subscriber. Cached init messages are queued first.
func (s *Stream) Subscribe(capacity uint32, strategy BackpressureStrategy) (*Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}
	id := s.nextSubID
	s.nextSubID++

	sub := NewSubscriber(id, capacity, strategy)
	for _, init := range []*MediaMessage{s.metadata, s.audioInit, s.videoInit} {
		if init != nil {
			sub.Buffer().Write(init)
		}
	}
	s.subscribers[id] = sub
	return sub, nil
}

// Unsubscribe detaches a subscriber from the stream.
func (s *Stream) Unsubscribe(id uint64) {
	s.mu.Lock()
	sub, ok := s.subscribers[id]
	delete(s.subscribers, id)
	s.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Publish delivers a message to all subscribers without blocking.
func (s *Stream) Publish(msg *MediaMessage) {
	if msg == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if msg.IsInit {
		switch msg.Type {
		case MessageTypeMetadata:
			s.metadata = msg
		case MessageTypeAudio:
			s.audioInit = msg
		case MessageTypeVideo:
			s.videoInit = msg
		}
	}
	subs := make([]*Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Buffer().Write(msg)
	}
}

// Close ends the stream and releases every subscriber.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subscribers
	s.subscribers = make(map[uint64]*Subscriber)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// Closed reports whether the stream has ended.
func (s *Stream) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// SubscriberCount returns the number of active subscribers.
func (s *Stream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
