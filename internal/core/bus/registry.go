// If you are AI: This file implements the process-wide session registry.
// It maps session ids to sessions, stream paths to their publisher and idling players to the path they wait for.

package bus

import (
	"errors"
	"sort"
	"sync"
)

// ErrStreamTaken is returned when a path already has a publisher.
var ErrStreamTaken = errors.New("stream already publishing")

// Published describes one live path.
type Published[P any] struct {
	Key    StreamKey
	ID     string
	Peer   P
	Stream *Stream
}

// Registry holds every session and the publish/idle relations between them.
// Lock expectations: one RWMutex guards all maps; callbacks never run under it.
type Registry[P any] struct {
	mu         sync.RWMutex
	sessions   map[string]P
	publishers map[StreamKey]string
	idlers     map[string]StreamKey
	streams    map[StreamKey]*Stream
}

// NewRegistry creates an empty registry.
func NewRegistry[P any]() *Registry[P] {
	return &Registry[P]{
		sessions:   make(map[string]P),
		publishers: make(map[StreamKey]string),
		idlers:     make(map[string]StreamKey),
		streams:    make(map[StreamKey]*Stream),
	}
}

// Register picks an unused session id, builds the peer with it and stores it.
func (r *Registry[P]) Register(create func(id string) P) (string, P) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := NewSessionID()
	for {
		if _, taken := r.sessions[id]; !taken {
			break
		}
		id = NewSessionID()
	}
	p := create(id)
	r.sessions[id] = p
	return id, p
}

// Unregister removes a session from every structure, releasing any path it publishes.
func (r *Registry[P]) Unregister(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	delete(r.idlers, id)
	var closing []*Stream
	for key, owner := range r.publishers {
		if owner == id {
			delete(r.publishers, key)
			closing = append(closing, r.streams[key])
			delete(r.streams, key)
		}
	}
	r.mu.Unlock()

	for _, s := range closing {
		if s != nil {
			s.Close()
		}
	}
}

// Session looks up a session by id.
func (r *Registry[P]) Session(id string) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.sessions[id]
	return p, ok
}

// Sessions returns every registered session in no particular order.
func (r *Registry[P]) Sessions() []P {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]P, 0, len(r.sessions))
	for _, p := range r.sessions {
		out = append(out, p)
	}
	return out
}

// Count returns the number of registered sessions.
func (r *Registry[P]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ClaimPublisher makes id the publisher of key and opens the path's stream tap.
func (r *Registry[P]) ClaimPublisher(key StreamKey, id string) (*Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.publishers[key]; taken {
		return nil, ErrStreamTaken
	}
	r.publishers[key] = id
	s := NewStream(key)
	r.streams[key] = s
	return s, nil
}

// ReleasePublisher removes the publisher of key only if it is id, and closes the tap.
func (r *Registry[P]) ReleasePublisher(key StreamKey, id string) bool {
	r.mu.Lock()
	if owner, ok := r.publishers[key]; !ok || owner != id {
		r.mu.Unlock()
		return false
	}
	delete(r.publishers, key)
	s := r.streams[key]
	delete(r.streams, key)
	r.mu.Unlock()

	if s != nil {
		s.Close()
	}
	return true
}

// Publisher returns the session publishing key.
func (r *Registry[P]) Publisher(key StreamKey) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.publisherLocked(key)
}

// publisherLocked resolves the publisher with the lock held.
func (r *Registry[P]) publisherLocked(key StreamKey) (P, bool) {
	var zero P
	id, ok := r.publishers[key]
	if !ok {
		return zero, false
	}
	p, ok := r.sessions[id]
	return p, ok
}

// Stream returns the tap of a live path, or nil.
func (r *Registry[P]) Stream(key StreamKey) *Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streams[key]
}

// Publishers lists every live path ordered by path.
func (r *Registry[P]) Publishers() []Published[P] {
	r.mu.RLock()
	out := make([]Published[P], 0, len(r.publishers))
	for key, id := range r.publishers {
		out = append(out, Published[P]{Key: key, ID: id, Peer: r.sessions[id], Stream: r.streams[key]})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// PublisherOrIdle returns the publisher of key, or marks id idling for key when there is none.
// Both happen under one lock so a concurrent publish cannot miss the idler.
func (r *Registry[P]) PublisherOrIdle(key StreamKey, id string) (P, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.publisherLocked(key); ok {
		return p, true
	}
	r.idlers[id] = key
	var zero P
	return zero, false
}

// RemoveIdler stops id from waiting. It reports whether id was idling.
func (r *Registry[P]) RemoveIdler(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.idlers[id]
	delete(r.idlers, id)
	return ok
}

// TakeIdlers removes and returns every session waiting for key.
func (r *Registry[P]) TakeIdlers(key StreamKey) []P {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []P
	for id, k := range r.idlers {
		if k != key {
			continue
		}
		delete(r.idlers, id)
		if p, ok := r.sessions[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// IdlerCount returns the number of idling sessions.
func (r *Registry[P]) IdlerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.idlers)
}

// PublisherCount returns the number of live paths.
func (r *Registry[P]) PublisherCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.publishers)
}
