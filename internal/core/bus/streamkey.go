// If you are AI: This file defines StreamKey for uniquely identifying streams.
// StreamKey is used as a map key in the registry and renders as the stream path "/app/name".

package bus

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStreamPath is returned when a path does not have the form "/app/name".
var ErrInvalidStreamPath = errors.New("invalid stream path")

// StreamKey uniquely identifies a stream by application and stream name.
// It is comparable and can be used as a map key.
type StreamKey struct {
	App  string // Application name (e.g., "live")
	Name string // Stream name (e.g., "mystream")
}

// String returns the stream path "/app/name".
func (k StreamKey) String() string {
	return "/" + k.App + "/" + k.Name
}

// NewStreamKey creates a new StreamKey from app and name.
func NewStreamKey(app, name string) StreamKey {
	return StreamKey{
		App:  app,
		Name: name,
	}
}

// ParseStreamPath parses "/app/name". The name may itself contain slashes.
func ParseStreamPath(path string) (StreamKey, error) {
	app, name, ok := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if !ok || app == "" || name == "" {
		return StreamKey{}, fmt.Errorf("%q: %w", path, ErrInvalidStreamPath)
	}
	return NewStreamKey(app, name), nil
}
