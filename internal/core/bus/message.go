// If you are AI: This file defines MediaMessage and related types for the stream bus.
// MediaMessage is one audio, video or metadata unit handed to stream taps.

package bus

// MessageType represents the type of media message.
type MessageType uint8

const (
	// MessageTypeAudio represents an audio frame.
	MessageTypeAudio MessageType = iota
	// MessageTypeVideo represents a video frame.
	MessageTypeVideo
	// MessageTypeMetadata represents metadata or script data.
	MessageTypeMetadata
)

// MediaMessage represents a unit of media flowing through the bus.
// Messages are shared read-only between all subscribers of a stream.
type MediaMessage struct {
	Type      MessageType // Type of media (audio, video, metadata)
	Timestamp uint32      // Media timestamp in milliseconds
	Payload   []byte      // FLV tag body
	// IsInit marks metadata and codec sequence headers that late joiners need first.
	IsInit bool
}

// NewMediaMessage creates a message. The payload is referenced, not copied.
func NewMediaMessage(t MessageType, timestamp uint32, payload []byte, isInit bool) *MediaMessage {
	return &MediaMessage{
		Type:      t,
		Timestamp: timestamp,
		Payload:   payload,
		IsInit:    isInit,
	}
}

// Clone creates a deep copy of the message.
func (m *MediaMessage) Clone() *MediaMessage {
	clone := *m
	clone.Payload = append([]byte(nil), m.Payload...)
	return &clone
}

// String returns a human-readable representation of the message type.
func (t MessageType) String() string {
	switch t {
	case MessageTypeAudio:
		return "audio"
	case MessageTypeVideo:
		return "video"
	case MessageTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}
