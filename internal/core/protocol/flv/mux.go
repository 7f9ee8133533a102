// If you are AI: This file provides FLV muxing helpers for converting MediaMessage to FLV tags.
// Muxing preserves original payloads without transcoding.

package flv

import (
	"relaycast/internal/core/bus"
)

// tagTypes maps bus message types to FLV tag types.
var tagTypes = map[bus.MessageType]byte{
	bus.MessageTypeAudio:    TagTypeAudio,
	bus.MessageTypeVideo:    TagTypeVideo,
	bus.MessageTypeMetadata: TagTypeScript,
}

// MuxMessage converts a bus MediaMessage to an FLV tag based on message type.
// The payload is used directly without modification.
// Returns nil if message type is not supported.
func MuxMessage(msg *bus.MediaMessage) *Tag {
	if msg == nil {
		return nil
	}
	tagType, ok := tagTypes[msg.Type]
	if !ok {
		return nil
	}
	return NewTag(tagType, msg.Timestamp, msg.Payload)
}

// MessageTypeForTag maps an FLV tag type back to a bus message type.
func MessageTypeForTag(tagType byte) (bus.MessageType, bool) {
	for mt, tt := range tagTypes {
		if tt == tagType {
			return mt, true
		}
	}
	return 0, false
}
