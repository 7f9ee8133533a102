// If you are AI: This file defines RTMP messages and builds and parses protocol control messages.

package rtmp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortBody is returned when a control message body is too short.
	ErrShortBody = errors.New("control message body too short")
	// ErrChunkTooLarge is returned for set-chunk-size values outside 1..MaxChunkSize.
	ErrChunkTooLarge = errors.New("chunk size out of range")
)

// Header carries the fields of a message header.
type Header struct {
	ChunkStreamID uint32
	Timestamp     uint32
	Length        uint32
	TypeID        byte
	StreamID      uint32
}

// Message is one complete RTMP message.
type Message struct {
	Header
	Payload []byte
}

// NewMessage builds a message and fills in its length from the payload.
func NewMessage(csid uint32, typeID byte, streamID, timestamp uint32, payload []byte) *Message {
	return &Message{
		Header: Header{
			ChunkStreamID: csid,
			Timestamp:     timestamp,
			Length:        uint32(len(payload)),
			TypeID:        typeID,
			StreamID:      streamID,
		},
		Payload: payload,
	}
}

// controlMessage builds a protocol control message on chunk stream 2, message stream 0.
func controlMessage(typeID byte, body []byte) *Message {
	return NewMessage(ChannelProtocol, typeID, 0, 0, body)
}

// SetChunkSizeMessage builds a Set Chunk Size message.
func SetChunkSizeMessage(size uint32) *Message {
	return controlMessage(MessageTypeSetChunkSize, binary.BigEndian.AppendUint32(nil, size))
}

// AbortMessage builds an Abort message for a chunk stream.
func AbortMessage(csid uint32) *Message {
	return controlMessage(MessageTypeAbortMessage, binary.BigEndian.AppendUint32(nil, csid))
}

// AcknowledgementMessage builds an Acknowledgement carrying the received byte count.
func AcknowledgementMessage(sequence uint32) *Message {
	return controlMessage(MessageTypeAck, binary.BigEndian.AppendUint32(nil, sequence))
}

// WindowAckSizeMessage builds a Window Acknowledgement Size message.
func WindowAckSizeMessage(size uint32) *Message {
	return controlMessage(MessageTypeWinAckSize, binary.BigEndian.AppendUint32(nil, size))
}

// SetPeerBandwidthMessage builds a Set Peer Bandwidth message.
func SetPeerBandwidthMessage(size uint32, limitType byte) *Message {
	body := binary.BigEndian.AppendUint32(make([]byte, 0, 5), size)
	return controlMessage(MessageTypeSetPeerBandwidth, append(body, limitType))
}

// UserControlMessage builds a User Control message with a single 4-byte value.
func UserControlMessage(event uint16, value uint32) *Message {
	body := binary.BigEndian.AppendUint16(make([]byte, 0, 6), event)
	return controlMessage(MessageTypeUserCtrl, binary.BigEndian.AppendUint32(body, value))
}

// ParseSetChunkSize parses a Set Chunk Size message body.
func ParseSetChunkSize(body []byte) (uint32, error) {
	size, err := ParseUint32(body)
	if err != nil {
		return 0, err
	}
	size &= 0x7FFFFFFF
	if size == 0 || size > MaxChunkSize {
		return 0, fmt.Errorf("set chunk size %d: %w", size, ErrChunkTooLarge)
	}
	return size, nil
}

// ParseUint32 parses the 4-byte big-endian value at the start of a control body.
func ParseUint32(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, ErrShortBody
	}
	return binary.BigEndian.Uint32(body), nil
}

// ParseUserControl parses the event type and first value of a User Control body.
func ParseUserControl(body []byte) (event uint16, value uint32, err error) {
	if len(body) < 6 {
		return 0, 0, ErrShortBody
	}
	return binary.BigEndian.Uint16(body), binary.BigEndian.Uint32(body[2:6]), nil
}
