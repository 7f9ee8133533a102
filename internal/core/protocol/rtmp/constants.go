// If you are AI: This file defines RTMP protocol constants, message types and reserved chunk streams.

package rtmp

// RTMP version constant
const RTMPVersion = 3

// Handshake block size (C1, C2, S1, S2)
const HandshakeBlockSize = 1536

// Default chunk size
const DefaultChunkSize = 128

// Maximum chunk size
const MaxChunkSize = 0x7FFFFFFF

// MaxMessageSize is the default bound on the payload buffer pre-allocated for one message.
const MaxMessageSize = 16 << 20

// Timestamps at or above this value move to the extended timestamp field.
const extendedTimestampMarker = 0xFFFFFF

// Message type IDs
const (
	MessageTypeSetChunkSize     = 1
	MessageTypeAbortMessage     = 2
	MessageTypeAck              = 3
	MessageTypeUserCtrl         = 4
	MessageTypeWinAckSize       = 5
	MessageTypeSetPeerBandwidth = 6
	MessageTypeAudio            = 8
	MessageTypeVideo            = 9
	MessageTypeDataAMF3         = 15
	MessageTypeSharedObjectAMF3 = 16
	MessageTypeCommandAMF3      = 17
	MessageTypeDataAMF0         = 18
	MessageTypeSharedObjectAMF0 = 19
	MessageTypeCommandAMF0      = 20
	MessageTypeAggregate        = 22
)

// Chunk basic header format types
const (
	ChunkFmt0 = 0 // 11-byte header
	ChunkFmt1 = 1 // 7-byte header
	ChunkFmt2 = 2 // 3-byte header
	ChunkFmt3 = 3 // 0-byte header
)

// Chunk stream ids used by the server for outgoing messages.
const (
	ChannelProtocol = 2
	ChannelInvoke   = 3
	ChannelAudio    = 4
	ChannelVideo    = 5
	ChannelData     = 6
)

// Chunk stream id ranges of the three basic header encodings.
const (
	MinChunkStreamID = 2
	MaxChunkStreamID = 65599
)

// Control message types
const (
	ControlStreamBegin      = 0
	ControlStreamEOF        = 1
	ControlStreamDry        = 2
	ControlSetBufferLength  = 3
	ControlStreamIsRecorded = 4
	ControlPingRequest      = 6
	ControlPingResponse     = 7
)

// Set peer bandwidth limit types
const (
	LimitHard    = 0
	LimitSoft    = 1
	LimitDynamic = 2
)
