// If you are AI: This file turns complete messages into chunk bytes and encodes basic headers.
// The msid of a chunked message sits at a fixed offset so relays can patch it per subscriber.

package rtmp

import (
	"encoding/binary"
)

// basicHeaderSize returns the encoded size of the basic header for csid.
func basicHeaderSize(csid uint32) int {
	switch {
	case csid >= 64+256:
		return 3
	case csid >= 64:
		return 2
	default:
		return 1
	}
}

// EncodeBasicHeader appends the 1-, 2- or 3-byte basic header for fmt and csid.
func EncodeBasicHeader(dst []byte, format uint8, csid uint32) []byte {
	switch basicHeaderSize(csid) {
	case 3:
		id := csid - 64
		return append(dst, format<<6|1, byte(id), byte(id>>8))
	case 2:
		return append(dst, format<<6, byte(csid-64))
	default:
		return append(dst, format<<6|byte(csid))
	}
}

// DecodeBasicHeader decodes a basic header at the start of b.
// ok is false when b does not yet hold the whole header.
func DecodeBasicHeader(b []byte) (format uint8, csid uint32, n int, ok bool) {
	if len(b) < 1 {
		return 0, 0, 0, false
	}
	format = b[0] >> 6
	switch b[0] & 0x3f {
	case 0:
		if len(b) < 2 {
			return format, 0, 2, false
		}
		return format, 64 + uint32(b[1]), 2, true
	case 1:
		if len(b) < 3 {
			return format, 0, 3, false
		}
		return format, 64 + uint32(b[1]) + uint32(b[2])<<8, 3, true
	default:
		return format, uint32(b[0] & 0x3f), 1, true
	}
}

// CreateChunks encodes a message as one format-0 chunk followed by format-3
// continuations of at most chunkSize payload bytes each.
func CreateChunks(h Header, payload []byte, chunkSize uint32) []byte {
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	length := len(payload)
	cs := int(chunkSize)
	extended := h.Timestamp >= extendedTimestampMarker
	ts := h.Timestamp
	extra := 0
	if extended {
		ts = extendedTimestampMarker
		extra = 4
	}

	continuations := 0
	if length > cs {
		continuations = (length+cs-1)/cs - 1
	}
	basic := basicHeaderSize(h.ChunkStreamID)
	out := make([]byte, 0, basic+11+extra+length+continuations*(basic+extra))

	out = EncodeBasicHeader(out, ChunkFmt0, h.ChunkStreamID)
	out = append(out,
		byte(ts>>16), byte(ts>>8), byte(ts),
		byte(length>>16), byte(length>>8), byte(length),
		h.TypeID)
	out = binary.LittleEndian.AppendUint32(out, h.StreamID)
	if extended {
		out = binary.BigEndian.AppendUint32(out, h.Timestamp)
	}

	for off := 0; ; {
		end := min(off+cs, length)
		out = append(out, payload[off:end]...)
		off = end
		if off >= length {
			break
		}
		out = EncodeBasicHeader(out, ChunkFmt3, h.ChunkStreamID)
		if extended {
			out = binary.BigEndian.AppendUint32(out, h.Timestamp)
		}
	}
	return out
}

// EncodeMessage chunks a Message, taking the length from its payload.
func EncodeMessage(m *Message, chunkSize uint32) []byte {
	return CreateChunks(m.Header, m.Payload, chunkSize)
}

// PatchStreamID rewrites the little-endian message stream id in the first
// chunk produced by CreateChunks.
func PatchStreamID(chunks []byte, streamID uint32) {
	_, _, n, ok := DecodeBasicHeader(chunks)
	if !ok || len(chunks) < n+11 {
		return
	}
	binary.LittleEndian.PutUint32(chunks[n+7:n+11], streamID)
}
