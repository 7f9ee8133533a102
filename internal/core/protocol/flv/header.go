// If you are AI: This file implements FLV file header generation.
// FLV header is written once at the start of the stream.

package flv

import (
	"encoding/binary"
)

// Header represents an FLV file header.
type Header struct {
	HasAudio bool
	HasVideo bool
}

// Bytes returns the FLV header as a byte slice.
func (h *Header) Bytes() []byte {
	header := make([]byte, FLVHeaderSize)

	// Signature "FLV" (3 bytes)
	copy(header[0:3], FLVSignature)

	// Version (1 byte)
	header[3] = FLVVersion

	// Flags (1 byte): audio and video flags
	flags := byte(0)
	if h.HasAudio {
		flags |= 0x04
	}
	if h.HasVideo {
		flags |= 0x01
	}
	header[4] = flags

	// Data offset: the header size
	binary.BigEndian.PutUint32(header[5:9], FLVHeaderSize)

	return header
}

// StreamStart returns the header followed by the zero PreviousTagSize0,
// the bytes a live viewer receives before the first tag.
func (h *Header) StreamStart() []byte {
	return append(h.Bytes(), 0, 0, 0, FirstPreviousTagSize)
}

// NewHeader creates a new FLV header with specified audio/video flags.
func NewHeader(hasAudio, hasVideo bool) *Header {
	return &Header{
		HasAudio: hasAudio,
		HasVideo: hasVideo,
	}
}
