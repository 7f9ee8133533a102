// If you are AI: This file implements RTMP chunk parsing and reassembly as a push-style state machine.
// Bytes may arrive in any split; in-flight messages are tracked per chunk stream id.

package rtmp

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMessageTooLarge is returned when a message header declares a length above the parser limit.
var ErrMessageTooLarge = errors.New("message too large")

// MessageHandler receives each reassembled message. A non-nil error stops Feed.
// The handler owns the payload slice.
type MessageHandler func(*Message) error

// parseState is the position of the parser inside a chunk.
type parseState int

const (
	stateInit parseState = iota
	stateBasicHeader
	stateMessageHeader
	stateExtendedTimestamp
	statePayload
)

// messageHeaderSize maps a chunk fmt to its message header size.
var messageHeaderSize = [4]int{11, 7, 3, 0}

// chunkStream is the reassembly unit of one chunk stream id.
type chunkStream struct {
	timestamp uint32 // absolute clock of the current message
	delta     uint32 // last timestamp delta, reused by fmt 3
	tsField   uint32 // timestamp or delta from the latest header
	extended  bool
	length    uint32
	typeID    byte
	streamID  uint32
	payload   []byte
	received  uint32
}

// ChunkParser reassembles messages from an incoming chunk stream.
type ChunkParser struct {
	state       parseState
	hdr         [11]byte
	hdrLen      int
	need        int
	format      uint8
	csid        uint32
	current     *chunkStream
	chunkRemain uint32
	chunkSize   uint32
	maxMessage  uint32
	streams     map[uint32]*chunkStream
	handler     MessageHandler
}

// NewChunkParser creates a parser that delivers messages to handler.
func NewChunkParser(handler MessageHandler) *ChunkParser {
	return &ChunkParser{
		chunkSize:  DefaultChunkSize,
		maxMessage: MaxMessageSize,
		streams:    make(map[uint32]*chunkStream),
		handler:    handler,
	}
}

// SetChunkSize sets the incoming chunk size. It applies to the next chunk read.
func (p *ChunkParser) SetChunkSize(size uint32) {
	p.chunkSize = size
}

// ChunkSize returns the incoming chunk size.
func (p *ChunkParser) ChunkSize() uint32 {
	return p.chunkSize
}

// SetMaxMessageSize bounds the payload length a message header may declare.
func (p *ChunkParser) SetMaxMessageSize(size uint32) {
	p.maxMessage = size
}

// Abort discards the partially received message on csid.
func (p *ChunkParser) Abort(csid uint32) {
	if cs, ok := p.streams[csid]; ok {
		cs.payload = nil
		cs.received = 0
	}
}

// Feed consumes bytes and invokes the handler for every completed message.
func (p *ChunkParser) Feed(b []byte) error {
	for len(b) > 0 {
		switch p.state {
		case stateInit:
			c := b[0]
			b = b[1:]
			p.format = c >> 6
			switch c & 0x3f {
			case 0:
				p.begin(stateBasicHeader, 1)
			case 1:
				p.begin(stateBasicHeader, 2)
			default:
				p.csid = uint32(c & 0x3f)
				if err := p.openChunk(); err != nil {
					return err
				}
			}

		case stateBasicHeader:
			if !p.fill(&b) {
				return nil
			}
			p.csid = 64 + uint32(p.hdr[0])
			if p.need == 2 {
				p.csid += uint32(p.hdr[1]) << 8
			}
			if err := p.openChunk(); err != nil {
				return err
			}

		case stateMessageHeader:
			if !p.fill(&b) {
				return nil
			}
			p.readMessageHeader()
			if err := p.afterMessageHeader(); err != nil {
				return err
			}

		case stateExtendedTimestamp:
			if !p.fill(&b) {
				return nil
			}
			if p.format <= ChunkFmt2 {
				p.current.tsField = binary.BigEndian.Uint32(p.hdr[:4])
			}
			if err := p.beginPayload(); err != nil {
				return err
			}

		case statePayload:
			cs := p.current
			n := min(int(p.chunkRemain), len(b))
			copy(cs.payload[cs.received:], b[:n])
			cs.received += uint32(n)
			p.chunkRemain -= uint32(n)
			b = b[n:]
			if p.chunkRemain == 0 {
				p.state = stateInit
				if cs.received == cs.length {
					if err := p.dispatch(cs); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// begin switches to a header state that collects n bytes.
func (p *ChunkParser) begin(state parseState, n int) {
	p.state = state
	p.hdrLen = 0
	p.need = n
}

// fill copies header bytes from b and reports whether the state has all it needs.
func (p *ChunkParser) fill(b *[]byte) bool {
	n := copy(p.hdr[p.hdrLen:p.need], *b)
	p.hdrLen += n
	*b = (*b)[n:]
	return p.hdrLen == p.need
}

// openChunk resolves the chunk stream for the decoded csid and starts its message header.
func (p *ChunkParser) openChunk() error {
	cs, ok := p.streams[p.csid]
	if !ok {
		cs = &chunkStream{}
		p.streams[p.csid] = cs
	}
	p.current = cs
	if size := messageHeaderSize[p.format]; size > 0 {
		p.begin(stateMessageHeader, size)
		return nil
	}
	return p.afterMessageHeader()
}

// readMessageHeader applies the buffered fmt 0/1/2 header to the current chunk stream.
func (p *ChunkParser) readMessageHeader() {
	cs := p.current
	h := p.hdr[:]
	cs.tsField = uint32(h[0])<<16 | uint32(h[1])<<8 | uint32(h[2])
	cs.extended = cs.tsField == extendedTimestampMarker
	if p.format <= ChunkFmt1 {
		cs.length = uint32(h[3])<<16 | uint32(h[4])<<8 | uint32(h[5])
		cs.typeID = h[6]
	}
	if p.format == ChunkFmt0 {
		cs.streamID = binary.LittleEndian.Uint32(h[7:11])
	}
}

// afterMessageHeader reads the extended timestamp when present, then the payload.
func (p *ChunkParser) afterMessageHeader() error {
	if p.current.extended {
		p.begin(stateExtendedTimestamp, 4)
		return nil
	}
	return p.beginPayload()
}

// beginPayload settles the message clock on a message's first chunk and sizes the next payload run.
func (p *ChunkParser) beginPayload() error {
	cs := p.current
	if p.format != ChunkFmt3 && cs.received > 0 {
		// A full header mid-message starts over.
		cs.payload = nil
		cs.received = 0
	}
	if cs.received == 0 {
		switch p.format {
		case ChunkFmt0:
			cs.timestamp = cs.tsField
			cs.delta = 0
		case ChunkFmt1, ChunkFmt2:
			cs.delta = cs.tsField
			cs.timestamp += cs.delta
		default:
			cs.timestamp += cs.delta
		}
		if cs.length > p.maxMessage {
			return fmt.Errorf("csid %d length %d: %w", p.csid, cs.length, ErrMessageTooLarge)
		}
		cs.payload = make([]byte, cs.length)
	}
	p.chunkRemain = min(p.chunkSize, cs.length-cs.received)
	p.state = statePayload
	if p.chunkRemain == 0 {
		p.state = stateInit
		return p.dispatch(cs)
	}
	return nil
}

// dispatch hands a completed message to the handler and resets the unit.
func (p *ChunkParser) dispatch(cs *chunkStream) error {
	msg := &Message{
		Header: Header{
			ChunkStreamID: p.csid,
			Timestamp:     cs.timestamp,
			Length:        cs.length,
			TypeID:        cs.typeID,
			StreamID:      cs.streamID,
		},
		Payload: cs.payload,
	}
	cs.payload = nil
	cs.received = 0
	// Units opened without a fmt 0/1 header carry no type.
	if msg.TypeID == 0 || p.handler == nil {
		return nil
	}
	return p.handler(msg)
}
