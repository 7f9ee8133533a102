// If you are AI: This file implements the server side of the RTMP handshake as a resumable state machine.
// Progress is driven only by byte counts, so any split of C0/C1/C2 across reads is accepted.

package rtmp

// HandshakeState is the progress of a server handshake.
type HandshakeState int

const (
	// HandshakeUninit waits for the C0 version byte.
	HandshakeUninit HandshakeState = iota
	// HandshakeVersionReceived buffers the 1536-byte C1 block.
	HandshakeVersionReceived
	// HandshakeAckSent has replied with S0/S1/S2 and waits for C2.
	HandshakeAckSent
	// HandshakeDone hands every further byte to the chunk parser.
	HandshakeDone
)

// String returns a readable name for the state.
func (s HandshakeState) String() string {
	switch s {
	case HandshakeUninit:
		return "uninit"
	case HandshakeVersionReceived:
		return "version_received"
	case HandshakeAckSent:
		return "ack_sent"
	case HandshakeDone:
		return "done"
	default:
		return "unknown"
	}
}

// Handshake holds the server handshake state of one connection.
type Handshake struct {
	state    HandshakeState
	version  byte
	c1       [HandshakeBlockSize]byte
	buffered int
}

// NewHandshake creates a handshake waiting for C0.
func NewHandshake() *Handshake {
	return &Handshake{}
}

// State returns the current handshake state.
func (h *Handshake) State() HandshakeState {
	return h.state
}

// Done reports whether C2 has been fully received.
func (h *Handshake) Done() bool {
	return h.state == HandshakeDone
}

// Version returns the C0 byte sent by the client.
func (h *Handshake) Version() byte {
	return h.version
}

// Feed consumes handshake bytes from p and returns how many were used.
// When C1 completes, reply carries S0+S1+S2 and must be written to the peer.
// Bytes past the end of C2 are left unconsumed for the chunk parser.
func (h *Handshake) Feed(p []byte) (consumed int, reply []byte) {
	for consumed < len(p) && h.state != HandshakeDone {
		switch h.state {
		case HandshakeUninit:
			h.version = p[consumed]
			consumed++
			h.buffered = 0
			h.state = HandshakeVersionReceived

		case HandshakeVersionReceived:
			n := copy(h.c1[h.buffered:], p[consumed:])
			h.buffered += n
			consumed += n
			if h.buffered == HandshakeBlockSize {
				reply = h.response()
				h.buffered = 0
				h.state = HandshakeAckSent
			}

		case HandshakeAckSent:
			n := HandshakeBlockSize - h.buffered
			if rest := len(p) - consumed; rest < n {
				n = rest
			}
			h.buffered += n
			consumed += n
			if h.buffered == HandshakeBlockSize {
				h.state = HandshakeDone
			}
		}
	}
	return consumed, reply
}

// response builds S0+S1+S2. S1 and S2 both echo C1's timestamp and random
// block with a zeroed second field.
func (h *Handshake) response() []byte {
	out := make([]byte, 1+2*HandshakeBlockSize)
	out[0] = RTMPVersion
	for _, block := range [][]byte{out[1 : 1+HandshakeBlockSize], out[1+HandshakeBlockSize:]} {
		copy(block[0:4], h.c1[0:4])
		copy(block[8:], h.c1[8:])
	}
	return out
}
