// If you are AI: This file implements the RTMP client-side handshake over a blocking connection.
// Used by loopback test clients and tooling that dial an RTMP server.

package rtmp

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrInvalidVersion is returned when the server answers with an unknown S0.
var ErrInvalidVersion = errors.New("invalid RTMP version")

// PerformClientHandshake performs the client side of RTMP handshake.
// Sends C0/C1, reads S0/S1/S2, sends C2 and returns the S1 block.
func PerformClientHandshake(conn io.ReadWriter) ([]byte, error) {
	c0c1 := make([]byte, 1+HandshakeBlockSize)
	c0c1[0] = RTMPVersion
	binary.BigEndian.PutUint32(c0c1[1:5], uint32(time.Now().Unix()))
	if _, err := rand.Read(c0c1[9:]); err != nil {
		return nil, err
	}
	if _, err := conn.Write(c0c1); err != nil {
		return nil, fmt.Errorf("write c0c1: %w", err)
	}

	s0s1s2 := make([]byte, 1+2*HandshakeBlockSize)
	if _, err := io.ReadFull(conn, s0s1s2); err != nil {
		return nil, fmt.Errorf("read s0s1s2: %w", err)
	}
	if s0s1s2[0] != RTMPVersion {
		return nil, ErrInvalidVersion
	}
	s1 := s0s1s2[1 : 1+HandshakeBlockSize]

	// C2 echoes S1
	if _, err := conn.Write(s1); err != nil {
		return nil, fmt.Errorf("write c2: %w", err)
	}
	return s1, nil
}
