// If you are AI: This file defines the per-connection RTMP session: its state flags,
// the read loop feeding handshake and chunk parser, and idempotent teardown.

package rtmp

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"relaycast/internal/core/bus"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// readBufferSize is the size of one socket read.
const readBufferSize = 64 << 10

// Session is one accepted RTMP connection. It can publish one path or play one path.
type Session struct {
	id    string
	srv   *Server
	conn  net.Conn
	log   *slog.Logger
	out   *connWriter
	start time.Time

	// Owned by the read goroutine.
	hs             *rtmpprotocol.Handshake
	parser         *rtmpprotocol.ChunkParser
	ack            rtmpprotocol.AckWindow
	app            string
	objectEncoding float64
	streamCount    uint32
	peerBandwidth  uint32
	limitType      byte
	pinging        bool

	// mu guards everything below. Lock order: a player's out writer, then the
	// publisher's mu, then the player's mu.
	mu           sync.Mutex
	started      bool
	publishing   bool
	playing      bool
	idling       bool
	paused       bool
	receiveAudio bool
	receiveVideo bool
	publishKey   bus.StreamKey
	publishID    uint32
	publishArgs  url.Values
	playKey      bus.StreamKey
	playID       uint32
	publisher    *Session
	players      map[string]*Session
	media        mediaCache
	tap          *bus.Stream

	closeOnce sync.Once
	closed    chan struct{}
}

// newSession registers a session for conn.
func newSession(srv *Server, conn net.Conn) *Session {
	_, s := srv.registry.Register(func(id string) *Session {
		s := &Session{
			id:           id,
			srv:          srv,
			conn:         conn,
			start:        time.Now(),
			hs:           rtmpprotocol.NewHandshake(),
			receiveAudio: true,
			receiveVideo: true,
			players:      make(map[string]*Session),
			closed:       make(chan struct{}),
		}
		s.log = srv.log.With("session", id, "remote", conn.RemoteAddr().String())
		s.out = newConnWriter(conn, srv.opts.IdleTimeout, srv.metrics.AddBytesOut)
		s.parser = rtmpprotocol.NewChunkParser(s.handleMessage)
		if srv.opts.MaxMessageSize > 0 {
			s.parser.SetMaxMessageSize(srv.opts.MaxMessageSize)
		}
		return s
	})
	return s
}

// ID returns the registry id of the session.
func (s *Session) ID() string {
	return s.id
}

// RemoteAddr returns the peer address.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// ConnectedAt returns when the connection was accepted.
func (s *Session) ConnectedAt() time.Time {
	return s.start
}

// PlayerCount returns the number of sessions playing from this publisher.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// run reads the socket until it fails, then tears the session down.
func (s *Session) run() {
	defer s.Close()
	s.log.Debug("session opened")

	buf := make([]byte, readBufferSize)
	for {
		if s.srv.opts.IdleTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.srv.opts.IdleTimeout))
		}
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.srv.metrics.AddBytesIn(n)
			if ferr := s.feed(buf[:n]); ferr != nil {
				s.log.Warn("session aborted", "error", ferr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Debug("read failed", "error", err)
			}
			return
		}
	}
}

// feed pushes one socket delivery through the handshake and the chunk parser.
func (s *Session) feed(p []byte) error {
	if seq, due := s.ack.Add(uint32(len(p))); due {
		if err := s.out.WriteMessage(rtmpprotocol.AcknowledgementMessage(seq)); err != nil {
			return err
		}
	}

	if !s.hs.Done() {
		consumed, reply := s.hs.Feed(p)
		if reply != nil {
			if err := s.out.WriteRaw(reply); err != nil {
				return err
			}
		}
		p = p[consumed:]
		if !s.hs.Done() || len(p) == 0 {
			return nil
		}
	}

	err := s.parser.Feed(p)
	s.flushPlayers()
	return err
}

// Close tears the session down once: publish and play roles are released,
// the registry forgets the session and the socket is closed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.stopPublish(false)
		s.stopPlay()
		s.srv.registry.Unregister(s.id)
		s.conn.Close()
		s.log.Info("session closed")
	})
}

// startPing sends a ping request every PingInterval until the session closes.
func (s *Session) startPing() {
	if s.pinging || s.srv.opts.PingInterval <= 0 {
		return
	}
	s.pinging = true
	go func() {
		ticker := time.NewTicker(s.srv.opts.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.closed:
				return
			case <-ticker.C:
				ms := uint32(time.Since(s.start).Milliseconds())
				if err := s.out.WriteMessage(rtmpprotocol.UserControlMessage(rtmpprotocol.ControlPingRequest, ms)); err != nil {
					return
				}
			}
		}
	}()
}
