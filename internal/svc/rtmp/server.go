// If you are AI: This file implements the RTMP server that accepts connections.
// Each accepted connection gets its own Session and read goroutine.

package rtmp

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"relaycast/internal/config"
	"relaycast/internal/core/bus"
	"relaycast/internal/metrics"
)

// Options are the protocol parameters every session announces and enforces.
type Options struct {
	ChunkSize      uint32
	WindowAckSize  uint32
	PeerBandwidth  uint32
	PingInterval   time.Duration
	IdleTimeout    time.Duration
	MaxMessageSize uint32
}

// OptionsFromConfig maps the rtmp config section to server options.
func OptionsFromConfig(c config.RTMPConfig) Options {
	return Options{
		ChunkSize:      c.ChunkSize,
		WindowAckSize:  c.WindowAckSize,
		PeerBandwidth:  c.PeerBandwidth,
		PingInterval:   c.PingInterval,
		IdleTimeout:    c.IdleTimeout,
		MaxMessageSize: c.MaxMessageSize,
	}
}

// Server represents an RTMP server.
type Server struct {
	opts     Options
	registry *bus.Registry[*Session]
	events   *bus.Events
	metrics  *metrics.Metrics
	log      *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a new RTMP server. events may be nil when nothing consumes publish events.
func NewServer(opts Options, registry *bus.Registry[*Session], events *bus.Events, m *metrics.Metrics, log *slog.Logger) *Server {
	return &Server{
		opts:     opts,
		registry: registry,
		events:   events,
		metrics:  m,
		log:      log.With("component", "rtmp"),
	}
}

// Listen starts listening on the specified address.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.log.Info("rtmp listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Registry returns the session registry shared with the HTTP services.
func (s *Server) Registry() *bus.Registry[*Session] {
	return s.registry
}

// Serve accepts connections until Close. It returns nil after Close.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("rtmp server not listening")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.metrics.IncAccepted()

		// Registration happens under mu so Close either sees the session or refuses it.
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		sess := newSession(s, conn)
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			sess.run()
		}()
	}
}

// Close stops accepting, closes every session and waits for their goroutines.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.listener
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	for _, sess := range s.registry.Sessions() {
		sess.Close()
	}
	s.wg.Wait()
	return err
}

// Healthy reports an error unless the server is accepting connections.
func (s *Server) Healthy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("rtmp server closed")
	}
	if s.listener == nil {
		return errors.New("rtmp server not listening")
	}
	return nil
}
