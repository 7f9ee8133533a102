// If you are AI: This file provides the HTTP API service: server status and the live stream listing.
// Handlers only read registry snapshots and never block media paths.

package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"relaycast/internal/core/bus"
	"relaycast/internal/metrics"
	"relaycast/internal/svc/rtmp"
)

// Version is reported by /api/server.
const Version = "1.0.0"

// Publisher is what the listing needs from a live session.
type Publisher interface {
	ID() string
	RemoteAddr() string
	ConnectedAt() time.Time
	PlayerCount() int
	Media() rtmp.MediaInfo
	Close()
}

// Service provides HTTP API functionality over a session registry.
type Service[P Publisher] struct {
	registry *bus.Registry[P]
	metrics  *metrics.Metrics
	services []string
	log      *slog.Logger
	started  time.Time
}

// NewService creates a new API service. m may be nil; services names the enabled components.
func NewService[P Publisher](registry *bus.Registry[P], m *metrics.Metrics, services []string, log *slog.Logger) *Service[P] {
	return &Service[P]{
		registry: registry,
		metrics:  m,
		services: services,
		log:      log,
		started:  time.Now(),
	}
}

// RegisterRoutes registers API routes on r.
func (s *Service[P]) RegisterRoutes(r chi.Router) {
	r.Get("/api/server", s.handleServer)
	r.Get("/api/streams", s.handleStreams)
	r.Get("/api/streams/{app}/{name}", s.handleStream)
	r.Delete("/api/streams/{app}/{name}", s.handleKick)
}
