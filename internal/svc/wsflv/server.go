// If you are AI: This file provides WebSocket-FLV service integration with the HTTP router.

package wsflv

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// Service provides WebSocket-FLV streaming functionality.
type Service struct {
	handler *Handler
}

// NewService creates a new WebSocket-FLV service over streams.
func NewService(streams StreamSource, log *slog.Logger) *Service {
	return &Service{handler: NewHandler(streams, log)}
}

// RegisterRoutes registers GET /ws/{app}/{name} on r.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{app}/{name}", s.handler.ServeHTTP)
}
