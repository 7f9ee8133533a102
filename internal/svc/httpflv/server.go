// If you are AI: This file provides HTTP-FLV service integration with the HTTP router.

package httpflv

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"relaycast/internal/svc/wsflv"
)

// Service provides HTTP-FLV streaming functionality.
type Service struct {
	handler *Handler
}

// NewService creates a new HTTP-FLV service over streams.
func NewService(streams wsflv.StreamSource, log *slog.Logger) *Service {
	return &Service{handler: NewHandler(streams, log)}
}

// RegisterRoutes registers GET /flv/{app}/{name} on r.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/flv/{app}/{name}", s.handler.ServeHTTP)
}
