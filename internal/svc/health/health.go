// If you are AI: This file implements the health check endpoint for monitoring and orchestration probes.

package health

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Check reports a component failure, or nil when healthy.
type Check func() error

// Service provides health check functionality.
type Service struct {
	checks map[string]Check
}

// Response is the /healthz body.
type Response struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

// New creates a health service running the named checks on every probe.
func New(checks map[string]Check) *Service {
	return &Service{checks: checks}
}

// RegisterRoutes adds /healthz to r.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
}

// handleHealth returns 200 when every check passes and 503 otherwise.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: "ok"}
	for name, check := range s.checks {
		if err := check(); err != nil {
			if resp.Failed == nil {
				resp.Failed = make(map[string]string)
			}
			resp.Failed[name] = err.Error()
		}
	}
	status := http.StatusOK
	if len(resp.Failed) > 0 {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
