// If you are AI: This file implements HTTP API handlers.

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"relaycast/internal/core/bus"
	"relaycast/internal/metrics"
	"relaycast/internal/svc/rtmp"
)

// ServerResponse represents the /api/server response.
type ServerResponse struct {
	Version    string        `json:"version"`
	Uptime     int64         `json:"uptime"` // seconds
	GoVersion  string        `json:"go_version"`
	OS         string        `json:"os"`
	Arch       string        `json:"arch"`
	CPUs       int           `json:"cpus"`
	Goroutines int           `json:"goroutines"`
	HeapBytes  uint64        `json:"heap_bytes"`
	Services   []string      `json:"services"`
	Sessions   int           `json:"sessions"`
	Publishers int           `json:"publishers"`
	Stat       metrics.Stats `json:"stat"`
}

// StreamInfo describes one live path.
type StreamInfo struct {
	App         string          `json:"app"`
	Name        string          `json:"name"`
	Path        string          `json:"path"`
	ID          string          `json:"id"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`
	Players     int             `json:"players"`
	Viewers     int             `json:"viewers"`
	Audio       *rtmp.AudioInfo `json:"audio,omitempty"`
	Video       *rtmp.VideoInfo `json:"video,omitempty"`
}

// StreamsResponse represents the /api/streams response.
type StreamsResponse struct {
	Streams []StreamInfo `json:"streams"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServer handles GET /api/server.
func (s *Service[P]) handleServer(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := ServerResponse{
		Version:    Version,
		Uptime:     int64(time.Since(s.started).Seconds()),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUs:       runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
		Services:   s.services,
		Sessions:   s.registry.Count(),
		Publishers: s.registry.PublisherCount(),
	}
	if s.metrics != nil {
		response.Stat = s.metrics.Snapshot()
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleStreams handles GET /api/streams, one entry per publisher ordered by path.
func (s *Service[P]) handleStreams(w http.ResponseWriter, r *http.Request) {
	published := s.registry.Publishers()
	streams := make([]StreamInfo, 0, len(published))
	for _, p := range published {
		streams = append(streams, streamInfo(p))
	}
	s.writeJSON(w, http.StatusOK, StreamsResponse{Streams: streams})
}

// handleStream handles GET /api/streams/{app}/{name}.
func (s *Service[P]) handleStream(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "stream not found")
		return
	}
	s.writeJSON(w, http.StatusOK, streamInfo(p))
}

// handleKick handles DELETE /api/streams/{app}/{name} by disconnecting the publisher.
func (s *Service[P]) handleKick(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "stream not found")
		return
	}
	s.log.Info("publisher kicked", slog.String("path", p.Key.String()), slog.String("session", p.ID))
	p.Peer.Close()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// lookup resolves the {app}/{name} URL params to a live path.
func (s *Service[P]) lookup(r *http.Request) (bus.Published[P], bool) {
	key := bus.NewStreamKey(chi.URLParam(r, "app"), chi.URLParam(r, "name"))
	peer, ok := s.registry.Publisher(key)
	if !ok {
		return bus.Published[P]{}, false
	}
	return bus.Published[P]{Key: key, ID: peer.ID(), Peer: peer, Stream: s.registry.Stream(key)}, true
}

// streamInfo builds the listing entry of one live path.
func streamInfo[P Publisher](p bus.Published[P]) StreamInfo {
	media := p.Peer.Media()
	info := StreamInfo{
		App:         p.Key.App,
		Name:        p.Key.Name,
		Path:        p.Key.String(),
		ID:          p.ID,
		RemoteAddr:  p.Peer.RemoteAddr(),
		ConnectedAt: p.Peer.ConnectedAt(),
		Players:     p.Peer.PlayerCount(),
		Audio:       media.Audio,
		Video:       media.Video,
	}
	if p.Stream != nil {
		info.Viewers = p.Stream.SubscriberCount()
	}
	return info
}

// writeJSON writes a JSON response.
func (s *Service[P]) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Debug("write response failed", slog.String("error", err.Error()))
	}
}

// writeError writes an error response.
func (s *Service[P]) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
