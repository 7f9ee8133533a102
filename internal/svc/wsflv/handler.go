// If you are AI: This file implements the WebSocket handler for FLV stream requests.
// It serves GET /ws/{app}/{name} for the lifetime of the viewer or the live path.

package wsflv

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"relaycast/internal/core/bus"
)

const (
	// subscriberCapacity bounds the per-viewer buffer.
	subscriberCapacity = 1024
	// writeTimeout drops viewers that stop reading.
	writeTimeout = 10 * time.Second
)

// StreamSource resolves a live path to its tap.
type StreamSource interface {
	Stream(key bus.StreamKey) *bus.Stream
}

// Handler handles WebSocket-FLV requests.
type Handler struct {
	streams  StreamSource
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHandler creates a new WebSocket-FLV handler.
func NewHandler(streams StreamSource, log *slog.Logger) *Handler {
	return &Handler{
		streams: streams,
		upgrader: websocket.Upgrader{
			// Viewer pages may be served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP upgrades the request and streams FLV until either side ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app, name := chi.URLParam(r, "app"), chi.URLParam(r, "name")
	if app == "" || name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	key := bus.NewStreamKey(app, name)
	stream := h.streams.Stream(key)
	if stream == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an error status.
		return
	}
	defer conn.Close()

	sub := NewSubscriber(conn, stream, writeTimeout)
	if err := sub.Attach(subscriberCapacity); err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"))
		return
	}
	defer sub.Detach()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Viewers send nothing; a read error means they left.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.log.Info("ws-flv viewer joined", slog.String("path", key.String()), slog.String("remote", r.RemoteAddr))
	if err := sub.WriteHeader(true, true); err != nil {
		return
	}
	err = sub.Run(ctx)
	if err == nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
	}
	h.log.Info("ws-flv viewer left", slog.String("path", key.String()), slog.Any("error", err))
}
