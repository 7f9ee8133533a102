// If you are AI: This file implements the HTTP-FLV handler: one long-lived chunked response per viewer.

package httpflv

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"relaycast/internal/core/bus"
	"relaycast/internal/svc/wsflv"
)

const (
	subscriberCapacity = 1024
	writeTimeout       = 10 * time.Second
)

// Handler streams a live path as an FLV file over plain HTTP.
type Handler struct {
	streams wsflv.StreamSource
	log     *slog.Logger
}

// NewHandler creates a new HTTP-FLV handler.
func NewHandler(streams wsflv.StreamSource, log *slog.Logger) *Handler {
	return &Handler{streams: streams, log: log}
}

// ServeHTTP handles GET /flv/{app}/{name}, with an optional .flv suffix on name.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app := chi.URLParam(r, "app")
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".flv")
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

	sub := wsflv.NewSubscriber(newFrameWriter(w), stream, writeTimeout)
	if err := sub.Attach(subscriberCapacity); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer sub.Detach()

	w.Header().Set("Content-Type", "video/x-flv")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-cache")

	h.log.Info("http-flv viewer joined", slog.String("path", key.String()), slog.String("remote", r.RemoteAddr))
	if err := sub.WriteHeader(true, true); err != nil {
		return
	}
	err := sub.Run(r.Context())
	h.log.Info("http-flv viewer left", slog.String("path", key.String()), slog.Any("error", err))
}

// frameWriter writes each frame to the response body and flushes it.
type frameWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// newFrameWriter wraps w.
func newFrameWriter(w http.ResponseWriter) *frameWriter {
	return &frameWriter{w: w, rc: http.NewResponseController(w)}
}

// WriteMessage writes data and flushes it to the client. The message type is ignored.
func (f *frameWriter) WriteMessage(_ int, data []byte) error {
	if _, err := f.w.Write(data); err != nil {
		return err
	}
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// SetWriteDeadline bounds the next write where the server supports it.
func (f *frameWriter) SetWriteDeadline(t time.Time) error {
	if err := f.rc.SetWriteDeadline(t); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
