// If you are AI: This file contains unit tests for the HTTP-FLV handler.

package httpflv

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"relaycast/internal/core/bus"
	"relaycast/internal/core/protocol/flv"
	"relaycast/internal/logger"
)

// streamMap is a fixed set of live taps.
type streamMap map[bus.StreamKey]*bus.Stream

func (m streamMap) Stream(key bus.StreamKey) *bus.Stream {
	return m[key]
}

func newTestRouter(streams streamMap) *chi.Mux {
	r := chi.NewRouter()
	NewService(streams, logger.Discard()).RegisterRoutes(r)
	return r
}

func TestHTTPFLVNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(streamMap{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flv/live/missing.flv", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHTTPFLVClosedStream(t *testing.T) {
	key := bus.NewStreamKey("live", "test")
	stream := bus.NewStream(key)
	stream.Close()

	w := httptest.NewRecorder()
	newTestRouter(streamMap{key: stream}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flv/live/test", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for an ended stream, got %d", w.Code)
	}
}

func TestHTTPFLVStreams(t *testing.T) {
	key := bus.NewStreamKey("live", "test")
	stream := bus.NewStream(key)
	stream.Publish(bus.NewMediaMessage(bus.MessageTypeAudio, 0, []byte{0xAF, 0x00, 0x12, 0x10}, true))

	server := httptest.NewServer(newTestRouter(streamMap{key: stream}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/flv/live/test.flv")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "video/x-flv" {
		t.Errorf("Expected video/x-flv, got %q", ct)
	}

	header := make([]byte, 13)
	if _, err := io.ReadFull(resp.Body, header); err != nil || string(header[:3]) != "FLV" {
		t.Fatalf("Expected FLV header, got %v (%v)", header, err)
	}
	tagBytes := make([]byte, 11+4+4)
	if _, err := io.ReadFull(resp.Body, tagBytes); err != nil {
		t.Fatalf("Failed to read init tag: %v", err)
	}
	tag, _, err := flv.ParseTag(tagBytes)
	if err != nil || tag.Type != flv.TagTypeAudio || tag.Timestamp != 0 {
		t.Errorf("Expected audio init tag, got %+v (%v)", tag, err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for stream.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stream.Close()
	if rest, err := io.ReadAll(resp.Body); err != nil || len(rest) != 0 {
		t.Errorf("Expected the body to end with the stream, got %d bytes (%v)", len(rest), err)
	}
}
