// If you are AI: This file contains integration tests that run the built binary:
// startup, health checks, environment overrides, an RTMP publish seen by the API, and shutdown.

package itest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"testing"
	"time"

	"relaycast/internal/core/protocol/amf0"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

func TestServerStartupAndShutdown(t *testing.T) {
	p := StartServer(t, BuildBinary(t), "")
	if err := WaitForHealth(p.HTTPPort, 5*time.Second); err != nil {
		t.Fatalf("Health endpoint not available: %v", err)
	}
	if err := p.Stop(7 * time.Second); err != nil {
		t.Fatalf("Expected clean exit after SIGINT, got %v", err)
	}
}

func TestInvalidConfigExits(t *testing.T) {
	p := StartServer(t, BuildBinary(t), "rtmp:\n  chunk_size: 10\n")
	err := p.Wait(5 * time.Second)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %v", err)
	}
}

func TestEnvOverridesPort(t *testing.T) {
	bin := BuildBinary(t)
	port := findFreePort(t)
	p := StartServer(t, bin, "", fmt.Sprintf("RELAYCAST_SERVER_HTTP_PORT=%d", port))
	if err := WaitForHealth(port, 5*time.Second); err != nil {
		t.Fatalf("Server did not honour the env port: %v", err)
	}
	p.Stop(7 * time.Second)
}

func TestPublishVisibleInAPI(t *testing.T) {
	p := StartServer(t, BuildBinary(t), "")
	if err := WaitForHealth(p.HTTPPort, 5*time.Second); err != nil {
		t.Fatalf("Health endpoint not available: %v", err)
	}

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", p.RTMPPort), 3*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := rtmpprotocol.PerformClientHandshake(conn); err != nil {
		t.Fatalf("Handshake failed: %v", err)
	}

	sendCommand(t, conn, 0, "connect", float64(1), amf0.Object{"app": "live"})
	sendCommand(t, conn, 0, "createStream", float64(2), nil)
	sendCommand(t, conn, 1, "publish", float64(3), nil, "itest", "live")

	deadline := time.Now().Add(5 * time.Second)
	for {
		if paths := listStreams(t, p.HTTPPort); len(paths) == 1 && paths[0] == "/live/itest" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Publish never appeared in /api/streams")
		}
		time.Sleep(50 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(5 * time.Second)
	for len(listStreams(t, p.HTTPPort)) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Stream still listed after the publisher disconnected")
		}
		time.Sleep(50 * time.Millisecond)
	}
	p.Stop(7 * time.Second)
}

// sendCommand writes one AMF0 command. The server's replies are never read;
// the kernel socket buffer holds them.
func sendCommand(t *testing.T, conn net.Conn, streamID uint32, vals ...amf0.Value) {
	t.Helper()
	body, err := amf0.EncodeValues(vals...)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	h := rtmpprotocol.Header{
		ChunkStreamID: rtmpprotocol.ChannelInvoke,
		Length:        uint32(len(body)),
		TypeID:        rtmpprotocol.MessageTypeCommandAMF0,
		StreamID:      streamID,
	}
	if _, err := conn.Write(rtmpprotocol.CreateChunks(h, body, rtmpprotocol.DefaultChunkSize)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

// listStreams returns the paths reported by /api/streams.
func listStreams(t *testing.T, port int) []string {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/api/streams", port))
	if err != nil {
		t.Fatalf("GET /api/streams failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Streams []struct {
			Path string `json:"path"`
		} `json:"streams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode streams: %v", err)
	}
	paths := make([]string, 0, len(body.Streams))
	for _, s := range body.Streams {
		paths = append(paths, s.Path)
	}
	return paths
}
