// If you are AI: This file contains tests for corked writes and batch flushing.

package rtmp

import (
	"bytes"
	"net"
	"testing"
	"time"

	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// pipeWriter returns a writer over one end of a pipe and a channel of what the other end reads.
func pipeWriter(t *testing.T) (*connWriter, <-chan []byte) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})

	got := make(chan []byte, 64)
	go func() {
		defer close(got)
		buf := make([]byte, 1024)
		for {
			n, err := client.Read(buf)
			if err != nil {
				return
			}
			got <- append([]byte(nil), buf[:n]...)
		}
	}()
	return newConnWriter(server, testWait, nil), got
}

// expectNothing fails if anything is read within d.
func expectNothing(t *testing.T, got <-chan []byte, d time.Duration) {
	t.Helper()
	select {
	case b := <-got:
		t.Fatalf("Expected nothing on the wire, got %x", b)
	case <-time.After(d):
	}
}

// readBytes collects exactly n bytes.
func readBytes(t *testing.T, got <-chan []byte, n int) []byte {
	t.Helper()
	var out []byte
	deadline := time.After(testWait)
	for len(out) < n {
		select {
		case b, ok := <-got:
			if !ok {
				t.Fatalf("Pipe closed after %d of %d bytes", len(out), n)
			}
			out = append(out, b...)
		case <-deadline:
			t.Fatalf("Expected %d bytes, got %d", n, len(out))
		}
	}
	return out
}

func TestConnWriterCorkFlushesAtLimit(t *testing.T) {
	w, got := pipeWriter(t)

	for i := 0; i < corkLimit-1; i++ {
		if err := w.Cork([]byte{byte(i)}); err != nil {
			t.Fatalf("Cork %d failed: %v", i, err)
		}
	}
	expectNothing(t, got, 100*time.Millisecond)

	if err := w.Cork([]byte{corkLimit - 1}); err != nil {
		t.Fatalf("Cork failed: %v", err)
	}
	out := readBytes(t, got, corkLimit)
	for i, b := range out {
		if b != byte(i) {
			t.Errorf("Byte %d: expected %d, got %d", i, i, b)
		}
	}

	// The counter starts over after a flush.
	if err := w.Cork([]byte{0xFF}); err != nil {
		t.Fatalf("Cork failed: %v", err)
	}
	expectNothing(t, got, 50*time.Millisecond)
}

func TestConnWriterFlushDrainsPartialBatch(t *testing.T) {
	w, got := pipeWriter(t)

	for _, b := range []byte{1, 2, 3} {
		if err := w.Cork([]byte{b}); err != nil {
			t.Fatalf("Cork failed: %v", err)
		}
	}
	expectNothing(t, got, 50*time.Millisecond)

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if out := readBytes(t, got, 3); !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Errorf("Expected 010203, got %x", out)
	}
	if err := w.Flush(); err != nil {
		t.Errorf("Flush with nothing buffered failed: %v", err)
	}
}

func TestConnWriterMessageFlushesCorked(t *testing.T) {
	w, got := pipeWriter(t)
	if err := w.Cork([]byte{0xAB}); err != nil {
		t.Fatalf("Cork failed: %v", err)
	}

	msg := rtmpprotocol.SetChunkSizeMessage(4096)
	if err := w.WriteMessage(msg); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	encoded := rtmpprotocol.EncodeMessage(msg, rtmpprotocol.DefaultChunkSize)
	out := readBytes(t, got, 1+len(encoded))
	if out[0] != 0xAB || !bytes.Equal(out[1:], encoded) {
		t.Errorf("Expected corked byte then the message, got %x", out)
	}
}

func TestRelayedMessageFlushedAtEndOfDelivery(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	pc, pub := startPublisher(t, srv, "cam")
	player := startPlayer(t, srv, "cam")
	waitUntil(t, func() bool { return pub.PlayerCount() == 1 })

	// One message is far below the cork limit; it still has to arrive.
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 0, avcFrame)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 0, avcFrame)
}
