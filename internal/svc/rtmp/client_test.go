// If you are AI: This file contains the loopback RTMP client used by the session tests.

package rtmp

import (
	"net"
	"testing"
	"time"

	"relaycast/internal/core/bus"
	"relaycast/internal/core/protocol/amf0"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
	"relaycast/internal/logger"
	"relaycast/internal/metrics"
)

// testWait bounds every wait in these tests.
const testWait = 3 * time.Second

// testOptions are small, fast protocol settings.
func testOptions() Options {
	return Options{
		ChunkSize:      4096,
		WindowAckSize:  5000000,
		PeerBandwidth:  5000000,
		PingInterval:   time.Hour,
		IdleTimeout:    10 * time.Second,
		MaxMessageSize: 1 << 20,
	}
}

// startServer runs a server on a loopback port until the test ends.
func startServer(t *testing.T, opts Options, events *bus.Events) *Server {
	t.Helper()
	srv := NewServer(opts, bus.NewRegistry[*Session](), events, metrics.New(), logger.Discard())
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return srv
}

// testClient speaks just enough RTMP to publish and play.
type testClient struct {
	t      *testing.T
	conn   net.Conn
	msgs   chan *rtmpprotocol.Message
	txID   float64
	stream uint32
}

// dial connects and completes the handshake.
func dial(t *testing.T, srv *Server) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := rtmpprotocol.PerformClientHandshake(conn); err != nil {
		t.Fatalf("Handshake failed: %v", err)
	}

	c := &testClient{t: t, conn: conn, msgs: make(chan *rtmpprotocol.Message, 1024), txID: 1}
	var parser *rtmpprotocol.ChunkParser
	parser = rtmpprotocol.NewChunkParser(func(m *rtmpprotocol.Message) error {
		if m.TypeID == rtmpprotocol.MessageTypeSetChunkSize {
			if size, err := rtmpprotocol.ParseSetChunkSize(m.Payload); err == nil {
				parser.SetChunkSize(size)
			}
		}
		c.msgs <- m
		return nil
	})
	go func() {
		defer close(c.msgs)
		buf := make([]byte, 32<<10)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				if perr := parser.Feed(buf[:n]); perr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return c
}

// send writes one message with the default 128-byte chunk size.
func (c *testClient) send(csid uint32, typeID byte, streamID, timestamp uint32, payload []byte) {
	c.t.Helper()
	h := rtmpprotocol.Header{ChunkStreamID: csid, Timestamp: timestamp, Length: uint32(len(payload)), TypeID: typeID, StreamID: streamID}
	if _, err := c.conn.Write(rtmpprotocol.CreateChunks(h, payload, rtmpprotocol.DefaultChunkSize)); err != nil {
		c.t.Fatalf("Write failed: %v", err)
	}
}

// command sends an AMF0 command on streamID.
func (c *testClient) command(streamID uint32, vals ...amf0.Value) {
	c.t.Helper()
	body, err := amf0.EncodeValues(vals...)
	if err != nil {
		c.t.Fatalf("Encode failed: %v", err)
	}
	c.send(rtmpprotocol.ChannelInvoke, rtmpprotocol.MessageTypeCommandAMF0, streamID, 0, body)
}

// next returns the next message, failing on timeout or disconnect.
func (c *testClient) next() *rtmpprotocol.Message {
	c.t.Helper()
	select {
	case m, ok := <-c.msgs:
		if !ok {
			c.t.Fatal("connection closed")
		}
		return m
	case <-time.After(testWait):
		c.t.Fatal("timed out waiting for message")
	}
	return nil
}

// nextMedia skips control and command traffic and returns the next audio, video or data message.
func (c *testClient) nextMedia() *rtmpprotocol.Message {
	c.t.Helper()
	for {
		m := c.next()
		switch m.TypeID {
		case rtmpprotocol.MessageTypeAudio, rtmpprotocol.MessageTypeVideo, rtmpprotocol.MessageTypeDataAMF0:
			if name, _, err := amf0.DecodeData(m.Payload); err == nil && name == "|RtmpSampleAccess" {
				continue
			}
			return m
		}
	}
}

// nextCommand skips everything but command messages.
func (c *testClient) nextCommand() (*amf0.Command, *rtmpprotocol.Message) {
	c.t.Helper()
	for {
		m := c.next()
		if m.TypeID != rtmpprotocol.MessageTypeCommandAMF0 {
			continue
		}
		cmd, err := amf0.DecodeCommand(m.Payload)
		if err != nil {
			c.t.Fatalf("Bad command from server: %v", err)
		}
		return cmd, m
	}
}

// expectStatus waits for the next onStatus and checks its code.
func (c *testClient) expectStatus(code string) *rtmpprotocol.Message {
	c.t.Helper()
	for {
		cmd, m := c.nextCommand()
		if cmd.Name != "onStatus" {
			continue
		}
		if got := statusCode(cmd); got != code {
			c.t.Fatalf("Expected status %s, got %s", code, got)
		}
		return m
	}
}

// expectClosed waits until the server drops the connection.
func (c *testClient) expectClosed() {
	c.t.Helper()
	deadline := time.After(testWait)
	for {
		select {
		case _, ok := <-c.msgs:
			if !ok {
				return
			}
		case <-deadline:
			c.t.Fatal("connection was not closed")
		}
	}
}

// connect performs connect and waits for its result.
func (c *testClient) connect(app string) {
	c.t.Helper()
	c.command(0, "connect", c.nextTx(), amf0.Object{"app": app, "objectEncoding": float64(0)})
	for {
		cmd, _ := c.nextCommand()
		if cmd.Name == "_result" {
			return
		}
	}
}

// createStream allocates a stream id and remembers it.
func (c *testClient) createStream() uint32 {
	c.t.Helper()
	c.command(0, "createStream", c.nextTx(), nil)
	cmd, _ := c.nextCommand()
	id, ok := cmd.NumberArg(0)
	if cmd.Name != "_result" || !ok {
		c.t.Fatalf("Expected createStream result, got %+v", cmd)
	}
	c.stream = uint32(id)
	return c.stream
}

// publish sends publish on the current stream id.
func (c *testClient) publish(name string) {
	c.t.Helper()
	c.command(c.stream, "publish", c.nextTx(), nil, name, "live")
}

// play sends play on the current stream id.
func (c *testClient) play(name string) {
	c.t.Helper()
	c.command(c.stream, "play", c.nextTx(), nil, name)
}

// nextTx returns a fresh transaction id.
func (c *testClient) nextTx() float64 {
	c.txID++
	return c.txID
}

// statusCode extracts info.code from an onStatus command.
func statusCode(cmd *amf0.Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	info, _ := cmd.Args[0].(amf0.Object)
	code, _ := info["code"].(string)
	return code
}

// waitUntil polls cond until it holds.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testWait)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
