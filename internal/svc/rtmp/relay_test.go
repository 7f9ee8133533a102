// If you are AI: This file contains loopback tests for fan-out, catch-up and unpublish.

package rtmp

import (
	"bytes"
	"testing"

	"relaycast/internal/core/bus"
	"relaycast/internal/core/protocol/amf0"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

var (
	aacHeader = []byte{0xAF, 0x00, 0x12, 0x10}
	aacFrame  = []byte{0xAF, 0x01, 0x21, 0x00, 0x49}
	avcHeader = []byte{0x17, 0x00, 0x00, 0x00, 0x00}
	avcFrame  = []byte{0x27, 0x01, 0x00, 0x00, 0x00, 0xAA}
)

// metadataBody is a @setDataFrame message as encoders send it.
func metadataBody(t *testing.T) []byte {
	t.Helper()
	body, err := amf0.EncodeValues("@setDataFrame", "onMetaData", amf0.ECMAArray{"width": float64(1280)})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return body
}

// startPublisher connects a client publishing live/name.
func startPublisher(t *testing.T, srv *Server, name string) (*testClient, *Session) {
	t.Helper()
	c := dial(t, srv)
	c.connect("live")
	c.createStream()
	c.publish(name)
	c.expectStatus("NetStream.Publish.Start")
	pub, ok := srv.Registry().Publisher(bus.NewStreamKey("live", name))
	if !ok {
		t.Fatal("Publisher not registered")
	}
	return c, pub
}

// startPlayer connects a client playing live/name and consumes the play replies.
func startPlayer(t *testing.T, srv *Server, name string) *testClient {
	t.Helper()
	c := dial(t, srv)
	c.connect("live")
	c.createStream()
	c.play(name)
	c.expectStatus("NetStream.Play.Reset")
	c.expectStatus("NetStream.Play.Start")
	return c
}

// sendMedia writes one media message on the publisher's stream.
func (c *testClient) sendMedia(typeID byte, timestamp uint32, payload []byte) {
	c.t.Helper()
	csid := uint32(rtmpprotocol.ChannelVideo)
	if typeID == rtmpprotocol.MessageTypeAudio {
		csid = rtmpprotocol.ChannelAudio
	}
	c.send(csid, typeID, c.stream, timestamp, payload)
}

// expectMedia checks the next media message.
func (c *testClient) expectMedia(typeID byte, timestamp uint32, payload []byte) {
	c.t.Helper()
	m := c.nextMedia()
	if m.TypeID != typeID || m.Timestamp != timestamp || !bytes.Equal(m.Payload, payload) {
		c.t.Fatalf("Expected type %d ts %d %x, got type %d ts %d %x", typeID, timestamp, payload, m.TypeID, m.Timestamp, m.Payload)
	}
	if m.StreamID != c.stream {
		c.t.Errorf("Expected stream id %d, got %d", c.stream, m.StreamID)
	}
}

// expectMetadata checks the next media message is onMetaData.
func (c *testClient) expectMetadata() {
	c.t.Helper()
	m := c.nextMedia()
	name, _, err := amf0.DecodeData(m.Payload)
	if m.TypeID != rtmpprotocol.MessageTypeDataAMF0 || err != nil || name != "onMetaData" {
		c.t.Fatalf("Expected onMetaData, got type %d name %q (%v)", m.TypeID, name, err)
	}
	if m.StreamID != c.stream {
		c.t.Errorf("Expected stream id %d, got %d", c.stream, m.StreamID)
	}
}

func TestIdlePlayerJoinsWhenLive(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	player := startPlayer(t, srv, "cam")
	waitUntil(t, func() bool { return srv.Registry().IdlerCount() == 1 })

	pc, pub := startPublisher(t, srv, "cam")
	waitUntil(t, func() bool { return srv.Registry().IdlerCount() == 0 && pub.PlayerCount() == 1 })

	pc.send(rtmpprotocol.ChannelData, rtmpprotocol.MessageTypeDataAMF0, pc.stream, 0, metadataBody(t))
	pc.sendMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 40, avcFrame)

	player.expectMetadata()
	player.expectMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 40, avcFrame)
}

func TestLateJoinerCatchUp(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	pc, pub := startPublisher(t, srv, "cam")

	pc.send(rtmpprotocol.ChannelData, rtmpprotocol.MessageTypeDataAMF0, pc.stream, 0, metadataBody(t))
	pc.sendMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 40, avcFrame)
	waitUntil(t, func() bool {
		info := pub.Media()
		return info.Audio != nil && info.Video != nil
	})

	info := pub.Media()
	if info.Audio.Codec != "AAC" || info.Audio.SampleRate != 44100 || info.Audio.Channels != 2 {
		t.Errorf("Unexpected audio info %+v", info.Audio)
	}
	if info.Video.Codec != "H264" {
		t.Errorf("Expected H264, got %s", info.Video.Codec)
	}

	player := startPlayer(t, srv, "cam")
	player.expectMetadata()
	player.expectMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)

	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 80, avcFrame)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 80, avcFrame)
}

func TestUnpublishDisconnectsPlayers(t *testing.T) {
	events := bus.NewEvents(8)
	srv := startServer(t, testOptions(), events)
	pc, pub := startPublisher(t, srv, "cam")
	a := startPlayer(t, srv, "cam")
	b := startPlayer(t, srv, "cam")
	waitUntil(t, func() bool { return pub.PlayerCount() == 2 })

	pc.command(0, "deleteStream", pc.nextTx(), nil, float64(pc.stream))
	pc.expectStatus("NetStream.Unpublish.Success")

	for _, p := range []*testClient{a, b} {
		p.expectStatus("NetStream.Play.UnpublishNotify")
		p.expectClosed()
	}
	if srv.Registry().PublisherCount() != 0 {
		t.Errorf("Expected no publishers, got %d", srv.Registry().PublisherCount())
	}

	first, second := nextEvent(t, events), nextEvent(t, events)
	if first.Kind != bus.EventPublished || second.Kind != bus.EventUnpublished {
		t.Errorf("Expected published then unpublished, got %s then %s", first.Kind, second.Kind)
	}
	if first.SessionID != pub.ID() || second.SessionID != pub.ID() {
		t.Error("Events should carry the publisher's session id")
	}
}

func TestPublisherDisconnectReleasesPath(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	pc, _ := startPublisher(t, srv, "cam")
	player := startPlayer(t, srv, "cam")

	pc.conn.Close()
	player.expectStatus("NetStream.Play.UnpublishNotify")
	player.expectClosed()
	waitUntil(t, func() bool { return srv.Registry().Count() == 0 })

	if srv.Registry().PublisherCount() != 0 {
		t.Error("Path should be free after the publisher disconnects")
	}
	startPublisher(t, srv, "cam")
}

func TestReceiveAudioFalse(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	pc, pub := startPublisher(t, srv, "cam")
	player := startPlayer(t, srv, "cam")
	waitUntil(t, func() bool { return pub.PlayerCount() == 1 })

	playStream := player.stream
	player.command(playStream, "receiveAudio", player.nextTx(), nil, false)
	// createStream's reply orders the flag before the media below.
	player.createStream()
	player.stream = playStream

	pc.sendMedia(rtmpprotocol.MessageTypeAudio, 10, aacFrame)
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 20, avcFrame)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 20, avcFrame)
}

func TestPauseAndResume(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	pc, pub := startPublisher(t, srv, "cam")
	pc.sendMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)
	waitUntil(t, func() bool { return pub.Media().Video != nil })

	player := startPlayer(t, srv, "cam")
	player.expectMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)

	player.command(player.stream, "pause", player.nextTx(), nil, true, float64(0))
	m := player.next()
	if event, value, _ := rtmpprotocol.ParseUserControl(m.Payload); m.TypeID != rtmpprotocol.MessageTypeUserCtrl || event != rtmpprotocol.ControlStreamEOF || value != player.stream {
		t.Errorf("Expected stream EOF, got type %d event %d value %d", m.TypeID, event, value)
	}
	player.expectStatus("NetStream.Pause.Notify")

	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 40, avcFrame)
	// The reply to createStream means the frame above has been handled.
	stream := pc.stream
	pc.createStream()
	pc.stream = stream

	player.command(player.stream, "pause", player.nextTx(), nil, false, float64(0))
	m = player.next()
	if event, _, _ := rtmpprotocol.ParseUserControl(m.Payload); m.TypeID != rtmpprotocol.MessageTypeUserCtrl || event != rtmpprotocol.ControlStreamBegin {
		t.Errorf("Expected stream begin, got type %d event %d", m.TypeID, event)
	}
	player.expectMedia(rtmpprotocol.MessageTypeAudio, 0, aacHeader)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 0, avcHeader)
	player.expectStatus("NetStream.Unpause.Notify")

	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 80, avcFrame)
	player.expectMedia(rtmpprotocol.MessageTypeVideo, 80, avcFrame)
}

func TestTapReceivesMedia(t *testing.T) {
	srv := startServer(t, testOptions(), nil)
	pc, _ := startPublisher(t, srv, "cam")

	stream := srv.Registry().Stream(bus.NewStreamKey("live", "cam"))
	if stream == nil {
		t.Fatal("Expected an open tap for the live path")
	}
	sub, err := stream.Subscribe(16, bus.BackpressureDropOldest)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	pc.sendMedia(rtmpprotocol.MessageTypeVideo, 40, avcFrame)
	waitUntil(t, func() bool { return sub.Buffer().Len() > 0 })
	msg, _ := sub.Buffer().Read()
	if msg.Type != bus.MessageTypeVideo || msg.Timestamp != 40 || !bytes.Equal(msg.Payload, avcFrame) {
		t.Errorf("Unexpected tap message %+v", msg)
	}

	pc.conn.Close()
	waitUntil(t, func() bool { return stream.Closed() })
}
