// If you are AI: This file implements the WebSocket-FLV subscriber that drains a stream tap
// and writes one FLV tag per binary frame.

package wsflv

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"relaycast/internal/core/bus"
	"relaycast/internal/core/protocol/flv"
)

// FrameConn receives one FLV piece per frame. *websocket.Conn satisfies it.
type FrameConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// Subscriber reads messages from a stream tap and writes FLV tags to a WebSocket.
type Subscriber struct {
	conn         FrameConn
	stream       *bus.Stream
	sub          *bus.Subscriber
	writeTimeout time.Duration
	gotKeyframe  bool   // true after the first video keyframe
	tsOffset     uint32 // first non-init timestamp, subtracted from later ones
	tsBaseSet    bool
}

// NewSubscriber creates a subscriber for stream writing to conn.
func NewSubscriber(conn FrameConn, stream *bus.Stream, writeTimeout time.Duration) *Subscriber {
	return &Subscriber{conn: conn, stream: stream, writeTimeout: writeTimeout}
}

// Attach subscribes to the tap. Slow viewers drop their oldest messages so the publisher never blocks.
func (s *Subscriber) Attach(capacity uint32) error {
	sub, err := s.stream.Subscribe(capacity, bus.BackpressureDropOldest)
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

// Detach unsubscribes from the tap.
func (s *Subscriber) Detach() {
	if s.sub != nil {
		s.stream.Unsubscribe(s.sub.ID())
		s.sub = nil
	}
}

// WriteHeader sends the FLV file header and the first PreviousTagSize as one frame.
func (s *Subscriber) WriteHeader(hasAudio, hasVideo bool) error {
	return s.write(flv.NewHeader(hasAudio, hasVideo).StreamStart())
}

// Run forwards messages until the stream ends, ctx is cancelled or a write fails.
// Non-init frames are dropped until the first video keyframe so audio and video start together.
func (s *Subscriber) Run(ctx context.Context) error {
	if s.sub == nil {
		return nil
	}
	for {
		if err := s.drain(); err != nil {
			return err
		}
		select {
		case <-s.sub.Notify():
		case <-s.sub.Done():
			return s.drain()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drain writes everything currently buffered.
func (s *Subscriber) drain() error {
	for {
		msg, ok := s.sub.Buffer().Read()
		if !ok {
			return nil
		}
		if !s.gotKeyframe && !msg.IsInit {
			if msg.Type != bus.MessageTypeVideo || !flv.IsVideoKeyframe(msg.Payload) {
				continue
			}
			s.gotKeyframe = true
		}
		tag := flv.MuxMessage(msg)
		if tag == nil {
			continue
		}
		tag.Timestamp = s.rebaseTimestamp(msg)
		if err := s.write(tag.Bytes()); err != nil {
			return err
		}
	}
}

// write sends one binary frame under the write timeout.
func (s *Subscriber) write(frame []byte) error {
	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// rebaseTimestamp makes the viewer's stream start at 0. Init messages are always 0.
func (s *Subscriber) rebaseTimestamp(msg *bus.MediaMessage) uint32 {
	if msg.IsInit {
		return 0
	}
	if !s.tsBaseSet {
		s.tsOffset = msg.Timestamp
		s.tsBaseSet = true
	}
	if msg.Timestamp < s.tsOffset {
		return 0
	}
	return msg.Timestamp - s.tsOffset
}
