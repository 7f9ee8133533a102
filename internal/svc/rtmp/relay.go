// If you are AI: This file implements the publisher side fan-out: codec header caching,
// chunking each message once and writing it to every eligible player.

package rtmp

import (
	"relaycast/internal/core/bus"
	"relaycast/internal/core/codec"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// mediaCache is what a publisher remembers for late joiners and the stream listing.
type mediaCache struct {
	metadata    []byte
	audioHeader []byte
	videoHeader []byte

	audioSeen   bool
	audio       codec.AudioHeader
	aac         *codec.AACInfo
	videoCodec  uint8
	video       *codec.VideoInfo
	videoParsed bool
}

// headers builds the catch-up messages for a player on stream id, in
// metadata, audio header, video header order.
func (c *mediaCache) headers(streamID uint32, withMetadata bool) []*rtmpprotocol.Message {
	var out []*rtmpprotocol.Message
	if withMetadata && c.metadata != nil {
		out = append(out, rtmpprotocol.NewMessage(rtmpprotocol.ChannelData, rtmpprotocol.MessageTypeDataAMF0, streamID, 0, c.metadata))
	}
	if c.audioHeader != nil {
		out = append(out, rtmpprotocol.NewMessage(rtmpprotocol.ChannelAudio, rtmpprotocol.MessageTypeAudio, streamID, 0, c.audioHeader))
	}
	if c.videoHeader != nil {
		out = append(out, rtmpprotocol.NewMessage(rtmpprotocol.ChannelVideo, rtmpprotocol.MessageTypeVideo, streamID, 0, c.videoHeader))
	}
	return out
}

// handleAudio caches the AAC/Opus sequence header and relays the frame.
func (s *Session) handleAudio(m *rtmpprotocol.Message) {
	if len(m.Payload) == 0 {
		return
	}
	isHeader := codec.IsAACSequenceHeader(m.Payload)

	s.mu.Lock()
	if !s.publishing {
		s.mu.Unlock()
		return
	}
	if !s.media.audioSeen {
		s.media.audioSeen = true
		s.media.audio = codec.ParseAudioHeader(m.Payload[0])
	}
	if isHeader {
		s.media.audioHeader = m.Payload
		if s.media.audio.Codec == codec.AudioCodecAAC {
			if info, err := codec.ParseAudioTag(m.Payload); err == nil {
				s.media.aac = &info
			} else {
				s.log.Debug("aac header", "error", err)
			}
		}
	}
	s.mu.Unlock()

	s.relay(rtmpprotocol.ChannelAudio, m, true, false)
	s.publishTap(bus.MessageTypeAudio, m, isHeader)
}

// handleVideo caches the AVC/HEVC sequence header, parsing only the first one, and relays the frame.
func (s *Session) handleVideo(m *rtmpprotocol.Message) {
	if len(m.Payload) == 0 {
		return
	}
	isHeader := codec.IsVideoSequenceHeader(m.Payload)

	s.mu.Lock()
	if !s.publishing {
		s.mu.Unlock()
		return
	}
	if isHeader {
		s.media.videoHeader = m.Payload
		if !s.media.videoParsed {
			s.media.videoParsed = true
			if info, err := codec.ParseVideoConfig(m.Payload); err == nil {
				s.media.video = &info
			} else {
				s.log.Debug("video header", "error", err)
			}
		}
	}
	if s.media.videoCodec == 0 {
		s.media.videoCodec = m.Payload[0] & 0x0f
	}
	s.mu.Unlock()

	s.relay(rtmpprotocol.ChannelVideo, m, false, true)
	s.publishTap(bus.MessageTypeVideo, m, isHeader)
}

// relayMetadata caches onMetaData and relays it to players.
func (s *Session) relayMetadata(meta []byte) {
	s.mu.Lock()
	if !s.publishing {
		s.mu.Unlock()
		return
	}
	s.media.metadata = meta
	s.mu.Unlock()

	m := rtmpprotocol.NewMessage(rtmpprotocol.ChannelData, rtmpprotocol.MessageTypeDataAMF0, 0, 0, meta)
	s.relay(rtmpprotocol.ChannelData, m, false, false)
	s.publishTap(bus.MessageTypeMetadata, m, true)
}

// relay chunks m once and writes it to every player that currently accepts it.
func (s *Session) relay(csid uint32, m *rtmpprotocol.Message, audio, video bool) {
	players := s.playerSnapshot()
	if len(players) == 0 {
		return
	}
	h := rtmpprotocol.Header{
		ChunkStreamID: csid,
		Timestamp:     m.Timestamp,
		Length:        uint32(len(m.Payload)),
		TypeID:        m.TypeID,
	}
	chunks := rtmpprotocol.CreateChunks(h, m.Payload, s.srv.opts.ChunkSize)

	for _, p := range players {
		streamID, ok := p.forwardable(audio, video)
		if !ok {
			continue
		}
		rtmpprotocol.PatchStreamID(chunks, streamID)
		if err := p.out.Cork(chunks); err != nil {
			p.log.Debug("relay write failed", "error", err)
			go p.Close()
		}
	}
}

// flushPlayers sends whatever the relay corked during one socket delivery.
func (s *Session) flushPlayers() {
	for _, p := range s.playerSnapshot() {
		if err := p.out.Flush(); err != nil {
			go p.Close()
		}
	}
}

// playerSnapshot copies the player set.
func (s *Session) playerSnapshot() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.players) == 0 {
		return nil
	}
	out := make([]*Session, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// publishTap hands the message to HTTP viewers of this path.
func (s *Session) publishTap(t bus.MessageType, m *rtmpprotocol.Message, isInit bool) {
	s.mu.Lock()
	tap := s.tap
	s.mu.Unlock()
	if tap != nil {
		tap.Publish(bus.NewMediaMessage(t, m.Timestamp, m.Payload, isInit))
	}
}
