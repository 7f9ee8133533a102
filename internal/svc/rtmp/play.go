// If you are AI: This file handles the play side of a session: idling until a path
// goes live, joining a publisher with header catch-up, pause and leaving.

package rtmp

import (
	"relaycast/internal/core/bus"
	"relaycast/internal/core/protocol/amf0"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// onPlay answers the play request and joins the publisher, or idles until the path is live.
func (s *Session) onPlay(cmd *amf0.Command, streamID uint32) error {
	name, _ := splitStreamName(cmd.StringArg(0))
	if name == "" || s.app == "" {
		s.log.Debug("play without stream name")
		return nil
	}
	key := bus.NewStreamKey(s.app, name)

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	if s.playing || s.idling {
		s.mu.Unlock()
		return s.sendStatus(streamID, "error", "NetStream.Play.BadConnection", "Connection already playing")
	}
	s.idling = true
	s.playKey = key
	s.playID = streamID
	s.mu.Unlock()

	if err := s.sendStreamEvent(rtmpprotocol.ControlStreamBegin, streamID); err != nil {
		return err
	}
	if err := s.sendStatus(streamID, "status", "NetStream.Play.Reset", "Playing and resetting stream."); err != nil {
		return err
	}
	if err := s.sendStatus(streamID, "status", "NetStream.Play.Start", "Started playing stream."); err != nil {
		return err
	}
	if err := s.out.WriteMessage(sampleAccessMessage(streamID)); err != nil {
		return err
	}

	if s.joinOrIdle(key) {
		s.mu.Lock()
		s.idling = false
		s.mu.Unlock()
		return s.sendStatus(streamID, "error", "NetStream.Play.Failed", "Cannot play own stream")
	}
	return nil
}

// joinOrIdle joins the live publisher of key, or leaves the session in the idle set.
// It reports true when the session itself publishes key.
func (s *Session) joinOrIdle(key bus.StreamKey) bool {
	for {
		pub, live := s.srv.registry.PublisherOrIdle(key, s.id)
		if !live {
			s.log.Info("play idle", "path", key.String())
			return false
		}
		if pub == s {
			return true
		}
		if s.startPlayback(pub) {
			return false
		}
		// The publisher was leaving; look again unless play was cancelled meanwhile.
		if !s.isIdling() {
			return false
		}
	}
}

// startPlayback joins pub and sends its cached metadata, audio and video headers.
// It reports false when pub stopped publishing or this session no longer waits to play.
func (s *Session) startPlayback(pub *Session) bool {
	if pub == s {
		return false
	}
	joined := false
	err := s.out.Batch(func(send func(*rtmpprotocol.Message) error) error {
		pub.mu.Lock()
		s.mu.Lock()
		if !s.idling || !pub.publishing || pub.publishKey != s.playKey {
			s.mu.Unlock()
			pub.mu.Unlock()
			return nil
		}
		s.idling = false
		s.playing = true
		s.publisher = pub
		streamID := s.playID
		s.mu.Unlock()
		pub.players[s.id] = s
		headers := pub.media.headers(streamID, true)
		pub.mu.Unlock()

		joined = true
		for _, m := range headers {
			if err := send(m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Debug("catch-up failed", "error", err)
		go s.Close()
	}
	if joined {
		s.log.Info("play started", "path", s.playKey.String(), "publisher", pub.id)
	}
	return joined
}

// stopPlay leaves the idling set or the publisher's player set.
func (s *Session) stopPlay() {
	s.mu.Lock()
	idling, playing, pub := s.idling, s.playing, s.publisher
	s.idling = false
	s.playing = false
	s.paused = false
	s.publisher = nil
	s.mu.Unlock()

	if idling {
		s.srv.registry.RemoveIdler(s.id)
	}
	if playing && pub != nil {
		pub.removePlayer(s.id)
	}
}

// onPause stops or resumes forwarding. Resuming re-sends the sequence headers.
func (s *Session) onPause(cmd *amf0.Command) error {
	pause, ok := cmd.BoolArg(0)
	if !ok {
		return nil
	}
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return nil
	}
	streamID, pub := s.playID, s.publisher
	if pause {
		s.paused = true
	}
	s.mu.Unlock()

	if pause {
		if err := s.sendStreamEvent(rtmpprotocol.ControlStreamEOF, streamID); err != nil {
			return err
		}
		return s.sendStatus(streamID, "status", "NetStream.Pause.Notify", "Paused live")
	}

	if err := s.sendStreamEvent(rtmpprotocol.ControlStreamBegin, streamID); err != nil {
		return err
	}
	err := s.out.Batch(func(send func(*rtmpprotocol.Message) error) error {
		var headers []*rtmpprotocol.Message
		if pub != nil {
			pub.mu.Lock()
			headers = pub.media.headers(streamID, false)
			pub.mu.Unlock()
		}
		for _, m := range headers {
			if err := send(m); err != nil {
				return err
			}
		}
		s.mu.Lock()
		s.paused = false
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	return s.sendStatus(streamID, "status", "NetStream.Unpause.Notify", "Unpaused live")
}

// removePlayer drops id from this publisher's player set.
func (s *Session) removePlayer(id string) {
	s.mu.Lock()
	delete(s.players, id)
	s.mu.Unlock()
}

// isIdling reports whether the session waits for a path to go live.
func (s *Session) isIdling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idling
}

// currentPlayID returns the stream id used for playback.
func (s *Session) currentPlayID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playID
}

// forwardable reports whether relayed media of the given kind should reach this player,
// and the stream id to stamp on it.
func (s *Session) forwardable(audio, video bool) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || !s.playing || s.paused {
		return 0, false
	}
	if audio && !s.receiveAudio || video && !s.receiveVideo {
		return 0, false
	}
	return s.playID, true
}
