// If you are AI: This file handles the publish side of a session: claiming a path,
// waking idle players and unpublishing with notifications.

package rtmp

import (
	"fmt"
	"net/url"

	"relaycast/internal/core/bus"
	"relaycast/internal/core/protocol/amf0"
)

// onPublish claims the requested path. Rejections are status replies, never errors.
func (s *Session) onPublish(cmd *amf0.Command, streamID uint32) error {
	name, query := splitStreamName(cmd.StringArg(0))
	if name == "" || s.app == "" {
		s.log.Debug("publish without stream name")
		return nil
	}
	key := bus.NewStreamKey(s.app, name)
	args, _ := url.ParseQuery(query)

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	if s.publishing {
		s.mu.Unlock()
		return s.sendStatus(streamID, "error", "NetStream.Publish.BadConnection", "Connection already publishing")
	}
	s.publishing = true
	s.publishKey = key
	s.publishID = streamID
	s.publishArgs = args
	s.media = mediaCache{}
	s.mu.Unlock()

	tap, err := s.srv.registry.ClaimPublisher(key, s.id)
	if err != nil {
		s.mu.Lock()
		s.publishing = false
		s.mu.Unlock()
		s.log.Info("publish rejected", "path", key.String(), "error", err)
		return s.sendStatus(streamID, "error", "NetStream.Publish.BadName", "Stream already publishing")
	}
	s.mu.Lock()
	s.tap = tap
	s.mu.Unlock()

	s.log.Info("publish started", "path", key.String())
	if err := s.sendStatus(streamID, "status", "NetStream.Publish.Start", fmt.Sprintf("%s is now published.", key)); err != nil {
		return err
	}

	s.wakeIdlers(key)
	s.srv.events.Emit(bus.Event{Kind: bus.EventPublished, SessionID: s.id, Key: key, Args: args})
	return nil
}

// wakeIdlers starts playback for every session waiting on key. A player this
// publisher could not take, because it is already unpublishing, goes back to waiting.
func (s *Session) wakeIdlers(key bus.StreamKey) {
	for _, player := range s.srv.registry.TakeIdlers(key) {
		if player == s {
			s.stopPlay()
			continue
		}
		if player.startPlayback(s) || !player.isIdling() {
			continue
		}
		if player.joinOrIdle(key) {
			player.stopPlay()
		}
	}
}

// stopPublish releases the path and disconnects every player with an unpublish notice.
// notify also confirms the unpublish to this session.
func (s *Session) stopPublish(notify bool) {
	s.mu.Lock()
	if !s.publishing {
		s.mu.Unlock()
		return
	}
	key, id, args := s.publishKey, s.publishID, s.publishArgs
	s.mu.Unlock()

	// Release first so new players go idle instead of joining a dying publisher.
	s.srv.registry.ReleasePublisher(key, s.id)

	s.mu.Lock()
	s.publishing = false
	s.tap = nil
	players := s.players
	s.players = make(map[string]*Session)
	s.mu.Unlock()

	if notify {
		s.sendStatus(id, "status", "NetStream.Unpublish.Success", fmt.Sprintf("%s is now unpublished.", key))
	}
	for _, p := range players {
		p.sendStatus(p.currentPlayID(), "status", "NetStream.Play.UnpublishNotify", "stream is now unpublished.")
		p.Close()
	}

	s.log.Info("publish stopped", "path", key.String(), "players", len(players))
	s.srv.events.Emit(bus.Event{Kind: bus.EventUnpublished, SessionID: s.id, Key: key, Args: args})
}

// PublishPath returns the path this session publishes and whether it is publishing.
func (s *Session) PublishPath() (bus.StreamKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishKey, s.publishing
}
