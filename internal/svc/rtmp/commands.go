// If you are AI: This file handles connection-level RTMP commands and builds
// the _result, onStatus and user control replies.

package rtmp

import (
	"strings"

	"relaycast/internal/core/protocol/amf0"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// Server identity announced in the connect result.
const (
	fmsVersion   = "FMS/3,0,1,123"
	capabilities = 31
)

// onConnect records the application, sends the protocol settings and starts pinging.
func (s *Session) onConnect(cmd *amf0.Command) error {
	s.app = strings.Trim(cmd.ObjectString("app"), "/")
	if enc, ok := cmd.Object["objectEncoding"].(float64); ok {
		s.objectEncoding = enc
	}

	opts := s.srv.opts
	if err := s.out.WriteMessage(rtmpprotocol.WindowAckSizeMessage(opts.WindowAckSize)); err != nil {
		return err
	}
	if err := s.out.WriteMessage(rtmpprotocol.SetPeerBandwidthMessage(opts.PeerBandwidth, rtmpprotocol.LimitDynamic)); err != nil {
		return err
	}
	if err := s.out.WriteMessage(rtmpprotocol.SetChunkSizeMessage(opts.ChunkSize)); err != nil {
		return err
	}
	s.out.SetChunkSize(opts.ChunkSize)
	s.startPing()

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	s.log.Info("connected", "app", s.app)

	return s.sendResult(cmd.TransactionID,
		amf0.Object{
			"fmsVer":       fmsVersion,
			"capabilities": float64(capabilities),
		},
		amf0.Object{
			"level":          "status",
			"code":           "NetConnection.Connect.Success",
			"description":    "Connection succeeded.",
			"objectEncoding": s.objectEncoding,
		})
}

// onCreateStream allocates the next message stream id.
func (s *Session) onCreateStream(cmd *amf0.Command) error {
	s.streamCount++
	return s.sendResult(cmd.TransactionID, nil, float64(s.streamCount))
}

// onReceive toggles audio or video forwarding for a player.
func (s *Session) onReceive(cmd *amf0.Command, audio bool) {
	on, ok := cmd.BoolArg(0)
	if !ok {
		return
	}
	s.mu.Lock()
	if audio {
		s.receiveAudio = on
	} else {
		s.receiveVideo = on
	}
	s.mu.Unlock()
}

// onDeleteStream ends whichever role uses stream id.
func (s *Session) onDeleteStream(id uint32) error {
	s.mu.Lock()
	playing := (s.playing || s.idling) && s.playID == id
	publishing := s.publishing && s.publishID == id
	s.mu.Unlock()

	if playing {
		s.stopPlay()
	}
	if publishing {
		s.stopPublish(true)
	}
	return nil
}

// sendResult replies "_result" for a transaction on the connection stream.
func (s *Session) sendResult(txID float64, vals ...amf0.Value) error {
	body, err := amf0.EncodeValues(append(amf0.Array{"_result", txID}, vals...)...)
	if err != nil {
		return err
	}
	return s.out.WriteMessage(rtmpprotocol.NewMessage(rtmpprotocol.ChannelInvoke, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body))
}

// sendStatus sends onStatus on stream id.
func (s *Session) sendStatus(streamID uint32, level, code, description string) error {
	body, err := amf0.EncodeValues("onStatus", float64(0), nil, amf0.Object{
		"level":       level,
		"code":        code,
		"description": description,
	})
	if err != nil {
		return err
	}
	return s.out.WriteMessage(rtmpprotocol.NewMessage(rtmpprotocol.ChannelInvoke, rtmpprotocol.MessageTypeCommandAMF0, streamID, 0, body))
}

// sendStreamEvent sends a user control event carrying a stream id.
func (s *Session) sendStreamEvent(event uint16, streamID uint32) error {
	return s.out.WriteMessage(rtmpprotocol.UserControlMessage(event, streamID))
}

// sampleAccessMessage builds the |RtmpSampleAccess data message for stream id.
func sampleAccessMessage(streamID uint32) *rtmpprotocol.Message {
	body, _ := amf0.EncodeValues("|RtmpSampleAccess", false, false)
	return rtmpprotocol.NewMessage(rtmpprotocol.ChannelData, rtmpprotocol.MessageTypeDataAMF0, streamID, 0, body)
}

// splitStreamName separates "name?k=v" into the name and its query.
func splitStreamName(raw string) (string, string) {
	name, query, _ := strings.Cut(raw, "?")
	return strings.Trim(name, "/"), query
}
