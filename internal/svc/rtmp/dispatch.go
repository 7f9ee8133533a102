// If you are AI: This file routes reassembled messages by type id: protocol control,
// user control, commands, data and media.

package rtmp

import (
	"relaycast/internal/core/protocol/amf0"
	rtmpprotocol "relaycast/internal/core/protocol/rtmp"
)

// handleMessage is the chunk parser callback. Malformed messages are logged and skipped;
// only transport errors are returned.
func (s *Session) handleMessage(m *rtmpprotocol.Message) error {
	switch m.TypeID {
	case rtmpprotocol.MessageTypeSetChunkSize:
		size, err := rtmpprotocol.ParseSetChunkSize(m.Payload)
		if err != nil {
			s.log.Debug("bad set chunk size", "error", err)
			return nil
		}
		s.parser.SetChunkSize(size)

	case rtmpprotocol.MessageTypeAbortMessage:
		if csid, err := rtmpprotocol.ParseUint32(m.Payload); err == nil {
			s.parser.Abort(csid)
		}

	case rtmpprotocol.MessageTypeAck:
		// Peer acknowledgements need no action.

	case rtmpprotocol.MessageTypeWinAckSize:
		if size, err := rtmpprotocol.ParseUint32(m.Payload); err == nil {
			s.ack.SetWindow(size)
		}

	case rtmpprotocol.MessageTypeSetPeerBandwidth:
		if size, err := rtmpprotocol.ParseUint32(m.Payload); err == nil && len(m.Payload) >= 5 {
			s.peerBandwidth = size
			s.limitType = m.Payload[4]
		}

	case rtmpprotocol.MessageTypeUserCtrl:
		return s.handleUserControl(m)

	case rtmpprotocol.MessageTypeAudio:
		s.handleAudio(m)

	case rtmpprotocol.MessageTypeVideo:
		s.handleVideo(m)

	case rtmpprotocol.MessageTypeDataAMF3:
		if len(m.Payload) > 0 {
			m.Payload = m.Payload[1:]
			s.handleData(m)
		}

	case rtmpprotocol.MessageTypeDataAMF0:
		s.handleData(m)

	case rtmpprotocol.MessageTypeCommandAMF3:
		if len(m.Payload) > 0 {
			return s.handleCommand(m.Payload[1:], m.StreamID)
		}

	case rtmpprotocol.MessageTypeCommandAMF0:
		return s.handleCommand(m.Payload, m.StreamID)

	default:
		s.log.Debug("ignored message", "type", m.TypeID, "length", len(m.Payload))
	}
	return nil
}

// handleUserControl answers ping requests; other events are informational.
func (s *Session) handleUserControl(m *rtmpprotocol.Message) error {
	event, value, err := rtmpprotocol.ParseUserControl(m.Payload)
	if err != nil {
		s.log.Debug("bad user control", "error", err)
		return nil
	}
	if event == rtmpprotocol.ControlPingRequest {
		return s.out.WriteMessage(rtmpprotocol.UserControlMessage(rtmpprotocol.ControlPingResponse, value))
	}
	return nil
}

// handleCommand decodes an AMF0 command and runs it. streamID is the message stream id it arrived on.
func (s *Session) handleCommand(body []byte, streamID uint32) error {
	cmd, err := amf0.DecodeCommand(body)
	if err != nil {
		s.log.Debug("bad command", "error", err, "length", len(body))
		return nil
	}
	s.log.Debug("command", "name", cmd.Name, "stream", streamID)

	switch cmd.Name {
	case "connect":
		return s.onConnect(cmd)
	case "createStream":
		return s.onCreateStream(cmd)
	case "releaseStream", "FCPublish":
		return s.sendResult(cmd.TransactionID, nil)
	case "publish":
		return s.onPublish(cmd, streamID)
	case "play":
		return s.onPlay(cmd, streamID)
	case "pause":
		return s.onPause(cmd)
	case "deleteStream":
		id, _ := cmd.NumberArg(0)
		return s.onDeleteStream(uint32(id))
	case "closeStream":
		return s.onDeleteStream(streamID)
	case "receiveAudio":
		s.onReceive(cmd, true)
	case "receiveVideo":
		s.onReceive(cmd, false)
	case "FCUnpublish", "getStreamLength":
	default:
		s.log.Debug("unhandled command", "name", cmd.Name)
	}
	return nil
}

// handleData caches and relays @setDataFrame metadata from a publisher.
func (s *Session) handleData(m *rtmpprotocol.Message) {
	name, _, err := amf0.DecodeData(m.Payload)
	if err != nil {
		s.log.Debug("bad data message", "error", err)
		return
	}
	var meta []byte
	switch name {
	case "@setDataFrame":
		meta, err = amf0.StripFirstString(m.Payload)
		if err != nil {
			return
		}
	case "onMetaData":
		meta = m.Payload
	default:
		return
	}
	s.relayMetadata(meta)
}
