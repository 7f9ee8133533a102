// If you are AI: This file exposes a publisher's codec details for the stream listing API.

package rtmp

import "relaycast/internal/core/codec"

// AudioInfo describes a published audio track.
type AudioInfo struct {
	Codec      string `json:"codec"`
	Profile    string `json:"profile,omitempty"`
	SampleRate uint32 `json:"samplerate"`
	Channels   uint8  `json:"channels"`
}

// VideoInfo describes a published video track.
type VideoInfo struct {
	Codec   string  `json:"codec"`
	Width   uint32  `json:"width"`
	Height  uint32  `json:"height"`
	Profile string  `json:"profile,omitempty"`
	Level   float64 `json:"level,omitempty"`
}

// MediaInfo is the codec snapshot of a publisher. Tracks not seen yet are nil.
type MediaInfo struct {
	Audio *AudioInfo `json:"audio,omitempty"`
	Video *VideoInfo `json:"video,omitempty"`
}

// Media returns what the publisher has announced so far.
func (s *Session) Media() MediaInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	var info MediaInfo
	c := &s.media
	if c.audioSeen {
		a := &AudioInfo{
			Codec:      codec.AudioCodecName(c.audio.Codec),
			SampleRate: c.audio.SampleRate,
			Channels:   c.audio.Channels,
		}
		if c.aac != nil {
			a.Profile = c.aac.ProfileName
			a.SampleRate = c.aac.SampleRate
			a.Channels = c.aac.Channels
		}
		info.Audio = a
	}
	if c.videoCodec != 0 {
		v := &VideoInfo{Codec: codec.VideoCodecName(c.videoCodec)}
		if c.video != nil {
			v.Width = c.video.Width
			v.Height = c.video.Height
			v.Profile = c.video.ProfileName
			v.Level = c.video.Level
		}
		info.Video = v
	}
	return info
}
