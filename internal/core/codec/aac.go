// If you are AI: This file parses the AAC AudioSpecificConfig carried in an AAC sequence header.

package codec

import (
	"fmt"
)

var aacSampleRates = [16]uint32{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350, 0, 0, 0,
}

var aacChannels = [8]uint8{0, 1, 2, 3, 4, 5, 6, 8}

// AACInfo describes an AudioSpecificConfig.
type AACInfo struct {
	ObjectType      uint8
	ExtObjectType   uint8
	SampleRateIndex uint8
	SampleRate      uint32
	ChannelConfig   uint8
	Channels        uint8
	SBR             bool
	PS              bool
	ProfileName     string
}

// ParseAudioTag parses the AudioSpecificConfig inside an FLV AAC sequence header tag body.
func ParseAudioTag(payload []byte) (AACInfo, error) {
	if len(payload) < 2 {
		return AACInfo{}, fmt.Errorf("aac tag: %w", ErrTruncated)
	}
	return ParseAACConfig(payload[2:])
}

// ParseAACConfig parses a raw AudioSpecificConfig.
// Object types 5 (SBR) and 29 (PS) carry an extension sample rate followed by the
// core object type, which then decides the profile name.
func ParseAACConfig(asc []byte) (AACInfo, error) {
	var info AACInfo
	r := NewBitReader(asc)

	info.ObjectType = readAudioObjectType(r)
	info.SampleRateIndex, info.SampleRate = readSampleRate(r)
	info.ChannelConfig = uint8(r.Read(4))
	if int(info.ChannelConfig) < len(aacChannels) {
		info.Channels = aacChannels[info.ChannelConfig]
	}

	if info.ObjectType == 5 || info.ObjectType == 29 {
		info.PS = info.ObjectType == 29
		info.SBR = true
		info.ExtObjectType = 5
		info.SampleRateIndex, info.SampleRate = readSampleRate(r)
		info.ObjectType = readAudioObjectType(r)
	}

	if err := r.Err(); err != nil {
		return AACInfo{}, fmt.Errorf("aac config: %w", err)
	}
	info.ProfileName = AACProfileName(info)
	return info, nil
}

// readAudioObjectType reads a 5-bit object type with the 6-bit escape for 31.
func readAudioObjectType(r *BitReader) uint8 {
	t := uint8(r.Read(5))
	if t == 31 {
		t = 32 + uint8(r.Read(6))
	}
	return t
}

// readSampleRate reads a sample-rate index, or an explicit 24-bit rate after index 15.
func readSampleRate(r *BitReader) (uint8, uint32) {
	idx := uint8(r.Read(4))
	if idx == 0x0f {
		return idx, r.Read(24)
	}
	return idx, aacSampleRates[idx]
}

// AACProfileName maps the object type and SBR/PS flags to a display name.
func AACProfileName(info AACInfo) string {
	switch info.ObjectType {
	case 1:
		return "Main"
	case 2:
		if info.PS {
			return "HEv2"
		}
		if info.SBR {
			return "HE"
		}
		return "LC"
	case 3:
		return "SSR"
	case 4:
		return "LTP"
	case 5:
		return "SBR"
	default:
		return ""
	}
}
