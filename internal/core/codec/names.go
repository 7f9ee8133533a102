// If you are AI: This file holds the FLV codec id and sound rate lookup tables.

package codec

var audioCodecNames = [...]string{
	"", "ADPCM", "MP3", "LinearLE", "Nellymoser16", "Nellymoser8", "Nellymoser",
	"G711A", "G711U", "", "AAC", "Speex", "", "OPUS", "MP3-8K", "DeviceSpecific", "Uncompressed",
}

var videoCodecNames = [...]string{
	"", "Jpeg", "Sorenson-H263", "ScreenVideo", "On2-VP6", "On2-VP6-Alpha", "ScreenVideo2",
	"H264", "", "", "", "", "H265",
}

var soundRates = [4]uint32{5512, 11025, 22050, 44100}

// FLV audio codec ids with special handling.
const (
	AudioCodecNellymoser16 = 4
	AudioCodecNellymoser8  = 5
	AudioCodecAAC          = 10
	AudioCodecSpeex        = 11
	AudioCodecOpus         = 13
	AudioCodecMP38K        = 14
)

// AudioCodecName returns the display name of an FLV SoundFormat.
func AudioCodecName(id uint8) string {
	if int(id) < len(audioCodecNames) {
		return audioCodecNames[id]
	}
	return ""
}

// VideoCodecName returns the display name of an FLV CodecID.
func VideoCodecName(id uint8) string {
	if int(id) < len(videoCodecNames) {
		return videoCodecNames[id]
	}
	return ""
}

// AudioHeader is the information carried by the first byte of an FLV audio tag.
type AudioHeader struct {
	Codec      uint8
	SampleRate uint32
	Channels   uint8
}

// ParseAudioHeader decodes the SoundFormat, SoundRate and SoundType bits.
// Some codecs ignore the rate bits and always run at a fixed rate.
func ParseAudioHeader(b byte) AudioHeader {
	h := AudioHeader{
		Codec:      b >> 4 & 0x0f,
		SampleRate: soundRates[b>>2&0x03],
		Channels:   b&0x01 + 1,
	}
	switch h.Codec {
	case AudioCodecNellymoser16, AudioCodecSpeex:
		h.SampleRate = 16000
	case AudioCodecNellymoser8, AudioCodecMP38K:
		h.SampleRate = 8000
	}
	return h
}

// IsAACSequenceHeader reports whether an audio tag body carries an AudioSpecificConfig.
func IsAACSequenceHeader(payload []byte) bool {
	if len(payload) < 2 || payload[1] != 0 {
		return false
	}
	codec := payload[0] >> 4 & 0x0f
	return codec == AudioCodecAAC || codec == AudioCodecOpus
}

// IsVideoSequenceHeader reports whether a video tag body is an AVC/HEVC keyframe sequence header.
func IsVideoSequenceHeader(payload []byte) bool {
	if len(payload) < 2 || payload[1] != 0 {
		return false
	}
	codec := payload[0] & 0x0f
	return payload[0]>>4 == 1 && (codec == VideoCodecAVC || codec == VideoCodecHEVC)
}
