// If you are AI: This file parses the first SPS of an AVCDecoderConfigurationRecord
// to recover profile, level and picture dimensions.

package codec

import (
	"fmt"
)

// FLV video codec ids.
const (
	VideoCodecAVC  = 7
	VideoCodecHEVC = 12
)

// VideoInfo is the snapshot extracted from a video sequence header.
type VideoInfo struct {
	Codec          uint8
	Width          uint32
	Height         uint32
	ProfileIdc     uint8
	LevelIdc       uint8
	ProfileName    string
	Level          float64
	ChromaFormat   uint32
	BitDepthLuma   uint8
	BitDepthChroma uint8
}

// ParseVideoConfig parses an FLV video sequence header tag body, choosing
// the parser from the codec id in the low nibble of the first byte.
func ParseVideoConfig(payload []byte) (VideoInfo, error) {
	if len(payload) < 1 {
		return VideoInfo{}, fmt.Errorf("video tag: %w", ErrTruncated)
	}
	switch payload[0] & 0x0f {
	case VideoCodecAVC:
		return ParseAVCConfig(payload)
	case VideoCodecHEVC:
		return ParseHEVCConfig(payload)
	default:
		return VideoInfo{}, fmt.Errorf("video codec %d: %w", payload[0]&0x0f, ErrUnsupported)
	}
}

// ParseAVCConfig parses an FLV AVC sequence header tag body.
// The first 48 bits (FLV video header, packet type, composition time and
// configurationVersion) are skipped.
func ParseAVCConfig(payload []byte) (VideoInfo, error) {
	info := VideoInfo{Codec: VideoCodecAVC, ChromaFormat: 1, BitDepthLuma: 8, BitDepthChroma: 8}
	r := NewBitReader(payload)
	r.Skip(48)

	info.ProfileIdc = r.ReadByte()
	r.Skip(8) // compatibility
	info.LevelIdc = r.ReadByte()
	r.Skip(8) // lengthSizeMinusOne
	nbSPS := r.ReadByte() & 0x1f
	if err := r.Err(); err != nil {
		return info, fmt.Errorf("avc config: %w", err)
	}
	if nbSPS == 0 {
		return info, fmt.Errorf("avc config without sps: %w", ErrUnsupported)
	}
	r.Skip(16) // sps length
	if nalType := r.ReadByte(); nalType != 0x67 {
		return info, fmt.Errorf("avc sps nal type 0x%02x: %w", nalType, ErrUnsupported)
	}

	profileIdc := r.ReadByte()
	r.Skip(8) // constraint flags
	r.Skip(8) // level_idc
	r.ReadGolomb()

	if isHighProfile(profileIdc) {
		info.ChromaFormat = r.ReadGolomb()
		if info.ChromaFormat == 3 {
			r.Skip(1) // separate_colour_plane_flag
		}
		info.BitDepthLuma = uint8(r.ReadGolomb()) + 8
		info.BitDepthChroma = uint8(r.ReadGolomb()) + 8
		r.Skip(1) // qpprime_y_zero_transform_bypass_flag
		if r.ReadBool() {
			lists := 8
			if info.ChromaFormat == 3 {
				lists = 12
			}
			for i := 0; i < lists; i++ {
				if r.ReadBool() {
					skipScalingList(r, i)
				}
			}
		}
	}

	r.ReadGolomb() // log2_max_frame_num_minus4
	switch r.ReadGolomb() {
	case 0:
		r.ReadGolomb()
	case 1:
		r.Skip(1)
		r.ReadSignedGolomb()
		r.ReadSignedGolomb()
		numRefFrames := r.ReadGolomb()
		for n := uint32(0); n < numRefFrames && r.Err() == nil; n++ {
			r.ReadSignedGolomb()
		}
	}
	r.ReadGolomb() // max_num_ref_frames
	r.Skip(1)      // gaps_in_frame_num_value_allowed_flag
	widthMbs := r.ReadGolomb()
	heightMaps := r.ReadGolomb()
	frameMbsOnly := r.Read(1)
	if frameMbsOnly == 0 {
		r.Skip(1) // mb_adaptive_frame_field_flag
	}
	r.Skip(1) // direct_8x8_inference_flag

	var cropLeft, cropRight, cropTop, cropBottom uint32
	if r.ReadBool() {
		cropLeft = r.ReadGolomb()
		cropRight = r.ReadGolomb()
		cropTop = r.ReadGolomb()
		cropBottom = r.ReadGolomb()
	}
	if err := r.Err(); err != nil {
		return info, fmt.Errorf("avc sps: %w", err)
	}

	info.Level = float64(info.LevelIdc) / 10
	info.ProfileName = AVCProfileName(info.ProfileIdc)
	info.Width = (widthMbs+1)*16 - (cropLeft+cropRight)*2
	info.Height = (2-frameMbsOnly)*(heightMaps+1)*16 - (cropTop+cropBottom)*2
	return info, nil
}

// isHighProfile reports whether the SPS carries chroma format and bit depth fields.
func isHighProfile(idc uint8) bool {
	switch idc {
	case 100, 110, 122, 244, 44, 83, 86, 118:
		return true
	}
	return false
}

// skipScalingList consumes one scaling_list() of 16 or 64 deltas.
func skipScalingList(r *BitReader, idx int) {
	size := 16
	if idx >= 6 {
		size = 64
	}
	last, next := int32(8), int32(8)
	for j := 0; j < size && r.Err() == nil; j++ {
		if next != 0 {
			delta := r.ReadSignedGolomb()
			next = (last + delta + 256) % 256
		}
		if next != 0 {
			last = next
		}
	}
}

// AVCProfileName returns the display name of an H.264 profile_idc.
func AVCProfileName(idc uint8) string {
	switch idc {
	case 66:
		return "Baseline"
	case 77:
		return "Main"
	case 100:
		return "High"
	default:
		return ""
	}
}
