// If you are AI: This file parses an HEVCDecoderConfigurationRecord and its SPS
// to recover profile, level and picture dimensions.

package codec

import (
	"encoding/binary"
	"fmt"
)

const (
	hevcRecordSize = 23
	hevcNalSPS     = 33
)

// ParseHEVCConfig parses an FLV HEVC sequence header tag body.
func ParseHEVCConfig(payload []byte) (VideoInfo, error) {
	info := VideoInfo{Codec: VideoCodecHEVC}
	if len(payload) < 5+hevcRecordSize {
		return info, fmt.Errorf("hevc config: %w", ErrTruncated)
	}
	rec := payload[5:]
	if rec[0] != 1 {
		return info, fmt.Errorf("hevc configurationVersion %d: %w", rec[0], ErrUnsupported)
	}

	info.ProfileIdc = rec[1] & 0x1f
	info.LevelIdc = rec[12]
	info.ChromaFormat = uint32(rec[16] & 0x03)
	info.BitDepthLuma = rec[17]&0x07 + 8
	info.BitDepthChroma = rec[18]&0x07 + 8
	info.ProfileName = HEVCProfileName(info.ProfileIdc)
	info.Level = float64(info.LevelIdc) / 30

	numArrays := int(rec[22])
	p := rec[hevcRecordSize:]
	for i := 0; i < numArrays; i++ {
		if len(p) < 3 {
			break
		}
		nalType := p[0] & 0x3f
		count := int(binary.BigEndian.Uint16(p[1:3]))
		p = p[3:]
		for j := 0; j < count; j++ {
			if len(p) < 2 {
				break
			}
			size := int(binary.BigEndian.Uint16(p))
			if len(p) < 2+size {
				return info, fmt.Errorf("hevc nal array: %w", ErrTruncated)
			}
			nal := p[2 : 2+size]
			p = p[2+size:]
			if nalType != hevcNalSPS {
				continue
			}
			sps, err := parseHEVCSPS(nal)
			if err != nil {
				return info, err
			}
			info.ChromaFormat = sps.chromaFormat
			info.Width = sps.width - (sps.confLeft + sps.confRight)
			info.Height = sps.height - (sps.confTop + sps.confBottom)
			return info, nil
		}
	}
	return info, fmt.Errorf("hevc config without sps: %w", ErrUnsupported)
}

// hevcSPS holds the SPS fields needed to derive the picture size.
type hevcSPS struct {
	chromaFormat uint32
	width        uint32
	height       uint32
	confLeft     uint32
	confRight    uint32
	confTop      uint32
	confBottom   uint32
}

// parseHEVCSPS parses the fields of an SPS NAL unit up to the conformance window.
func parseHEVCSPS(nal []byte) (hevcSPS, error) {
	var sps hevcSPS
	if len(nal) < 3 {
		return sps, fmt.Errorf("hevc sps: %w", ErrTruncated)
	}
	r := NewBitReader(unescapeRBSP(nal[2:]))

	r.Skip(4) // sps_video_parameter_set_id
	maxSubLayers := int(r.Read(3))
	r.Skip(1) // sps_temporal_id_nesting_flag
	skipProfileTierLevel(r, maxSubLayers)

	r.ReadGolomb() // sps_seq_parameter_set_id
	sps.chromaFormat = r.ReadGolomb()
	if sps.chromaFormat == 3 {
		r.Skip(1) // separate_colour_plane_flag
	}
	sps.width = r.ReadGolomb()
	sps.height = r.ReadGolomb()
	if r.ReadBool() {
		horiz, vert := uint32(1), uint32(1)
		if sps.chromaFormat < 3 {
			horiz = 2
		}
		if sps.chromaFormat < 2 {
			vert = 2
		}
		sps.confLeft = r.ReadGolomb() * horiz
		sps.confRight = r.ReadGolomb() * horiz
		sps.confTop = r.ReadGolomb() * vert
		sps.confBottom = r.ReadGolomb() * vert
	}
	if err := r.Err(); err != nil {
		return sps, fmt.Errorf("hevc sps: %w", err)
	}
	return sps, nil
}

// skipProfileTierLevel consumes profile_tier_level(1, maxSubLayersMinus1).
func skipProfileTierLevel(r *BitReader, maxSubLayers int) {
	r.Skip(2 + 1 + 5) // profile space, tier, profile idc
	r.Skip(32)        // compatibility flags
	r.Skip(4)         // progressive, interlaced, non-packed, frame-only
	r.Skip(32 + 12)   // reserved constraint bits
	r.Skip(8)         // general_level_idc

	profilePresent := make([]bool, maxSubLayers)
	levelPresent := make([]bool, maxSubLayers)
	for i := 0; i < maxSubLayers; i++ {
		profilePresent[i] = r.ReadBool()
		levelPresent[i] = r.ReadBool()
	}
	if maxSubLayers > 0 {
		for i := maxSubLayers; i < 8; i++ {
			r.Skip(2)
		}
	}
	for i := 0; i < maxSubLayers; i++ {
		if profilePresent[i] {
			r.Skip(88)
		}
		if levelPresent[i] {
			r.Skip(8)
		}
	}
}

// unescapeRBSP removes emulation-prevention bytes (0x000003 -> 0x0000).
func unescapeRBSP(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if i+2 < len(b) && b[i] == 0 && b[i+1] == 0 && b[i+2] == 3 {
			out = append(out, 0, 0)
			i += 2
			continue
		}
		out = append(out, b[i])
	}
	return out
}

// HEVCProfileName returns the display name of an H.265 general_profile_idc.
func HEVCProfileName(idc uint8) string {
	switch idc {
	case 1:
		return "Main"
	case 2:
		return "Main 10"
	case 3:
		return "Main Still Picture"
	default:
		return ""
	}
}
