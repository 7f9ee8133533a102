// If you are AI: This file builds the ffmpeg HLS ladder for one published path
// and manages its output directory and master playlist.

package transcode

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"relaycast/internal/config"
	"relaycast/internal/core/bus"
	"relaycast/internal/ffx"
)

const (
	playlistName = "index.m3u8"
	masterName   = "master.m3u8"
	// audioBandwidth is added to each video bitrate in the master playlist.
	audioBandwidth = 130000
)

// Pipeline is the ffmpeg invocation for one path plus its output layout.
type Pipeline struct {
	Dir        string
	Renditions []config.RenditionConfig
	Command    ffx.Command
}

// NewPipeline pulls rtmp://127.0.0.1:<port>/app/name and writes one HLS
// playlist per rendition under mediaRoot/app/name/<rendition>/index.m3u8.
func NewPipeline(cfg config.TranscodeConfig, rtmpPort int, key bus.StreamKey) *Pipeline {
	dir := filepath.Join(cfg.MediaRoot, key.App, key.Name)
	p := &Pipeline{
		Dir:        dir,
		Renditions: cfg.Renditions,
		Command: ffx.Command{
			Global: []string{"-y"},
			Input: ffx.Input{
				URL:    fmt.Sprintf("rtmp://127.0.0.1:%d%s", rtmpPort, key.String()),
				Format: "flv",
			},
		},
	}
	for _, r := range cfg.Renditions {
		p.Command.Outputs = append(p.Command.Outputs, ffx.Output{
			Path:         filepath.Join(dir, r.Name, playlistName),
			Format:       "hls",
			AudioCodec:   "aac",
			VideoCodec:   "libx264",
			Width:        r.Width,
			Height:       r.Height,
			VideoBitrate: r.VideoBitrate,
			Options: []string{
				"-threads", "4",
				"-profile:v", "high",
				"-level", "4.1",
				"-g", "60",
				"-start_number", "0",
				"-hls_time", strconv.Itoa(cfg.HLSTime),
				"-hls_list_size", strconv.Itoa(cfg.HLSListSize),
				"-hls_flags", "delete_segments",
				"-max_muxing_queue_size", "9999",
			},
		})
	}
	return p
}

// Prepare creates the rendition directories and writes the master playlist.
func (p *Pipeline) Prepare() error {
	for _, r := range p.Renditions {
		if err := os.MkdirAll(filepath.Join(p.Dir, r.Name), 0o755); err != nil {
			return fmt.Errorf("create %s output: %w", r.Name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(p.Dir, masterName), []byte(p.MasterPlaylist()), 0o644); err != nil {
		return fmt.Errorf("write master playlist: %w", err)
	}
	return nil
}

// MasterPlaylist lists every rendition ordered by ascending bandwidth.
func (p *Pipeline) MasterPlaylist() string {
	ladder := append([]config.RenditionConfig{}, p.Renditions...)
	sort.SliceStable(ladder, func(i, j int) bool {
		return parseBitrate(ladder[i].VideoBitrate) < parseBitrate(ladder[j].VideoBitrate)
	})

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, r := range ladder {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,NAME=%s\n",
			parseBitrate(r.VideoBitrate)+audioBandwidth, r.Width, r.Height, r.Name)
		fmt.Fprintf(&b, "%s/%s\n", r.Name, playlistName)
	}
	return b.String()
}

// Cleanup removes the path's output directory.
func (p *Pipeline) Cleanup() error {
	return os.RemoveAll(p.Dir)
}

// parseBitrate reads "800k", "2.5M" or a plain number of bits per second.
// Unparseable values count as zero.
func parseBitrate(s string) int {
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult, s = 1e3, s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		mult, s = 1e6, s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v * mult)
}
