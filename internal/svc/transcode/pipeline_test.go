// If you are AI: This file contains unit tests for the HLS pipeline layout and arguments.

package transcode

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"relaycast/internal/config"
	"relaycast/internal/core/bus"
)

func TestPipelineArgs(t *testing.T) {
	cfg := config.Default().Transcode
	cfg.MediaRoot = "/srv/media"
	p := NewPipeline(cfg, 1935, bus.NewStreamKey("live", "cam"))

	args := p.Command.Args()
	if i := slices.Index(args, "-i"); i < 0 || args[i+1] != "rtmp://127.0.0.1:1935/live/cam" {
		t.Errorf("Expected rtmp input, got %v", args)
	}
	if len(p.Command.Outputs) != 3 {
		t.Fatalf("Expected 3 outputs, got %d", len(p.Command.Outputs))
	}
	want := filepath.Join("/srv/media", "live", "cam", "high", "index.m3u8")
	if p.Command.Outputs[0].Path != want {
		t.Errorf("Expected %s, got %s", want, p.Command.Outputs[0].Path)
	}
	joined := strings.Join(args, " ")
	for _, frag := range []string{"-s 1280x720 -b:v 2500k", "-hls_time 2", "-hls_list_size 5", "-hls_flags delete_segments", "-f hls"} {
		if !strings.Contains(joined, frag) {
			t.Errorf("Expected %q in %s", frag, joined)
		}
	}
}

func TestMasterPlaylistOrder(t *testing.T) {
	p := NewPipeline(config.Default().Transcode, 1935, bus.NewStreamKey("live", "cam"))
	got := p.MasterPlaylist()
	want := "#EXTM3U\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=930000,RESOLUTION=640x360,NAME=low\nlow/index.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=1630000,RESOLUTION=854x480,NAME=middle\nmiddle/index.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=2630000,RESOLUTION=1280x720,NAME=high\nhigh/index.m3u8\n"
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestParseBitrate(t *testing.T) {
	tests := map[string]int{"800k": 800000, "2.5M": 2500000, "64000": 64000, "bad": 0, "": 0}
	for in, want := range tests {
		if got := parseBitrate(in); got != want {
			t.Errorf("%q: expected %d, got %d", in, want, got)
		}
	}
}
