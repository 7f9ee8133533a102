// If you are AI: This file contains unit tests for ffmpeg discovery and argument building.

package ffx

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := Locate(exe)
	if err != nil || got != exe {
		t.Errorf("Expected %s, got %s (%v)", exe, got, err)
	}
	if !IsAvailable(exe) {
		t.Error("IsAvailable should accept an executable file")
	}

	for _, p := range []string{plain, dir, filepath.Join(dir, "missing")} {
		if _, err := Locate(p); !errors.Is(err, ErrFFmpegNotAvailable) {
			t.Errorf("%s: expected ErrFFmpegNotAvailable, got %v", p, err)
		}
	}
}

func TestLocateSearchesPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("PATH", dir)

	got, err := Locate("")
	if err != nil || got != exe {
		t.Errorf("Expected %s, got %s (%v)", exe, got, err)
	}
}

func TestCommandArgs(t *testing.T) {
	cmd := Command{
		Global: []string{"-y"},
		Input:  Input{URL: "rtmp://127.0.0.1:1935/live/cam"},
		Outputs: []Output{{
			Path:         "/media/live/cam/low/index.m3u8",
			Format:       "hls",
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			Width:        640,
			Height:       360,
			VideoBitrate: "800k",
			Options:      []string{"-hls_time", "2"},
		}},
	}
	want := []string{
		"-y", "-i", "rtmp://127.0.0.1:1935/live/cam",
		"-c:a", "aac", "-c:v", "libx264", "-s", "640x360", "-b:v", "800k",
		"-hls_time", "2", "-f", "hls", "/media/live/cam/low/index.m3u8",
	}
	if got := cmd.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestInputFormat(t *testing.T) {
	in := Input{URL: "pipe:0", Format: "flv", Options: []string{"-re"}}
	want := []string{"-f", "flv", "-re", "-i", "pipe:0"}
	if got := in.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
