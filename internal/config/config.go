// If you are AI: This file defines the configuration structure for relaycast.
// It uses strict YAML decoding, explicit defaults and environment overrides.

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete server configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RTMP      RTMPConfig      `yaml:"rtmp"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig defines listener ports.
type ServerConfig struct {
	RTMPPort int `yaml:"rtmp_port"` // RTMP ingest and playback
	HTTPPort int `yaml:"http_port"` // API, metrics, health and ws-flv
}

// RTMPConfig defines protocol parameters announced to every client.
type RTMPConfig struct {
	ChunkSize      uint32        `yaml:"chunk_size"`       // Outbound chunk size sent at connect
	WindowAckSize  uint32        `yaml:"window_ack_size"`  // Window acknowledgement size sent at connect
	PeerBandwidth  uint32        `yaml:"peer_bandwidth"`   // Set peer bandwidth size sent at connect
	PingInterval   time.Duration `yaml:"ping_interval"`    // Period of ping requests after connect
	IdleTimeout    time.Duration `yaml:"idle_timeout"`     // Socket read deadline
	MaxMessageSize uint32        `yaml:"max_message_size"` // Largest accepted message payload
}

// TranscodeConfig defines the ffmpeg HLS pipeline started for each publish.
type TranscodeConfig struct {
	Enabled     bool              `yaml:"enabled"`
	FFmpeg      string            `yaml:"ffmpeg"`        // Binary path, empty searches $PATH
	MediaRoot   string            `yaml:"media_root"`    // HLS output root
	HLSTime     int               `yaml:"hls_time"`      // Segment duration in seconds
	HLSListSize int               `yaml:"hls_list_size"` // Segments kept in the playlist
	Renditions  []RenditionConfig `yaml:"renditions,omitempty"`
}

// RenditionConfig is one HLS output ladder step.
type RenditionConfig struct {
	Name         string `yaml:"name"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	VideoBitrate string `yaml:"video_bitrate"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads configuration from a YAML file, applies defaults and then
// RELAYCAST_* environment overrides. An empty path skips the file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields

		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	cfg.setDefaults()
	cfg.applyEnv()

	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.RTMPPort == 0 {
		c.Server.RTMPPort = 1935
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8000
	}

	if c.RTMP.ChunkSize == 0 {
		c.RTMP.ChunkSize = 60000
	}
	if c.RTMP.WindowAckSize == 0 {
		c.RTMP.WindowAckSize = 5000000
	}
	if c.RTMP.PeerBandwidth == 0 {
		c.RTMP.PeerBandwidth = 5000000
	}
	if c.RTMP.PingInterval == 0 {
		c.RTMP.PingInterval = 30 * time.Second
	}
	if c.RTMP.IdleTimeout == 0 {
		c.RTMP.IdleTimeout = 60 * time.Second
	}
	if c.RTMP.MaxMessageSize == 0 {
		c.RTMP.MaxMessageSize = 16 << 20
	}

	if c.Transcode.MediaRoot == "" {
		c.Transcode.MediaRoot = "./media"
	}
	if c.Transcode.HLSTime == 0 {
		c.Transcode.HLSTime = 2
	}
	if c.Transcode.HLSListSize == 0 {
		c.Transcode.HLSListSize = 5
	}
	if len(c.Transcode.Renditions) == 0 {
		c.Transcode.Renditions = DefaultRenditions()
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// DefaultRenditions returns the high/middle/low HLS ladder.
func DefaultRenditions() []RenditionConfig {
	return []RenditionConfig{
		{Name: "high", Width: 1280, Height: 720, VideoBitrate: "2500k"},
		{Name: "middle", Width: 854, Height: 480, VideoBitrate: "1500k"},
		{Name: "low", Width: 640, Height: 360, VideoBitrate: "800k"},
	}
}
