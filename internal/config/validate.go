// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
)

// maxChunkSize is the largest value a set-chunk-size message can carry.
const maxChunkSize = 0x7FFFFFFF

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.RTMP.Validate(); err != nil {
		return fmt.Errorf("rtmp config: %w", err)
	}
	if err := c.Transcode.Validate(); err != nil {
		return fmt.Errorf("transcode config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", s.HTTPPort)
	}
	if s.RTMPPort <= 0 || s.RTMPPort > 65535 {
		return fmt.Errorf("rtmp_port must be between 1 and 65535, got %d", s.RTMPPort)
	}
	if s.HTTPPort == s.RTMPPort {
		return fmt.Errorf("http_port and rtmp_port must be different, both are %d", s.HTTPPort)
	}
	return nil
}

// Validate checks RTMP protocol parameters.
func (r *RTMPConfig) Validate() error {
	if r.ChunkSize < 128 || r.ChunkSize > maxChunkSize {
		return fmt.Errorf("chunk_size must be between 128 and %d, got %d", maxChunkSize, r.ChunkSize)
	}
	if r.WindowAckSize == 0 {
		return fmt.Errorf("window_ack_size must be positive")
	}
	if r.PeerBandwidth == 0 {
		return fmt.Errorf("peer_bandwidth must be positive")
	}
	if r.PingInterval <= 0 {
		return fmt.Errorf("ping_interval must be positive, got %s", r.PingInterval)
	}
	if r.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be positive, got %s", r.IdleTimeout)
	}
	if r.MaxMessageSize == 0 || r.MaxMessageSize > 16<<20 {
		return fmt.Errorf("max_message_size must be between 1 and %d, got %d", 16<<20, r.MaxMessageSize)
	}
	return nil
}

// Validate checks the transcode section. Nothing is checked while it is disabled.
func (t *TranscodeConfig) Validate() error {
	if !t.Enabled {
		return nil
	}
	if t.MediaRoot == "" {
		return fmt.Errorf("media_root is required when enabled")
	}
	if t.HLSTime <= 0 {
		return fmt.Errorf("hls_time must be positive, got %d", t.HLSTime)
	}
	if t.HLSListSize <= 0 {
		return fmt.Errorf("hls_list_size must be positive, got %d", t.HLSListSize)
	}
	if len(t.Renditions) == 0 {
		return fmt.Errorf("at least one rendition is required")
	}
	seen := make(map[string]bool)
	for i, r := range t.Renditions {
		if r.Name == "" {
			return fmt.Errorf("renditions[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("renditions[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("renditions[%d]: width and height must be positive", i)
		}
	}
	return nil
}

// Validate checks the log level and format.
func (l *LogConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error, got %q", l.Level)
	}
	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("format must be json or text, got %q", l.Format)
	}
	return nil
}
