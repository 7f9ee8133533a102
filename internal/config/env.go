// If you are AI: This file loads .env files and applies RELAYCAST_* environment overrides.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix starts every override variable, e.g. RELAYCAST_RTMP_CHUNK_SIZE.
const envPrefix = "RELAYCAST_"

// LoadEnv reads .env files into the process environment. With no paths,
// ".env" is used. A missing file is an error callers may ignore.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback if unset or invalid.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvUint32 returns the uint32 value of key, or fallback if unset or invalid.
func GetEnvUint32(key string, fallback uint32) uint32 {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.ParseUint(s, 10, 32); err == nil {
			return uint32(n)
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of key, or fallback if unset or invalid.
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of key ("30s", "1m"), or fallback if unset or invalid.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// applyEnv overrides file values with RELAYCAST_<SECTION>_<FIELD> variables.
func (c *Config) applyEnv() {
	c.Server.RTMPPort = GetEnvInt(envPrefix+"SERVER_RTMP_PORT", c.Server.RTMPPort)
	c.Server.HTTPPort = GetEnvInt(envPrefix+"SERVER_HTTP_PORT", c.Server.HTTPPort)

	c.RTMP.ChunkSize = GetEnvUint32(envPrefix+"RTMP_CHUNK_SIZE", c.RTMP.ChunkSize)
	c.RTMP.WindowAckSize = GetEnvUint32(envPrefix+"RTMP_WINDOW_ACK_SIZE", c.RTMP.WindowAckSize)
	c.RTMP.PeerBandwidth = GetEnvUint32(envPrefix+"RTMP_PEER_BANDWIDTH", c.RTMP.PeerBandwidth)
	c.RTMP.PingInterval = GetEnvDuration(envPrefix+"RTMP_PING_INTERVAL", c.RTMP.PingInterval)
	c.RTMP.IdleTimeout = GetEnvDuration(envPrefix+"RTMP_IDLE_TIMEOUT", c.RTMP.IdleTimeout)
	c.RTMP.MaxMessageSize = GetEnvUint32(envPrefix+"RTMP_MAX_MESSAGE_SIZE", c.RTMP.MaxMessageSize)

	c.Transcode.Enabled = GetEnvBool(envPrefix+"TRANSCODE_ENABLED", c.Transcode.Enabled)
	c.Transcode.FFmpeg = GetEnv(envPrefix+"TRANSCODE_FFMPEG", c.Transcode.FFmpeg)
	c.Transcode.MediaRoot = GetEnv(envPrefix+"TRANSCODE_MEDIA_ROOT", c.Transcode.MediaRoot)
	c.Transcode.HLSTime = GetEnvInt(envPrefix+"TRANSCODE_HLS_TIME", c.Transcode.HLSTime)
	c.Transcode.HLSListSize = GetEnvInt(envPrefix+"TRANSCODE_HLS_LIST_SIZE", c.Transcode.HLSListSize)

	c.Log.Level = GetEnv(envPrefix+"LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetEnv(envPrefix+"LOG_FORMAT", c.Log.Format)
}
