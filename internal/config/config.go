package config

import (
	"fmt"
	"time"
)

// DashboardConfig is the root configuration for the realtime client layer.
type DashboardConfig struct {
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Probe     ProbeConfig     `yaml:"probe"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// RealtimeConfig holds WebSocket endpoint and connection settings shared
// by the three channels.
type RealtimeConfig struct {
	Host              string          `yaml:"host"`
	Port              int             `yaml:"port"`
	TLS               bool            `yaml:"tls"`
	HeartbeatInterval time.Duration   `yaml:"heartbeat_interval"`
	ReadTimeout       time.Duration   `yaml:"read_timeout"`
	WriteTimeout      time.Duration   `yaml:"write_timeout"`
	BufferSize        int             `yaml:"buffer_size"`
	Reconnect         ReconnectConfig `yaml:"reconnect"`
}

// ReconnectConfig holds the per-channel retry policy.
type ReconnectConfig struct {
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// WSBaseURL returns the WebSocket origin, e.g. "ws://localhost:8000".
func (c *RealtimeConfig) WSBaseURL() string {
	scheme := "ws"
	if c.TLS {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// HTTPBaseURL returns the REST origin, e.g. "http://localhost:8000".
func (c *RealtimeConfig) HTTPBaseURL() string {
	scheme := "http"
	if c.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// ProbeConfig holds the service availability probe settings. When Enabled
// is false the service is treated as always reachable and no probe request
// is ever made.
type ProbeConfig struct {
	Enabled *bool         `yaml:"enabled"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// WatchlistConfig holds the price-channel watchlist synchronizer settings.
type WatchlistConfig struct {
	PushInterval time.Duration `yaml:"push_interval"`
	Markets      []string      `yaml:"markets"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// ProbeEnabled resolves the tri-state Enabled flag; unset means enabled.
func (c *ProbeConfig) ProbeEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
