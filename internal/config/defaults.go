package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHost                 = "localhost"
	DefaultPort                 = 8000
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultReadTimeout          = 60 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultBufferSize           = 100
	DefaultReconnectBaseDelay   = 2 * time.Second
	DefaultReconnectMaxDelay    = 30 * time.Second
	DefaultReconnectMultiplier  = 1.5
	DefaultReconnectMaxAttempts = 3
	DefaultProbePath            = "/api/system/status"
	DefaultProbeTimeout         = 3 * time.Second
	DefaultWatchlistInterval    = 5 * time.Second
	DefaultMetricsPort          = 9090
	DefaultMetricsPath          = "/metrics"
)

func (c *DashboardConfig) applyDefaults() {
	// Realtime defaults
	if c.Realtime.Host == "" {
		c.Realtime.Host = DefaultHost
	}
	if c.Realtime.Port == 0 {
		c.Realtime.Port = DefaultPort
	}
	if c.Realtime.HeartbeatInterval == 0 {
		c.Realtime.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Realtime.ReadTimeout == 0 {
		c.Realtime.ReadTimeout = DefaultReadTimeout
	}
	if c.Realtime.WriteTimeout == 0 {
		c.Realtime.WriteTimeout = DefaultWriteTimeout
	}
	if c.Realtime.BufferSize == 0 {
		c.Realtime.BufferSize = DefaultBufferSize
	}
	if c.Realtime.Reconnect.BaseDelay == 0 {
		c.Realtime.Reconnect.BaseDelay = DefaultReconnectBaseDelay
	}
	if c.Realtime.Reconnect.MaxDelay == 0 {
		c.Realtime.Reconnect.MaxDelay = DefaultReconnectMaxDelay
	}
	if c.Realtime.Reconnect.Multiplier == 0 {
		c.Realtime.Reconnect.Multiplier = DefaultReconnectMultiplier
	}
	if c.Realtime.Reconnect.MaxAttempts == 0 {
		c.Realtime.Reconnect.MaxAttempts = DefaultReconnectMaxAttempts
	}

	// Probe defaults
	if c.Probe.Path == "" {
		c.Probe.Path = DefaultProbePath
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = DefaultProbeTimeout
	}

	// Watchlist defaults
	if c.Watchlist.PushInterval == 0 {
		c.Watchlist.PushInterval = DefaultWatchlistInterval
	}
	if len(c.Watchlist.Markets) == 0 {
		c.Watchlist.Markets = []string{"KR", "US"}
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
