package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *DashboardConfig) Validate() error {
	if c.Realtime.Host == "" {
		return errors.New("realtime.host is required")
	}
	if c.Realtime.Port < 1 || c.Realtime.Port > 65535 {
		return fmt.Errorf("realtime.port must be between 1 and 65535, got %d", c.Realtime.Port)
	}
	if c.Realtime.BufferSize < 1 {
		return errors.New("realtime.buffer_size must be >= 1")
	}
	if c.Realtime.HeartbeatInterval <= 0 {
		return errors.New("realtime.heartbeat_interval must be positive")
	}

	if c.Realtime.Reconnect.BaseDelay <= 0 {
		return errors.New("realtime.reconnect.base_delay must be positive")
	}
	if c.Realtime.Reconnect.MaxDelay < c.Realtime.Reconnect.BaseDelay {
		return fmt.Errorf("realtime.reconnect.max_delay (%v) cannot be less than base_delay (%v)",
			c.Realtime.Reconnect.MaxDelay, c.Realtime.Reconnect.BaseDelay)
	}
	if c.Realtime.Reconnect.Multiplier < 1.0 {
		return errors.New("realtime.reconnect.multiplier must be >= 1.0")
	}
	if c.Realtime.Reconnect.MaxAttempts < 1 {
		return errors.New("realtime.reconnect.max_attempts must be >= 1")
	}

	if c.Probe.Timeout <= 0 {
		return errors.New("probe.timeout must be positive")
	}

	if c.Watchlist.PushInterval <= 0 {
		return errors.New("watchlist.push_interval must be positive")
	}
	for _, m := range c.Watchlist.Markets {
		if m != "KR" && m != "US" {
			return fmt.Errorf("watchlist.markets: unknown market %q", m)
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}
