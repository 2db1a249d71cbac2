package realtime

import (
	"errors"
	"net/url"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// ChannelName identifies one of the three push channels.
type ChannelName string

const (
	ChannelPrice        ChannelName = "price"
	ChannelTrading      ChannelName = "trading"
	ChannelNotification ChannelName = "notification"
)

// AllChannels returns the channel names in a fixed order.
func AllChannels() []ChannelName {
	return []ChannelName{ChannelPrice, ChannelTrading, ChannelNotification}
}

// endpointPath returns the server route for a channel. The bearer token
// travels as the final path segment, matching the backend's routes.
func endpointPath(name ChannelName, token string) string {
	escaped := url.PathEscape(token)
	switch name {
	case ChannelPrice:
		return "/ws/prices/" + escaped
	case ChannelTrading:
		return "/ws/trading/" + escaped
	case ChannelNotification:
		return "/ws/notifications/" + escaped
	}
	return ""
}

// State is the connection lifecycle state of a single channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
	StateDisabled
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	case StateDisabled:
		return "disabled"
	}
	return "unknown"
}

// Status is the aggregate per-channel state triple. Status subscribers
// always receive the full triple, never a partial update.
type Status struct {
	Price        State
	Trading      State
	Notification State
}

// ChannelConfig holds the per-channel transport and retry settings. All
// three channels share one configuration; only the name and endpoint
// differ.
type ChannelConfig struct {
	WSBaseURL         string        // e.g. "ws://localhost:8000"
	HeartbeatInterval time.Duration // outbound ping period
	ReadTimeout       time.Duration // read deadline, refreshed on traffic
	WriteTimeout      time.Duration // write deadline for sends
	BufferSize        int           // inbound frame channel buffer

	ReconnectBaseDelay   time.Duration // first retry delay
	ReconnectMaxDelay    time.Duration // retry delay ceiling
	ReconnectMultiplier  float64       // delay growth factor
	ReconnectMaxAttempts int           // retry budget before Error
}

// DefaultChannelConfig returns sensible defaults matching the backend's
// heartbeat cadence.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		HeartbeatInterval:    30 * time.Second,
		ReadTimeout:          60 * time.Second,
		WriteTimeout:         5 * time.Second,
		BufferSize:           100,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		ReconnectMultiplier:  1.5,
		ReconnectMaxAttempts: 3,
	}
}
