// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Per-channel connection state and transition counts
//   - Frame receive/forward/drop rates
//   - Reconnect attempts and heartbeat traffic
//   - Availability probe outcomes
package metrics
