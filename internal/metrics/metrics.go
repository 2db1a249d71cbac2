package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// FramesReceived counts every frame read off a channel's transport,
	// heartbeats included.
	FramesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockdash",
		Subsystem: "realtime",
		Name:      "frames_received_total",
		Help:      "Total frames received, by channel",
	}, []string{"channel"})

	// FramesDropped counts malformed frames that were logged and discarded.
	FramesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockdash",
		Subsystem: "realtime",
		Name:      "frames_dropped_total",
		Help:      "Total malformed frames dropped, by channel",
	}, []string{"channel"})

	// Reconnects counts scheduled reconnect attempts.
	Reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockdash",
		Subsystem: "realtime",
		Name:      "reconnects_total",
		Help:      "Total reconnect attempts scheduled, by channel",
	}, []string{"channel"})

	// HeartbeatsSent counts outbound ping and pong frames.
	HeartbeatsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockdash",
		Subsystem: "realtime",
		Name:      "heartbeats_sent_total",
		Help:      "Total heartbeat frames sent, by channel",
	}, []string{"channel"})

	// ChannelState exposes the current state machine value per channel
	// (0=disconnected 1=connecting 2=connected 3=reconnecting 4=error 5=disabled).
	ChannelState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stockdash",
		Subsystem: "realtime",
		Name:      "channel_state",
		Help:      "Current connection state, by channel",
	}, []string{"channel"})

	// ProbeFailures counts availability probes that found the backend
	// unreachable.
	ProbeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stockdash",
		Subsystem: "realtime",
		Name:      "probe_failures_total",
		Help:      "Total failed availability probes",
	})
)

// Register registers all metrics in the given registry, or the default
// registerer when called without arguments. Safe to call more than once.
func Register(registerers ...prometheus.Registerer) {
	once.Do(func() {
		reg := prometheus.Registerer(prometheus.DefaultRegisterer)
		if len(registerers) > 0 && registerers[0] != nil {
			reg = registerers[0]
		}
		reg.MustRegister(
			FramesReceived,
			FramesDropped,
			Reconnects,
			HeartbeatsSent,
			ChannelState,
			ProbeFailures,
		)
	})
}
