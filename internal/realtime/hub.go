package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tradewatch/stockdash/internal/metrics"
)

// Prober checks whether the backend is reachable. A nil error means the
// service answered with a success status within the deadline.
type Prober interface {
	CheckHealth(ctx context.Context) error
}

// HubConfig configures the multiplexer.
type HubConfig struct {
	Channel           ChannelConfig
	ProbeEnabled      bool          // when false, no probe request is ever made
	ProbeTimeout      time.Duration // bounded availability check
	WatchlistInterval time.Duration // periodic price-refresh push period
	Markets           []string      // market scope for watchlist frames
}

// DefaultHubConfig returns sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Channel:           DefaultChannelConfig(),
		ProbeEnabled:      true,
		ProbeTimeout:      3 * time.Second,
		WatchlistInterval: 5 * time.Second,
		Markets:           []string{"KR", "US"},
	}
}

// Hub coordinates the three channel state machines as one addressable
// unit. One Hub exists per process, owned by the application's
// composition root; it is initialized on login and torn down on logout.
type Hub struct {
	cfg      HubConfig
	log      *slog.Logger
	prober   Prober
	registry *Registry
	watch    *watchlist

	mu       sync.Mutex
	channels map[ChannelName]*Channel
	disabled bool

	statusMu sync.Mutex
	status   Status
}

// NewHub creates the multiplexer with its three channels. prober may be
// nil when probing is disabled by configuration.
func NewHub(cfg HubConfig, prober Prober, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hub{
		cfg:      cfg,
		log:      logger,
		prober:   prober,
		registry: NewRegistry(),
		channels: make(map[ChannelName]*Channel),
	}

	for _, name := range AllChannels() {
		ch := newChannel(name, cfg.Channel, logger)
		ch.forward = h.forwardFrame
		ch.onState = h.onChannelState
		ch.onExhausted = h.onExhausted
		h.channels[name] = ch
	}

	h.watch = newWatchlist(
		h.channels[ChannelPrice],
		cfg.WatchlistInterval,
		cfg.Markets,
		h.Disabled,
		logger,
	)

	return h
}

// Registry exposes the subscriber registry for the UI layer.
func (h *Hub) Registry() *Registry { return h.registry }

// Channel returns the state machine for a channel name.
func (h *Hub) Channel(name ChannelName) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.channels[name]
}

// Status returns the current per-channel state triple.
func (h *Hub) Status() Status {
	h.statusMu.Lock()
	defer h.statusMu.Unlock()
	return h.status
}

// Disabled reports whether the whole multiplexer has been disabled.
func (h *Hub) Disabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disabled
}

// Initialize tears down any prior connections, stores the credential,
// probes service availability and opens all three channels. When the
// probe fails the whole multiplexer is disabled; the caller observes
// that through the status callback, not through a returned error.
func (h *Hub) Initialize(ctx context.Context, token string) {
	h.DisconnectAll()

	h.mu.Lock()
	h.disabled = false
	channels := h.channelList()
	h.mu.Unlock()

	if h.cfg.ProbeEnabled {
		if err := h.probe(ctx); err != nil {
			h.log.Error("service unreachable, disabling realtime layer", "error", err)
			h.DisableAll()
			return
		}
	}

	for _, ch := range channels {
		ch.setToken(token)
		ch.resetRetries()
		ch.Connect()
	}
}

// ReconnectAll resets every channel's retry budget and re-issues connect
// without requiring a fresh credential. No-op while disabled.
func (h *Hub) ReconnectAll() {
	h.mu.Lock()
	if h.disabled {
		h.mu.Unlock()
		return
	}
	channels := h.channelList()
	h.mu.Unlock()

	for _, ch := range channels {
		ch.resetRetries()
		ch.Connect()
	}
}

// DisconnectAll disconnects every channel and cancels all pending
// timers. Safe to call repeatedly or when nothing is connected.
func (h *Hub) DisconnectAll() {
	h.mu.Lock()
	channels := h.channelList()
	h.mu.Unlock()

	h.watch.stopTimer()
	for _, ch := range channels {
		ch.Disconnect()
	}
}

// DisableAll forces every channel into the terminal Disabled state.
// Only a fresh Initialize recovers from this.
func (h *Hub) DisableAll() {
	h.mu.Lock()
	h.disabled = true
	channels := h.channelList()
	h.mu.Unlock()

	h.watch.stopTimer()
	for _, ch := range channels {
		ch.disable()
	}
}

// UpdateWatchedSymbols replaces the watched symbol set for the price
// channel. See the watchlist synchronizer for the full contract.
func (h *Hub) UpdateWatchedSymbols(symbols []string) {
	h.watch.Update(symbols)
}

// WatchedSymbols returns the current deduplicated symbol set.
func (h *Hub) WatchedSymbols() []string {
	return h.watch.Symbols()
}

// channelList snapshots the channels in fixed order. h.mu must be held.
func (h *Hub) channelList() []*Channel {
	list := make([]*Channel, 0, len(h.channels))
	for _, name := range AllChannels() {
		list = append(list, h.channels[name])
	}
	return list
}

// probe runs the bounded availability check.
func (h *Hub) probe(ctx context.Context) error {
	if h.prober == nil {
		return nil
	}
	pctx, cancel := context.WithTimeout(ctx, h.cfg.ProbeTimeout)
	defer cancel()
	if err := h.prober.CheckHealth(pctx); err != nil {
		metrics.ProbeFailures.Inc()
		return err
	}
	return nil
}

// forwardFrame routes a channel's non-heartbeat frame to its subscriber.
func (h *Hub) forwardFrame(name ChannelName, data []byte) {
	h.registry.dispatch(concernFor(name), data)
}

// onChannelState folds a per-channel transition into the aggregate
// triple and pushes the full triple to the status subscriber.
func (h *Hub) onChannelState(name ChannelName, s State) {
	h.statusMu.Lock()
	switch name {
	case ChannelPrice:
		h.status.Price = s
	case ChannelTrading:
		h.status.Trading = s
	case ChannelNotification:
		h.status.Notification = s
	}
	snapshot := h.status
	h.statusMu.Unlock()

	h.registry.dispatchStatus(snapshot)
}

// onExhausted fires when a channel spends its whole retry budget. The
// service is re-probed; if unreachable, everything is disabled and only
// an explicit Initialize can recover.
func (h *Hub) onExhausted(name ChannelName) {
	if !h.cfg.ProbeEnabled {
		return
	}
	go func() {
		if err := h.probe(context.Background()); err != nil {
			h.log.Error("service unreachable after exhausted retries, disabling all channels",
				"channel", string(name), "error", err)
			h.DisableAll()
		}
	}()
}
