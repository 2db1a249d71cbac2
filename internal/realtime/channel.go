package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tradewatch/stockdash/internal/metrics"
	"github.com/tradewatch/stockdash/internal/model"
)

// Channel is the state machine for a single push channel. It owns at most
// one live transport connection at a time: Connect while Connecting or
// Connected is a no-op, and every teardown bumps a generation counter so
// events from a dead connection can never act on the new one.
//
// All transitions are driven by transport lifecycle events and the retry
// schedule; UI code only observes them through the Hub's status callback.
type Channel struct {
	name ChannelName
	cfg  ChannelConfig
	log  *slog.Logger

	// Callbacks wired by the Hub at construction; never mutated after.
	forward     func(ChannelName, []byte)
	onState     func(ChannelName, State)
	onExhausted func(ChannelName)

	mu             sync.Mutex
	state          State
	token          string
	client         *client
	gen            uint64
	sched          *retrySchedule
	reconnectTimer *time.Timer
	hb             *heartbeat
}

func newChannel(name ChannelName, cfg ChannelConfig, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		name:  name,
		cfg:   cfg,
		log:   logger.With("channel", string(name)),
		state: StateDisconnected,
		sched: newRetrySchedule(cfg),
	}
}

// Name returns the channel identity.
func (ch *Channel) Name() ChannelName { return ch.name }

// State returns the current connection state.
func (ch *Channel) State() State {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// setToken replaces the bearer token used for the next dial. The layer
// does not manage token refresh; the caller supplies it per Initialize.
func (ch *Channel) setToken(token string) {
	ch.mu.Lock()
	ch.token = token
	ch.mu.Unlock()
}

// resetRetries restores the full reconnect budget.
func (ch *Channel) resetRetries() {
	ch.mu.Lock()
	ch.sched.Reset()
	ch.mu.Unlock()
}

// Connect opens the transport unless a connection is already live or in
// flight, or the channel has been disabled. Never blocks on the dial.
func (ch *Channel) Connect() {
	ch.mu.Lock()
	switch ch.state {
	case StateConnecting, StateConnected, StateDisabled:
		ch.mu.Unlock()
		return
	}
	ch.connectLocked()
	ch.mu.Unlock()
	ch.emit(StateConnecting)
}

// connectLocked transitions to Connecting and launches an async dial.
// Callers emit StateConnecting after releasing the lock.
func (ch *Channel) connectLocked() {
	ch.cancelReconnectLocked()
	ch.gen++
	ch.state = StateConnecting
	url := ch.cfg.WSBaseURL + endpointPath(ch.name, ch.token)
	go ch.dial(ch.gen, url)
}

// dial performs one connection attempt for the given generation.
func (ch *Channel) dial(gen uint64, url string) {
	cl := newClient(url, ch.cfg, ch.log)
	err := cl.connect(context.Background())

	ch.mu.Lock()
	if gen != ch.gen || ch.state != StateConnecting {
		// Torn down while dialing; discard the result.
		ch.mu.Unlock()
		if err == nil {
			cl.close()
		}
		return
	}

	if err != nil {
		notes, exhausted := ch.scheduleRetryLocked(true)
		ch.mu.Unlock()
		ch.log.Warn("connect failed", "error", err)
		ch.emit(notes...)
		ch.escalate(exhausted)
		return
	}

	ch.client = cl
	ch.state = StateConnected
	ch.sched.Reset()
	ch.hb = startHeartbeat(ch.cfg.HeartbeatInterval, func() error { return ch.sendPing(cl) })
	go ch.readLoop(cl, gen)
	ch.mu.Unlock()

	ch.log.Info("channel connected", "url", url)
	ch.emit(StateConnected)
}

// readLoop routes one connection's frames and failures until it dies.
func (ch *Channel) readLoop(cl *client, gen uint64) {
	for {
		select {
		case <-cl.done:
			// Caller-initiated close; state already set by the closer.
			return

		case err := <-cl.errors:
			ch.handleConnLost(gen, err)
			return

		case data, ok := <-cl.messages:
			if !ok {
				return
			}
			ch.handleFrame(cl, data)
		}
	}
}

// handleFrame classifies an inbound frame: heartbeats are intercepted,
// malformed payloads are dropped, everything else is forwarded verbatim.
// A bad frame must never take the connection down.
func (ch *Channel) handleFrame(cl *client, data []byte) {
	metrics.FramesReceived.WithLabelValues(string(ch.name)).Inc()

	frameType := model.FrameType(data)
	switch {
	case !json.Valid(data):
		ch.log.Warn("dropping malformed frame", "size", len(data))
		metrics.FramesDropped.WithLabelValues(string(ch.name)).Inc()

	case frameType == model.TypePing:
		pong, _ := json.Marshal(model.Pong{Type: model.TypePong})
		if err := cl.send(pong); err != nil {
			ch.log.Warn("pong send failed", "error", err)
		} else {
			metrics.HeartbeatsSent.WithLabelValues(string(ch.name)).Inc()
		}

	case model.IsHeartbeat(frameType):
		// pong / heartbeat frames need no reply.

	default:
		if ch.forward != nil {
			ch.forward(ch.name, data)
		}
	}
}

// handleConnLost reacts to a transport error or remote close.
func (ch *Channel) handleConnLost(gen uint64, err error) {
	ch.mu.Lock()
	if gen != ch.gen {
		ch.mu.Unlock()
		return
	}

	ch.stopHeartbeatLocked()
	if ch.client != nil {
		ch.client.close()
		ch.client = nil
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		ch.state = StateDisconnected
		ch.mu.Unlock()
		ch.log.Info("channel closed by server")
		ch.emit(StateDisconnected)
		return
	}

	notes, exhausted := ch.scheduleRetryLocked(false)
	ch.mu.Unlock()
	ch.log.Warn("connection lost", "error", err)
	ch.emit(notes...)
	ch.escalate(exhausted)
}

// scheduleRetryLocked consumes one retry attempt and arms the reconnect
// timer, or lands in Error when the budget is spent. openFailure routes
// through Error first, matching the dial-failure path. Returns the state
// transitions to emit after unlock and whether the budget is exhausted.
func (ch *Channel) scheduleRetryLocked(openFailure bool) ([]State, bool) {
	delay, ok := ch.sched.Next()
	if !ok {
		ch.state = StateError
		return []State{StateError}, true
	}

	metrics.Reconnects.WithLabelValues(string(ch.name)).Inc()

	var notes []State
	if openFailure {
		ch.state = StateError
		notes = append(notes, StateError)
	}
	ch.state = StateReconnecting
	notes = append(notes, StateReconnecting)

	ch.cancelReconnectLocked()
	gen := ch.gen
	ch.log.Info("reconnect scheduled", "delay", delay, "attempt", ch.sched.Attempts())
	ch.reconnectTimer = time.AfterFunc(delay, func() { ch.retryFire(gen) })
	return notes, false
}

// retryFire is the reconnect timer callback.
func (ch *Channel) retryFire(gen uint64) {
	ch.mu.Lock()
	if gen != ch.gen || ch.state != StateReconnecting {
		// Disconnected or disabled while the timer was pending.
		ch.mu.Unlock()
		return
	}
	ch.connectLocked()
	ch.mu.Unlock()
	ch.emit(StateConnecting)
}

// Disconnect cancels any pending reconnect, detaches the current
// connection and closes it with a normal-closure frame. Safe to call
// from any state, any number of times.
func (ch *Channel) Disconnect() {
	ch.mu.Lock()
	ch.teardownLocked()
	changed := ch.state != StateDisconnected
	ch.state = StateDisconnected
	ch.mu.Unlock()
	if changed {
		ch.emit(StateDisconnected)
	}
}

// disable moves the channel to the terminal Disabled state. Only a fresh
// Initialize brings it back.
func (ch *Channel) disable() {
	ch.mu.Lock()
	ch.teardownLocked()
	changed := ch.state != StateDisabled
	ch.state = StateDisabled
	ch.mu.Unlock()
	if changed {
		ch.emit(StateDisabled)
	}
}

// teardownLocked cancels timers, stops the heartbeat, invalidates the
// generation and closes the transport if open.
func (ch *Channel) teardownLocked() {
	ch.cancelReconnectLocked()
	ch.stopHeartbeatLocked()
	ch.gen++
	if ch.client != nil {
		ch.client.close()
		ch.client = nil
	}
}

func (ch *Channel) cancelReconnectLocked() {
	if ch.reconnectTimer != nil {
		ch.reconnectTimer.Stop()
		ch.reconnectTimer = nil
	}
}

func (ch *Channel) stopHeartbeatLocked() {
	if ch.hb != nil {
		ch.hb.stop()
		ch.hb = nil
	}
}

// sendPing emits one keep-alive frame on the given connection.
func (ch *Channel) sendPing(cl *client) error {
	data, _ := json.Marshal(model.Ping{Type: model.TypePing})
	if err := cl.send(data); err != nil {
		return err
	}
	metrics.HeartbeatsSent.WithLabelValues(string(ch.name)).Inc()
	return nil
}

// send marshals and writes a frame on the current connection. A send on
// a closed or absent transport is logged and swallowed; the caller never
// sees transport errors directly.
func (ch *Channel) send(v any) {
	ch.mu.Lock()
	cl := ch.client
	ch.mu.Unlock()

	if cl == nil {
		ch.log.Warn("send skipped, channel not connected")
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		ch.log.Warn("send skipped, marshal failed", "error", err)
		return
	}
	if err := cl.send(data); err != nil {
		ch.log.Warn("send failed", "error", err)
	}
}

// emit publishes state transitions to the gauge and the Hub.
func (ch *Channel) emit(states ...State) {
	for _, s := range states {
		metrics.ChannelState.WithLabelValues(string(ch.name)).Set(float64(s))
		if ch.onState != nil {
			ch.onState(ch.name, s)
		}
	}
}

// escalate hands a spent retry budget to the Hub, which re-probes the
// service and may disable everything.
func (ch *Channel) escalate(exhausted bool) {
	if !exhausted {
		return
	}
	ch.log.Error("reconnect budget exhausted")
	if ch.onExhausted != nil {
		ch.onExhausted(ch.name)
	}
}
