// Package realtime keeps the dashboard's three push channels (price,
// trading, notification) alive against a flaky backend.
//
// Each channel is an independent state machine owning at most one
// WebSocket connection at a time, with app-level ping/pong keep-alive and
// exponential-backoff reconnection. The Hub coordinates the three
// channels as one unit: a single Initialize/DisconnectAll lifecycle, an
// aggregate status view, at-most-one-subscriber-per-concern dispatch, and
// a watchlist synchronizer that keeps the server's watched symbol set in
// step with the client on the price channel.
package realtime
