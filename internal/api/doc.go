// Package api provides the REST client for the trading backend, used by
// the realtime layer to probe service availability before opening
// WebSocket channels and to fetch the detailed system status document.
package api
