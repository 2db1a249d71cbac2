package realtime

import (
	"sync"
	"time"
)

// heartbeat sends a keep-alive frame at a fixed period while the owning
// connection is open. It is purely outbound; silent-death detection is
// left to the transport's read deadline and close/error signaling.
type heartbeat struct {
	interval time.Duration
	send     func() error
	done     chan struct{}
	stopOnce sync.Once
}

// startHeartbeat launches the keep-alive ticker. send is invoked once
// per period; the ticker stops itself on the first send failure since
// the transport will surface the error through its own channel.
func startHeartbeat(interval time.Duration, send func() error) *heartbeat {
	h := &heartbeat{
		interval: interval,
		send:     send,
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *heartbeat) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.send(); err != nil {
				return
			}
		}
	}
}

// stop cancels the ticker. Idempotent, safe to call from any state.
func (h *heartbeat) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
