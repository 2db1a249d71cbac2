package realtime

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/tradewatch/stockdash/internal/model"
)

// watchlist keeps the price channel's server-side symbol set in sync
// with the client's watched set. Besides the immediate replace frame on
// every update, it runs a periodic refresh push for as long as the set
// is non-empty, so stale quotes recover even if the server misses an
// update.
type watchlist struct {
	price    *Channel
	interval time.Duration
	markets  []string
	disabled func() bool
	log      *slog.Logger

	mu      sync.Mutex
	symbols []string
	stop    chan struct{}
}

func newWatchlist(price *Channel, interval time.Duration, markets []string, disabled func() bool, logger *slog.Logger) *watchlist {
	if logger == nil {
		logger = slog.Default()
	}
	return &watchlist{
		price:    price,
		interval: interval,
		markets:  markets,
		disabled: disabled,
		log:      logger.With("component", "watchlist"),
	}
}

// Update replaces the watched set. Duplicates are collapsed and the set
// is pushed to the server when the price channel is connected; when the
// channel is idle a connect is kicked off instead and the set rides the
// next refresh tick. A disabled multiplexer ignores updates entirely.
func (w *watchlist) Update(symbols []string) {
	if w.disabled() {
		w.log.Debug("watchlist update ignored, realtime layer disabled")
		return
	}

	set := dedupeSymbols(symbols)

	w.mu.Lock()
	w.symbols = set
	w.restartTimerLocked()
	w.mu.Unlock()

	switch w.price.State() {
	case StateConnected:
		w.price.send(model.UpdateWatchedSymbols{
			Type:    model.TypeUpdateWatchedSymbols,
			Symbols: set,
			Markets: w.markets,
		})
	case StateConnecting, StateDisabled:
		// Dial already in flight, or terminally off.
	default:
		w.price.Connect()
	}
}

// Symbols returns a copy of the current deduplicated set.
func (w *watchlist) Symbols() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.symbols))
	copy(out, w.symbols)
	return out
}

// stopTimer halts the periodic push. The symbol set itself survives so
// a later Update or reconnect can resume from it.
func (w *watchlist) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
}

// restartTimerLocked re-arms the refresh loop for the current set. An
// empty set stops the loop instead.
func (w *watchlist) restartTimerLocked() {
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
	if len(w.symbols) == 0 {
		return
	}
	stop := make(chan struct{})
	w.stop = stop
	go w.run(stop)
}

// run pushes a refresh request every interval until stopped.
func (w *watchlist) run(stop chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.push()
		}
	}
}

// push sends one refresh request if there is anything to refresh and
// the price channel is up.
func (w *watchlist) push() {
	w.mu.Lock()
	symbols := make([]string, len(w.symbols))
	copy(symbols, w.symbols)
	w.mu.Unlock()

	if len(symbols) == 0 || w.price.State() != StateConnected {
		return
	}
	w.price.send(model.PriceRequest{Symbols: symbols, Markets: w.markets})
}

// dedupeSymbols collapses duplicates and returns a sorted copy.
func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
