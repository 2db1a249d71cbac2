package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Concern identifies a subscription slot: one per channel plus the
// aggregate connection status.
type Concern string

const (
	ConcernPrice        Concern = "price"
	ConcernTrading      Concern = "trading"
	ConcernNotification Concern = "notification"
	ConcernStatus       Concern = "status"
)

// concernFor maps a channel to its subscriber slot.
func concernFor(name ChannelName) Concern {
	return Concern(name)
}

// MessageHandler receives a raw, verbatim frame from a channel.
type MessageHandler func(data []byte)

// StatusHandler receives the full per-channel state triple.
type StatusHandler func(s Status)

// Subscription is the caller's proof of registration. Unsubscribing with
// a subscription that is no longer current is a no-op, so a stale
// unsubscribe can never clear a newer subscriber.
type Subscription struct {
	ID      uuid.UUID
	Concern Concern
}

type messageSlot struct {
	id uuid.UUID
	fn MessageHandler
}

type statusSlot struct {
	id uuid.UUID
	fn StatusHandler
}

// Registry holds at most one subscriber per concern. Subscribing again
// silently replaces the previous subscriber; this last-writer-wins
// contract is what the UI relies on when it re-registers on re-render.
// Inbound dispatch only reads; the registry is written exclusively by
// Subscribe/Unsubscribe.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Concern]messageSlot
	status   *statusSlot
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Concern]messageSlot),
	}
}

// Subscribe registers the handler for a concern, replacing any previous
// one, and returns the subscription needed to unsubscribe later.
func (r *Registry) Subscribe(c Concern, fn MessageHandler) Subscription {
	id := uuid.New()
	r.mu.Lock()
	r.handlers[c] = messageSlot{id: id, fn: fn}
	r.mu.Unlock()
	return Subscription{ID: id, Concern: c}
}

// SubscribeStatus registers the aggregate status handler, replacing any
// previous one.
func (r *Registry) SubscribeStatus(fn StatusHandler) Subscription {
	id := uuid.New()
	r.mu.Lock()
	r.status = &statusSlot{id: id, fn: fn}
	r.mu.Unlock()
	return Subscription{ID: id, Concern: ConcernStatus}
}

// Unsubscribe clears the slot only when sub is the currently registered
// subscription. Returns whether anything was cleared.
func (r *Registry) Unsubscribe(sub Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub.Concern == ConcernStatus {
		if r.status != nil && r.status.id == sub.ID {
			r.status = nil
			return true
		}
		return false
	}

	if slot, ok := r.handlers[sub.Concern]; ok && slot.id == sub.ID {
		delete(r.handlers, sub.Concern)
		return true
	}
	return false
}

// dispatch forwards a frame to the concern's subscriber, if any.
func (r *Registry) dispatch(c Concern, data []byte) {
	r.mu.RLock()
	slot, ok := r.handlers[c]
	r.mu.RUnlock()
	if ok {
		slot.fn(data)
	}
}

// dispatchStatus pushes the full triple to the status subscriber, if any.
func (r *Registry) dispatchStatus(s Status) {
	r.mu.RLock()
	slot := r.status
	r.mu.RUnlock()
	if slot != nil {
		slot.fn(s)
	}
}
