package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_SingleSlotReplace(t *testing.T) {
	r := NewRegistry()

	var first, second []string
	r.Subscribe(ConcernPrice, func(data []byte) { first = append(first, string(data)) })
	r.Subscribe(ConcernPrice, func(data []byte) { second = append(second, string(data)) })

	r.dispatch(ConcernPrice, []byte("quote"))

	assert.Empty(t, first, "replaced subscriber must not receive frames")
	assert.Equal(t, []string{"quote"}, second)
}

func TestRegistry_ConcernsAreIndependent(t *testing.T) {
	r := NewRegistry()

	var price, trading int
	r.Subscribe(ConcernPrice, func([]byte) { price++ })
	r.Subscribe(ConcernTrading, func([]byte) { trading++ })

	r.dispatch(ConcernPrice, []byte("{}"))
	r.dispatch(ConcernPrice, []byte("{}"))
	r.dispatch(ConcernTrading, []byte("{}"))

	assert.Equal(t, 2, price)
	assert.Equal(t, 1, trading)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	r := NewRegistry()

	var calls int
	sub := r.Subscribe(ConcernNotification, func([]byte) { calls++ })

	assert.True(t, r.Unsubscribe(sub))
	r.dispatch(ConcernNotification, []byte("{}"))
	assert.Zero(t, calls)

	assert.False(t, r.Unsubscribe(sub), "second unsubscribe has nothing to clear")
}

func TestRegistry_StaleUnsubscribeKeepsCurrent(t *testing.T) {
	r := NewRegistry()

	var current int
	stale := r.Subscribe(ConcernPrice, func([]byte) {})
	r.Subscribe(ConcernPrice, func([]byte) { current++ })

	assert.False(t, r.Unsubscribe(stale), "stale handle must not clear the newer subscriber")

	r.dispatch(ConcernPrice, []byte("{}"))
	assert.Equal(t, 1, current)
}

func TestRegistry_StatusSlot(t *testing.T) {
	r := NewRegistry()

	var got []Status
	sub := r.SubscribeStatus(func(s Status) { got = append(got, s) })

	want := Status{Price: StateConnected, Trading: StateConnecting, Notification: StateDisconnected}
	r.dispatchStatus(want)
	assert.Equal(t, []Status{want}, got)

	stale := sub
	r.SubscribeStatus(func(Status) {})
	assert.False(t, r.Unsubscribe(stale))

	newer := r.SubscribeStatus(func(Status) {})
	assert.True(t, r.Unsubscribe(newer))
	r.dispatchStatus(want)
	assert.Len(t, got, 1, "no status delivery after unsubscribe")
}

func TestRegistry_DispatchWithoutSubscriber(t *testing.T) {
	r := NewRegistry()

	// Must not panic.
	r.dispatch(ConcernPrice, []byte("{}"))
	r.dispatchStatus(Status{})
}
