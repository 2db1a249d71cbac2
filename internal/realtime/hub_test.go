package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewatch/stockdash/internal/model"
)

// fakeProber answers health checks from a scripted error sequence; once
// the script runs out it keeps returning the last entry.
type fakeProber struct {
	mu     sync.Mutex
	script []error
	calls  int
}

func (p *fakeProber) CheckHealth(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.script) == 0 {
		return nil
	}
	err := p.script[0]
	if len(p.script) > 1 {
		p.script = p.script[1:]
	}
	return err
}

func (p *fakeProber) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// mockBackend serves all three channel endpoints and records paths.
func mockBackend(t *testing.T) (*httptest.Server, *sync.Map) {
	var paths sync.Map
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths.Store(r.URL.Path, true)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	return server, &paths
}

func testHubConfig(baseURL string) HubConfig {
	cfg := DefaultHubConfig()
	cfg.Channel = testChannelConfig(baseURL)
	cfg.ProbeTimeout = time.Second
	cfg.WatchlistInterval = 30 * time.Millisecond
	return cfg
}

func waitStatus(t *testing.T, h *Hub, want Status) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Status() == want },
		2*time.Second, 5*time.Millisecond,
		"waiting for status %+v, currently %+v", want, h.Status())
}

func allState(s State) Status {
	return Status{Price: s, Trading: s, Notification: s}
}

func TestHub_InitializeConnectsAllChannels(t *testing.T) {
	server, paths := mockBackend(t)
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)
	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()

	waitStatus(t, h, allState(StateConnected))

	for _, path := range []string{"/ws/prices/tok", "/ws/trading/tok", "/ws/notifications/tok"} {
		_, ok := paths.Load(path)
		assert.True(t, ok, "expected a connection on %s", path)
	}
}

func TestHub_ProbeFailureDisablesEverything(t *testing.T) {
	prober := &fakeProber{script: []error{errors.New("connection refused")}}

	h := NewHub(testHubConfig("ws://127.0.0.1:1"), prober, nil)
	h.Initialize(context.Background(), "tok")

	assert.Equal(t, allState(StateDisabled), h.Status())
	assert.True(t, h.Disabled())
	assert.Equal(t, 1, prober.Calls())
}

func TestHub_ProbeDisabledSkipsProber(t *testing.T) {
	server, _ := mockBackend(t)
	defer server.Close()

	prober := &fakeProber{script: []error{errors.New("must never be asked")}}
	cfg := testHubConfig(wsURL(server))
	cfg.ProbeEnabled = false

	h := NewHub(cfg, prober, nil)
	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()

	waitStatus(t, h, allState(StateConnected))
	assert.Zero(t, prober.Calls(), "disabled probe must never issue a request")
}

func TestHub_NilProberTreatedAsAvailable(t *testing.T) {
	server, _ := mockBackend(t)
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), nil, nil)
	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()

	waitStatus(t, h, allState(StateConnected))
}

func TestHub_DisconnectAllIsIdempotent(t *testing.T) {
	server, _ := mockBackend(t)
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)

	// Safe before anything was connected.
	h.DisconnectAll()
	assert.Equal(t, allState(StateDisconnected), h.Status())

	h.Initialize(context.Background(), "tok")
	waitStatus(t, h, allState(StateConnected))

	h.DisconnectAll()
	assert.Equal(t, allState(StateDisconnected), h.Status())
	h.DisconnectAll()
	assert.Equal(t, allState(StateDisconnected), h.Status())
}

func TestHub_ReconnectAll(t *testing.T) {
	server, _ := mockBackend(t)
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)
	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()
	waitStatus(t, h, allState(StateConnected))

	h.DisconnectAll()
	assert.Equal(t, allState(StateDisconnected), h.Status())

	// Reconnect reuses the stored token.
	h.ReconnectAll()
	waitStatus(t, h, allState(StateConnected))
}

func TestHub_ReconnectAllNoOpWhileDisabled(t *testing.T) {
	h := NewHub(testHubConfig("ws://127.0.0.1:1"), &fakeProber{}, nil)
	h.DisableAll()

	h.ReconnectAll()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, allState(StateDisabled), h.Status())
}

func TestHub_StatusSubscriberGetsFullTriple(t *testing.T) {
	server, _ := mockBackend(t)
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)

	var mu sync.Mutex
	var triples []Status
	h.Registry().SubscribeStatus(func(s Status) {
		mu.Lock()
		triples = append(triples, s)
		mu.Unlock()
	})

	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()
	waitStatus(t, h, allState(StateConnected))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, triples)
	// Every push carries the whole triple; the last one shows all three up.
	assert.Equal(t, allState(StateConnected), triples[len(triples)-1])
}

func TestHub_FramesReachSubscribers(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if r.URL.Path == "/ws/notifications/tok" {
			conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"notification","message":"fill","notification_type":"success"}`))
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)

	got := make(chan []byte, 1)
	h.Registry().Subscribe(ConcernNotification, func(data []byte) {
		select {
		case got <- data:
		default:
		}
	})

	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()

	select {
	case data := <-got:
		n, err := model.DecodeNotification(data)
		require.NoError(t, err)
		assert.Equal(t, "fill", n.Message)
		assert.Equal(t, "success", n.NotificationType)
	case <-time.After(2 * time.Second):
		t.Fatal("notification frame never reached the subscriber")
	}
}

func TestHub_ExhaustedRetriesReprobeAndDisable(t *testing.T) {
	kill := make(chan struct{})
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		go func() {
			<-kill
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	// First probe passes, every later one fails.
	prober := &fakeProber{script: []error{nil, errors.New("gone")}}

	h := NewHub(testHubConfig(wsURL(server)), prober, nil)
	h.Initialize(context.Background(), "tok")
	waitStatus(t, h, allState(StateConnected))

	// Kill the backend: channels lose their connections, burn through
	// their retry budgets, and the hub's re-probe finds the service gone.
	server.Close()
	close(kill)

	waitStatus(t, h, allState(StateDisabled))
	assert.True(t, h.Disabled())
	assert.GreaterOrEqual(t, prober.Calls(), 2)
}

func TestHub_InitializeRecoversFromDisabled(t *testing.T) {
	server, _ := mockBackend(t)
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)
	h.DisableAll()
	assert.Equal(t, allState(StateDisabled), h.Status())

	h.Initialize(context.Background(), "tok")
	defer h.DisconnectAll()
	waitStatus(t, h, allState(StateConnected))
	assert.False(t, h.Disabled())
}

func TestHub_InitializeTwiceKeepsOneConnectionPerChannel(t *testing.T) {
	var conns atomic.Int32
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conns.Add(1)
		defer conns.Add(-1)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	h := NewHub(testHubConfig(wsURL(server)), &fakeProber{}, nil)
	h.Initialize(context.Background(), "tok-1")
	waitStatus(t, h, allState(StateConnected))

	h.Initialize(context.Background(), "tok-2")
	defer h.DisconnectAll()
	waitStatus(t, h, allState(StateConnected))

	require.Eventually(t, func() bool { return conns.Load() == 3 },
		2*time.Second, 5*time.Millisecond,
		"stale connections must be torn down, got %d live", conns.Load())
}
