package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client owns a single WebSocket connection. It pushes raw inbound frames
// to the messages channel and transport failures to the errors channel;
// the owning Channel reacts to both. A client is used for exactly one
// connection and discarded on close.
type client struct {
	url          string
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger

	conn *websocket.Conn

	messages chan []byte
	errors   chan error
	done     chan struct{}

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.RWMutex
	connected bool
	closed    bool
}

// newClient creates a transport client for one connection attempt.
func newClient(url string, cfg ChannelConfig, logger *slog.Logger) *client {
	if logger == nil {
		logger = slog.Default()
	}
	return &client{
		url:          url,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		logger:       logger,
		messages:     make(chan []byte, cfg.BufferSize),
		errors:       make(chan error, 1),
		done:         make(chan struct{}),
	}
}

// connect dials the endpoint and starts the read loop.
func (c *client) connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	// Transport-level control frames also count as liveness.
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()

	c.logger.Debug("websocket connected", "url", c.url)
	return nil
}

// close gracefully closes the connection. Idempotent.
func (c *client) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	c.mu.Unlock()

	close(c.done)

	if c.conn != nil {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
			time.Now().Add(time.Second),
		)
		return c.conn.Close()
	}

	return nil
}

// send writes raw bytes to the connection.
func (c *client) send(data []byte) error {
	c.mu.RLock()
	if !c.connected {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	c.mu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// isConnected returns the current connection state.
func (c *client) isConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// readLoop reads frames until the connection dies or close is called.
func (c *client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			// Ignore errors after close() is called.
			select {
			case <-c.done:
				return
			default:
				select {
				case c.errors <- err:
				default:
				}
				return
			}
		}

		c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))

		select {
		case c.messages <- data:
		case <-c.done:
			return
		default:
			c.logger.Warn("frame buffer full, dropping frame")
		}
	}
}
