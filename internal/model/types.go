package model

import "encoding/json"

// Frame type discriminators used by the backend.
const (
	TypePing                  = "ping"
	TypePong                  = "pong"
	TypeHeartbeat             = "heartbeat"
	TypePriceUpdate           = "price_update"
	TypeTradingUpdate         = "trading_update"
	TypeNotification          = "notification"
	TypeConnectionEstablished = "connection_established"
	TypeError                 = "error"
	TypeUpdateWatchedSymbols  = "update_watched_symbols"
)

// Markets of interest.
const (
	MarketKR = "KR"
	MarketUS = "US"
)

// Envelope carries only the discriminator, used to classify an inbound
// frame before deciding whether to intercept or forward it.
type Envelope struct {
	Type string `json:"type"`
}

// Ping is the keep-alive frame sent in both directions.
type Ping struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Pong is the reply to a Ping.
type Pong struct {
	Type string `json:"type"`
}

// PriceQuote is a single symbol's quote inside a price_update frame.
type PriceQuote struct {
	Symbol        string  `json:"symbol"`
	Market        string  `json:"market"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// PriceUpdate maps symbol -> quote.
type PriceUpdate struct {
	Type      string                `json:"type"`
	Data      map[string]PriceQuote `json:"data"`
	Timestamp string                `json:"timestamp"`
}

// TradingUpdate carries an automation event: order executed, cycle
// completed, system status changed. Data is forwarded opaquely.
type TradingUpdate struct {
	Type       string          `json:"type"`
	UpdateType string          `json:"update_type"`
	Data       json.RawMessage `json:"data"`
	Timestamp  string          `json:"timestamp"`
}

// Notification is a user-facing message with a severity/category tag.
type Notification struct {
	Type             string          `json:"type"`
	Message          string          `json:"message"`
	NotificationType string          `json:"notification_type"`
	Data             json.RawMessage `json:"data,omitempty"`
	Timestamp        string          `json:"timestamp"`
}

// ConnectionEstablished is sent by the server once per accepted connection.
type ConnectionEstablished struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// UpdateWatchedSymbols replaces the server-side watched symbol set for
// this connection.
type UpdateWatchedSymbols struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
	Markets []string `json:"markets"`
}

// PriceRequest asks the server for a quote refresh of the given symbols.
type PriceRequest struct {
	Symbols []string `json:"symbols"`
	Markets []string `json:"markets"`
}

// FrameType extracts the "type" discriminator from a raw frame. Returns
// an empty string for malformed JSON or frames without a type field.
func FrameType(data []byte) string {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Type
}

// IsHeartbeat reports whether a frame type belongs to the keep-alive
// family that the connection layer intercepts instead of forwarding.
func IsHeartbeat(frameType string) bool {
	switch frameType {
	case TypePing, TypePong, TypeHeartbeat:
		return true
	}
	return false
}

// SymbolMarket classifies a symbol: 6-digit numeric codes trade on the
// Korean exchange, everything else is assumed US.
func SymbolMarket(symbol string) string {
	if len(symbol) != 6 {
		return MarketUS
	}
	for _, r := range symbol {
		if r < '0' || r > '9' {
			return MarketUS
		}
	}
	return MarketKR
}

// DecodePriceUpdate parses a price_update frame.
func DecodePriceUpdate(data []byte) (PriceUpdate, error) {
	var u PriceUpdate
	err := json.Unmarshal(data, &u)
	return u, err
}

// DecodeTradingUpdate parses a trading_update frame.
func DecodeTradingUpdate(data []byte) (TradingUpdate, error) {
	var u TradingUpdate
	err := json.Unmarshal(data, &u)
	return u, err
}

// DecodeNotification parses a notification frame.
func DecodeNotification(data []byte) (Notification, error) {
	var n Notification
	err := json.Unmarshal(data, &n)
	return n, err
}
