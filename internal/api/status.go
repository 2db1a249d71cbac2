package api

import (
	"context"
	"net/http"
)

// DefaultStatusPath is the backend's system status endpoint.
const DefaultStatusPath = "/api/system/status"

// SystemStatus is the backend's detailed health document.
type SystemStatus struct {
	Status        string        `json:"status"`
	Timestamp     int64         `json:"timestamp"`
	MarketStatus  MarketStatus  `json:"market_status"`
	TradingStatus TradingStatus `json:"trading_status"`
}

// MarketStatus reports which markets are currently in session.
type MarketStatus struct {
	KRMarketOpen bool `json:"kr_market_open"`
	USMarketOpen bool `json:"us_market_open"`
}

// TradingStatus reports the state of the backend's trading engines.
type TradingStatus struct {
	AutoTradingEnabled    bool `json:"auto_trading_enabled"`
	GPTAutoTradingEnabled bool `json:"gpt_auto_trading_enabled"`
	GPTAutoTraderRunning  bool `json:"gpt_auto_trader_running"`
}

// SystemStatus fetches the detailed health document.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.get(ctx, c.statusPath, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CheckHealth probes the status endpoint once, without retries. Any 2xx
// answer counts as available regardless of body content; the caller
// bounds the wait through ctx.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, c.statusPath, nil)
	return err
}
