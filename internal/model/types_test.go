package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameType(t *testing.T) {
	assert.Equal(t, "ping", FrameType([]byte(`{"type":"ping","timestamp":"2025-01-15 09:30:00"}`)))
	assert.Equal(t, "price_update", FrameType([]byte(`{"type":"price_update","data":{}}`)))
	assert.Equal(t, "", FrameType([]byte(`{"data":{}}`)))
	assert.Equal(t, "", FrameType([]byte(`not json`)))
	assert.Equal(t, "", FrameType(nil))
}

func TestIsHeartbeat(t *testing.T) {
	assert.True(t, IsHeartbeat(TypePing))
	assert.True(t, IsHeartbeat(TypePong))
	assert.True(t, IsHeartbeat(TypeHeartbeat))
	assert.False(t, IsHeartbeat(TypePriceUpdate))
	assert.False(t, IsHeartbeat(TypeConnectionEstablished))
	assert.False(t, IsHeartbeat(""))
}

func TestSymbolMarket(t *testing.T) {
	assert.Equal(t, MarketKR, SymbolMarket("005930"))
	assert.Equal(t, MarketKR, SymbolMarket("035420"))
	assert.Equal(t, MarketUS, SymbolMarket("AAPL"))
	assert.Equal(t, MarketUS, SymbolMarket("BRK.B"))
	// 6 chars but not numeric
	assert.Equal(t, MarketUS, SymbolMarket("GOOGL1"))
	// numeric but wrong length
	assert.Equal(t, MarketUS, SymbolMarket("12345"))
}

func TestDecodePriceUpdate(t *testing.T) {
	data := []byte(`{
		"type": "price_update",
		"data": {
			"005930": {"symbol":"005930","market":"KR","price":71200,"change":800,"change_percent":1.14,"volume":12034500,"timestamp":"2025-01-15 10:00:01"},
			"AAPL":   {"symbol":"AAPL","market":"US","price":232.5,"change":-1.2,"change_percent":-0.51,"volume":48210000,"timestamp":"2025-01-15 10:00:01"}
		},
		"timestamp": "2025-01-15 10:00:01"
	}`)

	u, err := DecodePriceUpdate(data)
	require.NoError(t, err)
	require.Len(t, u.Data, 2)

	samsung := u.Data["005930"]
	assert.Equal(t, MarketKR, samsung.Market)
	assert.Equal(t, 71200.0, samsung.Price)
	assert.Equal(t, 1.14, samsung.ChangePercent)

	apple := u.Data["AAPL"]
	assert.Equal(t, -1.2, apple.Change)
	assert.Equal(t, int64(48210000), apple.Volume)
}

func TestDecodeTradingUpdate(t *testing.T) {
	data := []byte(`{
		"type": "trading_update",
		"update_type": "order_executed",
		"data": {"symbol":"005930","side":"buy","quantity":10,"price":71200},
		"timestamp": "2025-01-15 10:05:30"
	}`)

	u, err := DecodeTradingUpdate(data)
	require.NoError(t, err)
	assert.Equal(t, "order_executed", u.UpdateType)
	assert.JSONEq(t, `{"symbol":"005930","side":"buy","quantity":10,"price":71200}`, string(u.Data))
}

func TestDecodeNotification(t *testing.T) {
	data := []byte(`{
		"type": "notification",
		"message": "주문이 체결되었습니다",
		"notification_type": "success",
		"timestamp": "2025-01-15 10:05:31"
	}`)

	n, err := DecodeNotification(data)
	require.NoError(t, err)
	assert.Equal(t, "success", n.NotificationType)
	assert.Equal(t, "주문이 체결되었습니다", n.Message)
	assert.Nil(t, n.Data)
}
