package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func TestTradeTickRoundTrip(t *testing.T) {
	tick := schema.TradeTick{
		Symbol:        "BTC-USDT",
		Price:         4_200_050_000_000,
		Size:          25_000_000,
		AggressorSide: schema.OrderSideSell,
		TradeID:       "9f0c9a4e",
		TsEvent:       1_700_000_000_000_000_001,
		TsInit:        1_700_000_000_000_000_002,
	}
	payload := EncodeTradeTick(nil, tick)
	decoded, ok := DecodeTradeTick(payload)
	require.True(t, ok)
	assert.Equal(t, tick, decoded)
}

func TestQuoteTickRoundTrip(t *testing.T) {
	quote := schema.QuoteTick{
		Symbol:   "ETH-USDT",
		BidPrice: 1999_00000000,
		AskPrice: 2001_00000000,
		BidSize:  5_00000000,
		AskSize:  3_00000000,
		TsEvent:  10,
		TsInit:   11,
	}
	payload := EncodeQuoteTick(nil, quote)
	decoded, ok := DecodeQuoteTick(payload)
	require.True(t, ok)
	assert.Equal(t, quote, decoded)
}

func TestOrderFilledRoundTrip(t *testing.T) {
	fill := schema.OrderFilled{
		OrderID: 1001,
		Symbol:  "SOL-USDT",
		Side:    schema.OrderSideBuy,
		Price:   150_00000000,
		Qty:     2_00000000,
		Fee:     1500,
		TsEvent: 20,
		TsInit:  21,
	}
	payload := EncodeOrderFilled(nil, fill)
	decoded, ok := DecodeOrderFilled(payload)
	require.True(t, ok)
	assert.Equal(t, fill, decoded)
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	payload := EncodeTradeTick(nil, schema.TradeTick{Symbol: "BTC-USDT", TradeID: "t1"})
	for i := 0; i < len(payload); i++ {
		_, ok := DecodeTradeTick(payload[:i])
		assert.Falsef(t, ok, "truncated payload of %d bytes decoded", i)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	payload := EncodeBar(nil, schema.Bar{Symbol: "BTC-USDT"})
	payload = append(payload, 0x00)
	_, ok := DecodeBar(payload)
	assert.False(t, ok)
}
