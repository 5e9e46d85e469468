package serde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func TestJSONRoundTrip(t *testing.T) {
	tick := schema.TradeTick{
		Symbol:  "BTC-USDT",
		Price:   42_000_00000000,
		Size:    1_00000000,
		TradeID: "t-1",
		TsEvent: 1,
		TsInit:  2,
	}
	data, err := JSON{}.Marshal(tick)
	require.NoError(t, err)

	var decoded schema.TradeTick
	require.NoError(t, JSON{}.Unmarshal(data, &decoded))
	assert.Equal(t, tick, decoded)
}

func TestBinaryRoundTrip(t *testing.T) {
	quote := schema.QuoteTick{
		Symbol:   "ETH-USDT",
		BidPrice: 1999_00000000,
		AskPrice: 2001_00000000,
		BidSize:  5,
		AskSize:  3,
		TsEvent:  10,
		TsInit:   11,
	}
	data, err := Binary{}.Marshal(quote)
	require.NoError(t, err)

	var decoded schema.QuoteTick
	require.NoError(t, Binary{}.Unmarshal(data, &decoded))
	assert.Equal(t, quote, decoded)
}

func TestBinaryPointerMessage(t *testing.T) {
	fill := &schema.OrderFilled{OrderID: 7, Symbol: "SOL-USDT"}
	data, err := Binary{}.Marshal(fill)
	require.NoError(t, err)

	var decoded schema.OrderFilled
	require.NoError(t, Binary{}.Unmarshal(data, &decoded))
	assert.Equal(t, *fill, decoded)
}

func TestBinaryRejectsUnsupportedType(t *testing.T) {
	_, err := Binary{}.Marshal("not a schema message")
	assert.Error(t, err)
}

func TestBinaryRejectsTagMismatch(t *testing.T) {
	data, err := Binary{}.Marshal(schema.TradeTick{Symbol: "BTC-USDT"})
	require.NoError(t, err)

	var decoded schema.QuoteTick
	assert.Error(t, Binary{}.Unmarshal(data, &decoded))
}

func TestBinaryRejectsEmptyPayload(t *testing.T) {
	var decoded schema.TradeTick
	assert.Error(t, Binary{}.Unmarshal(nil, &decoded))
}
