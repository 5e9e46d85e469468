package codec

import (
	"main/internal/schema"
)

// EncodeTradeTick serializes a trade tick payload.
func EncodeTradeTick(dst []byte, t schema.TradeTick) []byte {
	dst = appendString(dst, t.Symbol)
	dst = appendInt64(dst, int64(t.Price))
	dst = appendInt64(dst, int64(t.Size))
	dst = appendUint16(dst, uint16(t.AggressorSide))
	dst = appendString(dst, t.TradeID)
	dst = appendInt64(dst, t.TsEvent)
	dst = appendInt64(dst, t.TsInit)
	return dst
}

// DecodeTradeTick parses a trade tick payload.
func DecodeTradeTick(src []byte) (schema.TradeTick, bool) {
	r := newReader(src)
	t := schema.TradeTick{
		Symbol:        r.str(),
		Price:         schema.Price(r.int64()),
		Size:          schema.Quantity(r.int64()),
		AggressorSide: schema.OrderSide(r.uint16()),
		TradeID:       r.str(),
		TsEvent:       r.int64(),
		TsInit:        r.int64(),
	}
	if !r.done() {
		return schema.TradeTick{}, false
	}
	return t, true
}

// EncodeQuoteTick serializes a quote tick payload.
func EncodeQuoteTick(dst []byte, q schema.QuoteTick) []byte {
	dst = appendString(dst, q.Symbol)
	dst = appendInt64(dst, int64(q.BidPrice))
	dst = appendInt64(dst, int64(q.AskPrice))
	dst = appendInt64(dst, int64(q.BidSize))
	dst = appendInt64(dst, int64(q.AskSize))
	dst = appendInt64(dst, q.TsEvent)
	dst = appendInt64(dst, q.TsInit)
	return dst
}

// DecodeQuoteTick parses a quote tick payload.
func DecodeQuoteTick(src []byte) (schema.QuoteTick, bool) {
	r := newReader(src)
	q := schema.QuoteTick{
		Symbol:   r.str(),
		BidPrice: schema.Price(r.int64()),
		AskPrice: schema.Price(r.int64()),
		BidSize:  schema.Quantity(r.int64()),
		AskSize:  schema.Quantity(r.int64()),
		TsEvent:  r.int64(),
		TsInit:   r.int64(),
	}
	if !r.done() {
		return schema.QuoteTick{}, false
	}
	return q, true
}

// EncodeBar serializes a bar payload.
func EncodeBar(dst []byte, b schema.Bar) []byte {
	dst = appendString(dst, b.Symbol)
	dst = appendInt64(dst, int64(b.Open))
	dst = appendInt64(dst, int64(b.High))
	dst = appendInt64(dst, int64(b.Low))
	dst = appendInt64(dst, int64(b.Close))
	dst = appendInt64(dst, int64(b.Volume))
	dst = appendInt64(dst, b.TsEvent)
	dst = appendInt64(dst, b.TsInit)
	return dst
}

// DecodeBar parses a bar payload.
func DecodeBar(src []byte) (schema.Bar, bool) {
	r := newReader(src)
	b := schema.Bar{
		Symbol:  r.str(),
		Open:    schema.Price(r.int64()),
		High:    schema.Price(r.int64()),
		Low:     schema.Price(r.int64()),
		Close:   schema.Price(r.int64()),
		Volume:  schema.Quantity(r.int64()),
		TsEvent: r.int64(),
		TsInit:  r.int64(),
	}
	if !r.done() {
		return schema.Bar{}, false
	}
	return b, true
}
