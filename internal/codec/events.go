package codec

import (
	"main/internal/schema"
)

// EncodeOrderFilled serializes an order filled payload.
func EncodeOrderFilled(dst []byte, f schema.OrderFilled) []byte {
	dst = appendUint64(dst, f.OrderID)
	dst = appendString(dst, f.Symbol)
	dst = appendUint16(dst, uint16(f.Side))
	dst = appendInt64(dst, int64(f.Price))
	dst = appendInt64(dst, int64(f.Qty))
	dst = appendInt64(dst, int64(f.Fee))
	dst = appendInt64(dst, f.TsEvent)
	dst = appendInt64(dst, f.TsInit)
	return dst
}

// DecodeOrderFilled parses an order filled payload.
func DecodeOrderFilled(src []byte) (schema.OrderFilled, bool) {
	r := newReader(src)
	f := schema.OrderFilled{
		OrderID: r.uint64(),
		Symbol:  r.str(),
		Side:    schema.OrderSide(r.uint16()),
		Price:   schema.Price(r.int64()),
		Qty:     schema.Quantity(r.int64()),
		Fee:     schema.Fee(r.int64()),
		TsEvent: r.int64(),
		TsInit:  r.int64(),
	}
	if !r.done() {
		return schema.OrderFilled{}, false
	}
	return f, true
}

// EncodePositionChanged serializes a position changed payload.
func EncodePositionChanged(dst []byte, p schema.PositionChanged) []byte {
	dst = appendString(dst, p.Symbol)
	dst = appendInt64(dst, int64(p.Net))
	dst = appendInt64(dst, int64(p.AvgPrice))
	dst = appendInt64(dst, p.TsEvent)
	dst = appendInt64(dst, p.TsInit)
	return dst
}

// DecodePositionChanged parses a position changed payload.
func DecodePositionChanged(src []byte) (schema.PositionChanged, bool) {
	r := newReader(src)
	p := schema.PositionChanged{
		Symbol:   r.str(),
		Net:      schema.Quantity(r.int64()),
		AvgPrice: schema.Price(r.int64()),
		TsEvent:  r.int64(),
		TsInit:   r.int64(),
	}
	if !r.done() {
		return schema.PositionChanged{}, false
	}
	return p, true
}
