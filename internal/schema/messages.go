package schema

import "reflect"

// OrderSide describes order direction.
type OrderSide uint16

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

// OrderType describes order type.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
)

// TimeInForce describes order time-in-force.
type TimeInForce uint16

const (
	TimeInForceUnknown TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
)

// TradeTick is a single executed trade on a symbol.
type TradeTick struct {
	Symbol        string
	Price         Price
	Size          Quantity
	AggressorSide OrderSide
	TradeID       string
	TsEvent       int64
	TsInit        int64
}

// QuoteTick is a top-of-book bid/ask snapshot.
type QuoteTick struct {
	Symbol   string
	BidPrice Price
	AskPrice Price
	BidSize  Quantity
	AskSize  Quantity
	TsEvent  int64
	TsInit   int64
}

// Bar is an aggregated OHLCV interval.
type Bar struct {
	Symbol  string
	Open    Price
	High    Price
	Low     Price
	Close   Price
	Volume  Quantity
	TsEvent int64
	TsInit  int64
}

// OrderFilled reports an execution against a working order.
type OrderFilled struct {
	OrderID uint64
	Symbol  string
	Side    OrderSide
	Price   Price
	Qty     Quantity
	Fee     Fee
	TsEvent int64
	TsInit  int64
}

// PositionChanged reports the net position after a fill.
type PositionChanged struct {
	Symbol   string
	Net      Quantity
	AvgPrice Price
	TsEvent  int64
	TsInit   int64
}

// SubmitOrder asks the execution endpoint to place an order.
// Commands stay in-process and are never forwarded externally.
type SubmitOrder struct {
	OrderID     uint64
	Symbol      string
	Side        OrderSide
	Type        OrderType
	TimeInForce TimeInForce
	Price       Price
	Qty         Quantity
}

// CancelOrder asks the execution endpoint to cancel a working order.
type CancelOrder struct {
	OrderID uint64
	Symbol  string
}

// ExternalPublishingTypes is the universe of message types the platform is
// willing to forward off-process. The bus subtracts the configured filter
// from this set at construction.
var ExternalPublishingTypes = map[reflect.Type]struct{}{
	reflect.TypeOf(TradeTick{}):       {},
	reflect.TypeOf(QuoteTick{}):       {},
	reflect.TypeOf(Bar{}):             {},
	reflect.TypeOf(OrderFilled{}):     {},
	reflect.TypeOf(PositionChanged{}): {},
}

// TypeByName resolves a publishable type from its bare name, for config
// files that list type filters as strings.
func TypeByName(name string) (reflect.Type, bool) {
	for t := range ExternalPublishingTypes {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
