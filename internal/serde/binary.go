package serde

import (
	"github.com/yanun0323/errors"

	"main/internal/codec"
	"main/internal/schema"
)

// Payload tags for the binary wire format.
const (
	tagTradeTick byte = iota + 1
	tagQuoteTick
	tagBar
	tagOrderFilled
	tagPositionChanged
)

// Binary serializes the publishable schema messages with the fixed-layout
// codec, prefixed with a one-byte type tag.
type Binary struct{}

func (Binary) Marshal(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case schema.TradeTick:
		return codec.EncodeTradeTick([]byte{tagTradeTick}, m), nil
	case *schema.TradeTick:
		return codec.EncodeTradeTick([]byte{tagTradeTick}, *m), nil
	case schema.QuoteTick:
		return codec.EncodeQuoteTick([]byte{tagQuoteTick}, m), nil
	case *schema.QuoteTick:
		return codec.EncodeQuoteTick([]byte{tagQuoteTick}, *m), nil
	case schema.Bar:
		return codec.EncodeBar([]byte{tagBar}, m), nil
	case *schema.Bar:
		return codec.EncodeBar([]byte{tagBar}, *m), nil
	case schema.OrderFilled:
		return codec.EncodeOrderFilled([]byte{tagOrderFilled}, m), nil
	case *schema.OrderFilled:
		return codec.EncodeOrderFilled([]byte{tagOrderFilled}, *m), nil
	case schema.PositionChanged:
		return codec.EncodePositionChanged([]byte{tagPositionChanged}, m), nil
	case *schema.PositionChanged:
		return codec.EncodePositionChanged([]byte{tagPositionChanged}, *m), nil
	default:
		return nil, errors.Errorf("binary serializer: unsupported message type %T", msg)
	}
}

func (Binary) Unmarshal(data []byte, msg any) error {
	if len(data) < 1 {
		return errors.New("binary serializer: payload is empty")
	}
	tag, payload := data[0], data[1:]

	switch m := msg.(type) {
	case *schema.TradeTick:
		if tag != tagTradeTick {
			return errors.Errorf("binary serializer: tag %d is not a trade tick", tag)
		}
		t, ok := codec.DecodeTradeTick(payload)
		if !ok {
			return errors.New("binary serializer: malformed trade tick")
		}
		*m = t
	case *schema.QuoteTick:
		if tag != tagQuoteTick {
			return errors.Errorf("binary serializer: tag %d is not a quote tick", tag)
		}
		q, ok := codec.DecodeQuoteTick(payload)
		if !ok {
			return errors.New("binary serializer: malformed quote tick")
		}
		*m = q
	case *schema.Bar:
		if tag != tagBar {
			return errors.Errorf("binary serializer: tag %d is not a bar", tag)
		}
		b, ok := codec.DecodeBar(payload)
		if !ok {
			return errors.New("binary serializer: malformed bar")
		}
		*m = b
	case *schema.OrderFilled:
		if tag != tagOrderFilled {
			return errors.Errorf("binary serializer: tag %d is not an order filled", tag)
		}
		f, ok := codec.DecodeOrderFilled(payload)
		if !ok {
			return errors.New("binary serializer: malformed order filled")
		}
		*m = f
	case *schema.PositionChanged:
		if tag != tagPositionChanged {
			return errors.Errorf("binary serializer: tag %d is not a position changed", tag)
		}
		p, ok := codec.DecodePositionChanged(payload)
		if !ok {
			return errors.New("binary serializer: malformed position changed")
		}
		*m = p
	default:
		return errors.Errorf("binary serializer: unsupported target type %T", msg)
	}
	return nil
}
