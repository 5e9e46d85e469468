package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Monetary values are fixed-point int64s. Each symbol's configuration
// supplies the number of decimal places its prices and sizes carry; the
// types themselves do not store it.

// Price is a fixed-point price.
type Price int64

// Format renders the price as a decimal string with the given number of
// decimal places.
func (p Price) Format(decimals int) string {
	return formatFixed(int64(p), decimals)
}

// Quantity is a fixed-point size.
type Quantity int64

// Format renders the quantity as a decimal string with the given number of
// decimal places.
func (q Quantity) Format(decimals int) string {
	return formatFixed(int64(q), decimals)
}

// Fee is a fixed-point fee amount.
type Fee int64

// Format renders the fee as a decimal string with the given number of
// decimal places.
func (f Fee) Format(decimals int) string {
	return formatFixed(int64(f), decimals)
}

// ParsePrice reads a decimal string into a fixed-point price with the given
// number of decimal places.
func ParsePrice(s string, decimals int) (Price, error) {
	v, err := parseFixed(s, decimals)
	return Price(v), err
}

// ParseQuantity reads a decimal string into a fixed-point quantity with the
// given number of decimal places.
func ParseQuantity(s string, decimals int) (Quantity, error) {
	v, err := parseFixed(s, decimals)
	return Quantity(v), err
}

func formatFixed(v int64, decimals int) string {
	if decimals <= 0 {
		return strconv.FormatInt(v, 10)
	}

	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = -u
	}

	digits := strconv.FormatUint(u, 10)
	if len(digits) <= decimals {
		return sign + "0." + strings.Repeat("0", decimals-len(digits)) + digits
	}
	split := len(digits) - decimals
	return sign + digits[:split] + "." + digits[split:]
}

func parseFixed(s string, decimals int) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("decimal string is empty")
	}
	if decimals < 0 {
		return 0, fmt.Errorf("decimals must be >= 0")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole := s
	frac := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		whole = s[:dot]
		frac = s[dot+1:]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid decimal string: %q", s)
	}
	if len(frac) > decimals {
		return 0, fmt.Errorf("decimal %q exceeds %d decimal places", s, decimals)
	}

	var digits strings.Builder
	digits.Grow(len(whole) + decimals)
	if whole == "" {
		whole = "0"
	}
	digits.WriteString(whole)
	digits.WriteString(frac)
	for i := len(frac); i < decimals; i++ {
		digits.WriteByte('0')
	}

	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal string: %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}
