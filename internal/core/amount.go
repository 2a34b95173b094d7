package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a loosely typed monetary value into an exact
// decimal. Accepted inputs are decimal.Decimal, int, int64, and decimal
// strings. Floats are rejected outright: binary fractions have no place
// in money. Amounts finer than a cent are rejected as well.
func ParseAmount(v any) (decimal.Decimal, error) {
	var amt decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		amt = x
	case int:
		amt = decimal.NewFromInt(int64(x))
	case int64:
		amt = decimal.NewFromInt(x)
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Decimal{}, InvalidAmountError(fmt.Sprintf("bad decimal value: %v", x))
		}
		amt = parsed
	default:
		return decimal.Decimal{}, InvalidAmountError(fmt.Sprintf("bad decimal value: %v", v))
	}
	if amt.Exponent() < -2 {
		return decimal.Decimal{}, InvalidAmountError(fmt.Sprintf("no fractions of cents allowed: %v", v))
	}
	return amt, nil
}
