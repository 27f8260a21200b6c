package validation

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// One Bitcoin is divisible to eight decimal places (satoshis), and there will
// never be more than 21 million of them. Holdings input is validated against
// both limits before any chart is generated.
var (
	DefaultHoldingsAmount = decimal.NewFromInt(1)
	MaxSupply             = decimal.NewFromInt(21_000_000)
)

const satoshiDecimalPlaces = 8

var (
	ErrNotANumber       = errors.New("holdings amount is not a number")
	ErrNotPositive      = errors.New("holdings amount must be greater than zero")
	ErrExceedsMaxSupply = errors.New("holdings amount exceeds the 21,000,000 BTC supply limit")
	ErrTooPrecise       = errors.New("holdings amount has more than eight decimal places")
)

// ParseHoldingsAmount validates a raw holdings-amount input string. On any
// validation error the caller keeps its prior state; for ErrNotANumber the
// client is expected to reset its pending input to DefaultHoldingsAmount.
func ParseHoldingsAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, ErrNotANumber
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}
	if amount.GreaterThan(MaxSupply) {
		return decimal.Zero, ErrExceedsMaxSupply
	}
	// Value-based check: "1.000000000" normalizes to 1 and passes, matching
	// the numeric rather than textual reading of the eight-decimals rule.
	if !amount.Equal(amount.Truncate(satoshiDecimalPlaces)) {
		return decimal.Zero, ErrTooPrecise
	}
	return amount, nil
}
