package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a decimal amount cannot be represented as whole cents.
var ErrInvalidAmount = errors.New("invalid amount")

// MaxCents is the largest amount a single transaction may carry.
const MaxCents Cents = 1 << 62

// ErrAmountOverflow is returned when a sum of amounts does not fit in Cents.
var ErrAmountOverflow = errors.New("amount overflow")

var maxAmount = decimal.New(int64(MaxCents), 0)

// Cents is an amount of money in the smallest currency unit.
// Money never travels as a float anywhere in the ledger.
type Cents int64

// Positive reports whether the amount is at least one cent.
func (c Cents) Positive() bool {
	return c >= 1
}

// Add returns c+other, or ErrAmountOverflow when the sum does not fit.
func (c Cents) Add(other Cents) (Cents, error) {
	sum := c + other
	if (other > 0 && sum < c) || (other < 0 && sum > c) {
		return 0, fmt.Errorf("%w: %d + %d", ErrAmountOverflow, int64(c), int64(other))
	}
	return sum, nil
}

// String renders the amount as a decimal with two fraction digits, e.g. "1234.50".
func (c Cents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

// ParseAmount converts a decimal string such as "12.34" or "12,34" into cents.
// More than two fraction digits are rejected rather than rounded.
func ParseAmount(s string) (Cents, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	scaled := d.Shift(2)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	if scaled.Abs().GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	return Cents(scaled.IntPart()), nil
}
