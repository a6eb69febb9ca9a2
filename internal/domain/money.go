package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances and amounts are held internally as int64 cents; decimals exist
// only at the API boundary.

// ParseAmount converts a decimal money value into cents. Values with more
// than two fractional digits are rejected rather than rounded.
func ParseAmount(d decimal.Decimal) (int64, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("ParseAmount: %q has sub-cent precision: %w", d.String(), ErrValidation)
	}
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("ParseAmount: %q out of range: %w", d.String(), ErrValidation)
	}
	return cents.IntPart(), nil
}

// FormatAmount renders cents with exactly two fractional digits, the shape
// every money field leaves the API in. Trailing zeros are kept: 12050 cents
// is "120.50", never "120.5".
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
