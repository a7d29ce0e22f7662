package token

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minDisplayPlaces is the minimum number of decimal places used when
// formatting amounts.
const minDisplayPlaces = 2

// ParseAmount parses a strictly positive decimal string.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return d, nil
}

// FormatAmount renders d without losing precision, using at least two
// decimal places.
func FormatAmount(d decimal.Decimal) string {
	places := -d.Exponent()
	if places < minDisplayPlaces {
		places = minDisplayPlaces
	}
	return d.StringFixed(places)
}
