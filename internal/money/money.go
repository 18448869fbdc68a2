// Package money converts between decimal amounts and integer minor units
// of the configured currency.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrFractionalMinorUnit = errors.New("the amount has more decimal places than the currency supports")
	ErrAmountOutOfRange    = errors.New("the amount is out of range")
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Currency is the single currency the ledger is kept in.
type Currency struct {
	Unit  currency.Unit
	Scale int32 // Number of decimal places of the minor unit
}

// ParseCurrency parses an ISO 4217 currency code such as "EUR".
func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, fmt.Errorf("invalid currency code '%s': %w", code, err)
	}

	scale, _ := currency.Standard.Rounding(unit)
	return Currency{
		Unit:  unit,
		Scale: int32(scale),
	}, nil
}

func (c Currency) String() string {
	return c.Unit.String()
}

// ToMinor converts an amount in the main unit to minor units.
func (c Currency) ToMinor(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(c.Scale)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s allows %d", ErrFractionalMinorUnit, c, c.Scale)
	}

	if shifted.GreaterThan(maxMinor) || shifted.LessThan(minMinor) {
		return 0, ErrAmountOutOfRange
	}

	return shifted.IntPart(), nil
}

// FromMinor converts minor units to an amount in the main unit.
func (c Currency) FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -c.Scale)
}
