package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an integer amount of minor units tagged with a currency code.
type Money struct {
	Amount   int64
	Currency string
}

// NewMoney creates a Money value.
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Decimal converts minor units to a decimal in major units, using the
// currency's minor-unit exponent (2 when the currency is unknown).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -MinorUnitExponent(m.Currency))
}

// String renders the amount in major units followed by the currency.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(MinorUnitExponent(m.Currency)), m.Currency)
}

// MoneyFromDecimal converts a major-unit decimal into minor units. The value
// must not carry more precision than the currency allows.
func MoneyFromDecimal(d decimal.Decimal, currency string) (Money, error) {
	exp := MinorUnitExponent(currency)
	shifted := d.Shift(exp)
	if !shifted.IsInteger() {
		return Money{}, fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d, exp)
	}

	if shifted.Abs().GreaterThan(decimal.NewFromInt(MaxMinorUnits)) {
		return Money{}, fmt.Errorf("%w: %s is out of range", ErrAmountTooLarge, d)
	}

	return Money{Amount: shifted.IntPart(), Currency: currency}, nil
}
