package domain

import "fmt"

// Amount is a single directional posting of money against one account.
// It is created with its entry and never mutated.
type Amount struct {
	AccountID string
	Money     Money
	Side      Side
}

// AmountPolicy decides which minor-unit values an amount may carry.
// Negative values are always rejected; zero is rejected unless AllowZero is set.
type AmountPolicy struct {
	AllowZero bool
}

// DefaultAmountPolicy rejects zero and negative amounts.
var DefaultAmountPolicy = AmountPolicy{}

// Validate checks m against the policy.
func (p AmountPolicy) Validate(m Money) error {
	if m.IsNegative() {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, m.Amount)
	}
	if m.IsZero() && !p.AllowZero {
		return ErrInvalidAmount
	}
	if m.Amount > MaxMinorUnits {
		return fmt.Errorf("%w: %d", ErrAmountTooLarge, m.Amount)
	}
	return nil
}

// NewAmount creates an amount under DefaultAmountPolicy.
func NewAmount(accountID string, money Money, side Side) (Amount, error) {
	return DefaultAmountPolicy.NewAmount(accountID, money, side)
}

// NewAmount creates an amount after validating its value against the policy.
func (p AmountPolicy) NewAmount(accountID string, money Money, side Side) (Amount, error) {
	if err := p.Validate(money); err != nil {
		return Amount{}, err
	}
	if side != Debit && side != Credit {
		return Amount{}, fmt.Errorf("%w: %q", ErrWrongSide, side)
	}
	return Amount{AccountID: accountID, Money: money, Side: side}, nil
}

// Currency returns the currency of the amount's money.
func (a Amount) Currency() string {
	return a.Money.Currency
}

// signedAmount is the amount's contribution to debit minus credit.
func (a Amount) signedAmount() int64 {
	if a.Side == Credit {
		return -a.Money.Amount
	}
	return a.Money.Amount
}

// SumMoney adds up the amounts of any sequence of Amounts, regardless of side.
// The currency of the result is taken from the first amount; callers check
// currency uniformity beforehand.
func SumMoney(amounts []Amount) Money {
	var sum Money
	for i, a := range amounts {
		if i == 0 {
			sum.Currency = a.Currency()
		}
		sum.Amount += a.Money.Amount
	}
	return sum
}
