package domain

import (
	"errors"
	"strings"
)

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountType = errors.New("invalid account type")

	// Amount errors
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrNegativeAmount = errors.New("amount must not be negative")

	// Entry errors
	ErrEntryNotFound      = errors.New("entry not found")
	ErrMissingDescription = errors.New("entry must have a description")
	ErrNoDebitAmounts     = errors.New("entry must have at least one debit amount")
	ErrNoCreditAmounts    = errors.New("entry must have at least one credit amount")
	ErrMultipleCurrencies = errors.New("an entry can only have one currency")
	ErrUnbalancedEntry    = errors.New("the credit and debit amounts are not equal")
	ErrWrongSide          = errors.New("amount posted on the wrong side")
)

// ValidationError collects every violation found while validating an entry.
type ValidationError struct {
	Violations []error
}

func (e *ValidationError) Error() string {
	return "invalid entry: " + strings.Join(e.Messages(), "; ")
}

// Unwrap exposes the violations to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Violations
}

// Messages returns the violation messages in the order they were found.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return msgs
}
