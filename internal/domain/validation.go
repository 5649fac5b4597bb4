package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidDocumentRef = errors.New("invalid document reference")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxDescriptionLength = 1024
	MaxDocumentRefLength = 255
	MaxMinorUnits        = 1_000_000_000_000_000 // 10^15 minor units per amount
)

// Minor-unit exponents of accepted currencies (ISO 4217).
var currencyExponents = map[string]int32{
	"USD": 2, "EUR": 2, "GBP": 2, "JPY": 0,
	"CNY": 2, "AUD": 2, "CAD": 2, "CHF": 2,
	"SEK": 2, "NZD": 2, "KRW": 0, "SGD": 2,
	"NOK": 2, "MXN": 2, "INR": 2, "BRL": 2,
	"ZAR": 2, "RUB": 2, "TRY": 2, "HKD": 2,
	"BHD": 3, "KWD": 3, "JOD": 3, "NGN": 2,
}

// MinorUnitExponent returns how many decimal places a currency's minor unit
// represents. Unknown currencies are treated as having two.
func MinorUnitExponent(currency string) int32 {
	if exp, ok := currencyExponents[currency]; ok {
		return exp
	}
	return 2
}

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = NormalizeCurrency(currency)

	if _, ok := currencyExponents[currency]; !ok {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateDescription limits description length. Presence is an entry
// invariant and is checked by ValidateEntry.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrDescriptionTooLong, MaxDescriptionLength)
	}
	return nil
}

// ValidateDocumentRef checks that a document reference, when present, is complete.
func ValidateDocumentRef(ref *DocumentRef) error {
	if ref == nil {
		return nil
	}

	if strings.TrimSpace(ref.Type) == "" || strings.TrimSpace(ref.ID) == "" {
		return fmt.Errorf("%w: type and id are both required", ErrInvalidDocumentRef)
	}

	if len(ref.Type) > MaxDocumentRefLength || len(ref.ID) > MaxDocumentRefLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDocumentRef, MaxDocumentRefLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
