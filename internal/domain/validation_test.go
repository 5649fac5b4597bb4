package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Accounts Receivable"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("usd"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	if got := NormalizeCurrency(" eur "); got != "EUR" {
		t.Fatalf("expected EUR, got %q", got)
	}
}

func TestMinorUnitExponent(t *testing.T) {
	t.Parallel()

	cases := map[string]int32{"USD": 2, "JPY": 0, "BHD": 3, "???": 2}
	for currency, want := range cases {
		if got := MinorUnitExponent(currency); got != want {
			t.Fatalf("MinorUnitExponent(%q) = %d, want %d", currency, got, want)
		}
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	if err := ValidateDescription("Receiving payment"); err != nil {
		t.Fatalf("expected valid description, got %v", err)
	}

	if err := ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1)); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
}

func TestValidateDocumentRef(t *testing.T) {
	t.Parallel()

	if err := ValidateDocumentRef(nil); err != nil {
		t.Fatalf("expected nil reference to be allowed, got %v", err)
	}

	if err := ValidateDocumentRef(&DocumentRef{Type: "invoice", ID: "INV-42"}); err != nil {
		t.Fatalf("expected valid reference, got %v", err)
	}

	if err := ValidateDocumentRef(&DocumentRef{Type: "invoice"}); !errors.Is(err, ErrInvalidDocumentRef) {
		t.Fatalf("expected ErrInvalidDocumentRef, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults (50,0), got (%d,%d)", limit, offset)
	}

	limit, offset = ValidatePagination(5000, 10)
	if limit != 1000 || offset != 10 {
		t.Fatalf("expected capped limit (1000,10), got (%d,%d)", limit, offset)
	}
}
