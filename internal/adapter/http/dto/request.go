package dto

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

var (
	// ErrAmountRequired is returned when an amount line carries neither form of amount.
	ErrAmountRequired = errors.New("amount or amount_minor is required")
	// ErrAmountAmbiguous is returned when an amount line carries both forms of amount.
	ErrAmountAmbiguous = errors.New("amount and amount_minor are mutually exclusive")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Contra bool   `json:"contra"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:   r.Name,
		Type:   r.Type,
		Contra: r.Contra,
	}
}

// AmountRequest is one debit or credit line of an entry. The amount is given
// either as a decimal string in major units or as an integer of minor units.
type AmountRequest struct {
	AccountID   string `json:"account_id"`
	Amount      string `json:"amount,omitempty"`
	AmountMinor *int64 `json:"amount_minor,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// ToUseCaseInput converts the line to minor units. The currency decides how
// many decimal places a major-unit amount may have.
func (r AmountRequest) ToUseCaseInput(defaultCurrency string) (usecase.AmountInput, error) {
	in := usecase.AmountInput{AccountID: r.AccountID, Currency: r.Currency}

	switch {
	case r.Amount != "" && r.AmountMinor != nil:
		return in, ErrAmountAmbiguous
	case r.AmountMinor != nil:
		in.Amount = *r.AmountMinor
	case r.Amount != "":
		d, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return in, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
		}
		currency := domain.NormalizeCurrency(r.Currency)
		if currency == "" {
			currency = defaultCurrency
		}
		m, err := domain.MoneyFromDecimal(d, currency)
		if err != nil {
			return in, err
		}
		in.Amount = m.Amount
	default:
		return in, ErrAmountRequired
	}

	return in, nil
}

// DocumentRefRequest identifies the document behind an entry.
type DocumentRefRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PostEntryRequest represents a request to post a journal entry.
type PostEntryRequest struct {
	Description string              `json:"description"`
	Date        string              `json:"date,omitempty"`
	DocumentRef *DocumentRefRequest `json:"document_ref,omitempty"`
	Debits      []AmountRequest     `json:"debits"`
	Credits     []AmountRequest     `json:"credits"`
}

// ToUseCaseInput converts to use case input. Ledger invariants are left to
// the use case; only malformed dates and amounts are rejected here.
func (r *PostEntryRequest) ToUseCaseInput(defaultCurrency string) (usecase.PostEntryInput, error) {
	in := usecase.PostEntryInput{Description: r.Description}

	if r.Date != "" {
		d, err := domain.ParseDate(r.Date)
		if err != nil {
			return in, fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
		}
		in.Date = &d
	}

	if r.DocumentRef != nil {
		in.DocumentRef = &domain.DocumentRef{Type: r.DocumentRef.Type, ID: r.DocumentRef.ID}
	}

	var err error
	if in.Debits, err = amountInputs(r.Debits, defaultCurrency); err != nil {
		return in, fmt.Errorf("debits: %w", err)
	}
	if in.Credits, err = amountInputs(r.Credits, defaultCurrency); err != nil {
		return in, fmt.Errorf("credits: %w", err)
	}

	return in, nil
}

func amountInputs(lines []AmountRequest, defaultCurrency string) ([]usecase.AmountInput, error) {
	out := make([]usecase.AmountInput, 0, len(lines))
	for i, l := range lines {
		in, err := l.ToUseCaseInput(defaultCurrency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// BalanceQueryFromURL reads the from, to and currency query parameters.
func BalanceQueryFromURL(q url.Values) (usecase.BalanceQuery, error) {
	from, err := optionalDate(q.Get("from"))
	if err != nil {
		return usecase.BalanceQuery{}, err
	}
	to, err := optionalDate(q.Get("to"))
	if err != nil {
		return usecase.BalanceQuery{}, err
	}

	return usecase.BalanceQuery{
		Window:   domain.NewDateWindow(from, to),
		Currency: strings.TrimSpace(q.Get("currency")),
	}, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &d, nil
}
