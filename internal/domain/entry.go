package domain

import (
	"strings"
	"time"
)

// DocumentRef points at the commercial document behind an entry (an invoice,
// a receipt). It is stored as given and never dereferenced.
type DocumentRef struct {
	Type string
	ID   string
}

// Entry is a balanced journal transaction: one or more debit amounts and one
// or more credit amounts of equal total in a single currency.
type Entry struct {
	ID            string
	Description   string
	Date          time.Time
	DocumentRef   *DocumentRef
	DebitAmounts  []Amount
	CreditAmounts []Amount
	CreatedAt     time.Time
}

// EntryParams carries the caller-supplied parts of a new entry. A nil Date
// means "today" according to the clock.
type EntryParams struct {
	ID            string
	Description   string
	Date          *time.Time
	DocumentRef   *DocumentRef
	DebitAmounts  []Amount
	CreditAmounts []Amount
}

// NewEntry validates params and builds an Entry. Every violated invariant is
// reported in a single *ValidationError; on failure no entry is returned.
func NewEntry(params EntryParams, clock Clock) (*Entry, error) {
	if err := ValidateEntry(params.Description, params.DebitAmounts, params.CreditAmounts); err != nil {
		return nil, err
	}

	now := clock.Now()
	date := DateOf(now)
	if params.Date != nil {
		date = DateOf(*params.Date)
	}

	var ref *DocumentRef
	if params.DocumentRef != nil {
		r := *params.DocumentRef
		ref = &r
	}

	return &Entry{
		ID:            params.ID,
		Description:   params.Description,
		Date:          date,
		DocumentRef:   ref,
		DebitAmounts:  append([]Amount(nil), params.DebitAmounts...),
		CreditAmounts: append([]Amount(nil), params.CreditAmounts...),
		CreatedAt:     now,
	}, nil
}

// ValidateEntry checks the double-entry invariants and returns a
// *ValidationError listing all violations, or nil.
func ValidateEntry(description string, debits, credits []Amount) error {
	var violations []error

	if strings.TrimSpace(description) == "" {
		violations = append(violations, ErrMissingDescription)
	}
	if len(debits) == 0 {
		violations = append(violations, ErrNoDebitAmounts)
	}
	if len(credits) == 0 {
		violations = append(violations, ErrNoCreditAmounts)
	}

	for _, a := range debits {
		if a.Side != Debit {
			violations = append(violations, ErrWrongSide)
			break
		}
	}
	for _, a := range credits {
		if a.Side != Credit {
			violations = append(violations, ErrWrongSide)
			break
		}
	}

	// A currency mismatch replaces the totals check; comparing sums across
	// currencies would report a misleading imbalance.
	if err := ValidateSingleCurrency(debits, credits); err != nil {
		violations = append(violations, err)
	} else if SumMoney(debits).Amount != SumMoney(credits).Amount {
		violations = append(violations, ErrUnbalancedEntry)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// ValidateSingleCurrency returns ErrMultipleCurrencies when the amounts span
// more than one currency.
func ValidateSingleCurrency(groups ...[]Amount) error {
	if countCurrencies(groups...) > 1 {
		return ErrMultipleCurrencies
	}
	return nil
}

func countCurrencies(groups ...[]Amount) int {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for _, a := range g {
			seen[a.Currency()] = struct{}{}
		}
	}
	return len(seen)
}

// Currency returns the currency shared by the entry's amounts, or
// defaultCurrency when the entry has none.
func (e *Entry) Currency(defaultCurrency string) string {
	if len(e.CreditAmounts) > 0 {
		return e.CreditAmounts[0].Currency()
	}
	if len(e.DebitAmounts) > 0 {
		return e.DebitAmounts[0].Currency()
	}
	return defaultCurrency
}

// Total returns the entry's debit total, which equals its credit total.
func (e *Entry) Total() Money {
	return SumMoney(e.DebitAmounts)
}

// Amounts returns debits followed by credits.
func (e *Entry) Amounts() []Amount {
	all := make([]Amount, 0, len(e.DebitAmounts)+len(e.CreditAmounts))
	all = append(all, e.DebitAmounts...)
	return append(all, e.CreditAmounts...)
}

// AccountIDs returns the distinct accounts the entry touches, in posting order.
func (e *Entry) AccountIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, a := range e.Amounts() {
		if !seen[a.AccountID] {
			seen[a.AccountID] = true
			ids = append(ids, a.AccountID)
		}
	}
	return ids
}

// Postings flattens the entry into dated postings for balance computation.
func (e *Entry) Postings() []Posting {
	amounts := e.Amounts()
	postings := make([]Posting, len(amounts))
	for i, a := range amounts {
		postings[i] = Posting{EntryID: e.ID, EntryDate: e.Date, Amount: a}
	}
	return postings
}
