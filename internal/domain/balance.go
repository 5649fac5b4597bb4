package domain

import "time"

// Posting is an amount as it sits in the ledger history, dated by its entry.
type Posting struct {
	EntryID   string
	EntryDate time.Time
	Amount    Amount
}

// DateWindow is an inclusive range of entry dates. A nil bound is open.
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

// NewDateWindow builds a window from optional bounds, truncated to dates.
func NewDateWindow(from, to *time.Time) DateWindow {
	var w DateWindow
	if from != nil {
		f := DateOf(*from)
		w.From = &f
	}
	if to != nil {
		t := DateOf(*to)
		w.To = &t
	}
	return w
}

// IsOpen reports whether the window has no bounds at all.
func (w DateWindow) IsOpen() bool {
	return w.From == nil && w.To == nil
}

// IsEmpty reports whether no date can fall inside the window.
func (w DateWindow) IsEmpty() bool {
	return w.From != nil && w.To != nil && w.From.After(*w.To)
}

// Contains reports whether date falls within the window, bounds included.
func (w DateWindow) Contains(date time.Time) bool {
	d := DateOf(date)
	if w.From != nil && d.Before(*w.From) {
		return false
	}
	if w.To != nil && d.After(*w.To) {
		return false
	}
	return true
}

// String renders the window as "from..to" with empty sides for open bounds.
func (w DateWindow) String() string {
	var from, to string
	if w.From != nil {
		from = w.From.Format(DateLayout)
	}
	if w.To != nil {
		to = w.To.Format(DateLayout)
	}
	return from + ".." + to
}

// AccountBalance derives the balance of one account from its postings.
//
// Postings for other accounts and postings dated outside the window are
// ignored. The raw value is debits minus credits; it is negated when the
// account's effective normal balance is Credit. currency labels the result
// and defaults to the currency of the first matching posting.
func AccountBalance(account *Account, postings []Posting, window DateWindow, currency string) Money {
	raw, cur := rawBalance(account.ID, postings, window)
	if currency == "" {
		currency = cur
	}
	return Money{Amount: withPolarity(raw, account.EffectiveNormalBalance()), Currency: currency}
}

// TypeBalance is the aggregate balance of a class of accounts. Each account's
// raw balance is taken with the declared normal balance of its type, so a
// contra account subtracts from the total by the same amount its own
// balance shows.
func TypeBalance(accounts []*Account, postings []Posting, window DateWindow, currency string) Money {
	total := Money{Currency: currency}
	for _, a := range accounts {
		raw, cur := rawBalance(a.ID, postings, window)
		if total.Currency == "" {
			total.Currency = cur
		}
		total.Amount += withPolarity(raw, a.NormalBalance())
	}
	return total
}

// rawBalance is debits minus credits for one account inside the window.
func rawBalance(accountID string, postings []Posting, window DateWindow) (int64, string) {
	if window.IsEmpty() {
		return 0, ""
	}

	var (
		raw      int64
		currency string
	)
	for _, p := range postings {
		if p.Amount.AccountID != accountID || !window.Contains(p.EntryDate) {
			continue
		}
		raw += p.Amount.signedAmount()
		if currency == "" {
			currency = p.Amount.Currency()
		}
	}
	return raw, currency
}

func withPolarity(raw int64, normal Side) int64 {
	if normal == Credit {
		return -raw
	}
	return raw
}
