package domain

// TrialBalance holds the aggregate balance of every account type and the
// residual of the accounting equation. A zero residual means the books balance.
type TrialBalance struct {
	Window   DateWindow
	Currency string
	ByType   map[AccountType]Money
	Residual Money
}

// Balanced reports whether assets equal liabilities plus equity plus net income.
func (tb *TrialBalance) Balanced() bool {
	return tb.Residual.IsZero()
}

// ComputeTrialBalance computes per-type balances and the residual
// Asset - (Liability + Equity + Revenue - Expense).
func ComputeTrialBalance(accounts []*Account, postings []Posting, window DateWindow, currency string) *TrialBalance {
	byType := make(map[AccountType][]*Account, len(AccountTypes))
	for _, a := range accounts {
		byType[a.Type] = append(byType[a.Type], a)
	}

	tb := &TrialBalance{
		Window:   window,
		Currency: currency,
		ByType:   make(map[AccountType]Money, len(AccountTypes)),
	}
	for _, t := range AccountTypes {
		tb.ByType[t] = TypeBalance(byType[t], postings, window, currency)
	}

	residual := tb.ByType[AccountTypeAsset].Amount -
		(tb.ByType[AccountTypeLiability].Amount +
			tb.ByType[AccountTypeEquity].Amount +
			tb.ByType[AccountTypeRevenue].Amount -
			tb.ByType[AccountTypeExpense].Amount)
	tb.Residual = Money{Amount: residual, Currency: currency}

	return tb
}

// SideTotals is the sum of every debit and every credit amount recorded in
// one currency. Across accepted entries the two are always equal.
type SideTotals struct {
	Currency string
	Debits   int64
	Credits  int64
}

// Balanced reports whether debits equal credits.
func (t SideTotals) Balanced() bool {
	return t.Debits == t.Credits
}

// Difference is debits minus credits.
func (t SideTotals) Difference() int64 {
	return t.Debits - t.Credits
}
