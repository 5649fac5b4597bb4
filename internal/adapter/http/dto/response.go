package dto

import (
	"time"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// MoneyResponse carries an amount both in minor units and as a decimal string.
type MoneyResponse struct {
	AmountMinor int64  `json:"amount_minor"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

// MoneyFromDomain converts a domain money value to response.
func MoneyFromDomain(m domain.Money) MoneyResponse {
	return MoneyResponse{
		AmountMinor: m.Amount,
		Amount:      m.Decimal().StringFixed(domain.MinorUnitExponent(m.Currency)),
		Currency:    m.Currency,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Contra        bool      `json:"contra"`
	NormalBalance string    `json:"normal_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Name:          a.Name,
		Type:          string(a.Type),
		Contra:        a.Contra,
		NormalBalance: string(a.EffectiveNormalBalance()),
		CreatedAt:     a.CreatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// AmountResponse is one line of an entry.
type AmountResponse struct {
	AccountID string `json:"account_id"`
	MoneyResponse
}

// DocumentRefResponse identifies the document behind an entry.
type DocumentRefResponse struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID          string               `json:"id"`
	Description string               `json:"description"`
	Date        string               `json:"date"`
	DocumentRef *DocumentRefResponse `json:"document_ref,omitempty"`
	Debits      []AmountResponse     `json:"debits"`
	Credits     []AmountResponse     `json:"credits"`
	CreatedAt   time.Time            `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:          e.ID,
		Description: e.Description,
		Date:        e.Date.Format(domain.DateLayout),
		Debits:      amountsFromDomain(e.DebitAmounts),
		Credits:     amountsFromDomain(e.CreditAmounts),
		CreatedAt:   e.CreatedAt,
	}
	if e.DocumentRef != nil {
		resp.DocumentRef = &DocumentRefResponse{Type: e.DocumentRef.Type, ID: e.DocumentRef.ID}
	}
	return resp
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

func amountsFromDomain(amounts []domain.Amount) []AmountResponse {
	result := make([]AmountResponse, len(amounts))
	for i, a := range amounts {
		result[i] = AmountResponse{AccountID: a.AccountID, MoneyResponse: MoneyFromDomain(a.Money)}
	}
	return result
}

// WindowResponse echoes the date window a balance was computed over.
type WindowResponse struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// WindowFromDomain converts a date window to response.
func WindowFromDomain(w domain.DateWindow) WindowResponse {
	var resp WindowResponse
	if w.From != nil {
		resp.From = w.From.Format(domain.DateLayout)
	}
	if w.To != nil {
		resp.To = w.To.Format(domain.DateLayout)
	}
	return resp
}

// AccountBalanceResponse is the balance of a single account.
type AccountBalanceResponse struct {
	AccountID string         `json:"account_id"`
	Window    WindowResponse `json:"window"`
	Balance   MoneyResponse  `json:"balance"`
}

// TypeBalanceResponse is the aggregate balance of one account type.
type TypeBalanceResponse struct {
	Type    string         `json:"type"`
	Window  WindowResponse `json:"window"`
	Balance MoneyResponse  `json:"balance"`
}

// TrialBalanceResponse represents a trial balance in API responses.
type TrialBalanceResponse struct {
	Currency string                   `json:"currency"`
	Window   WindowResponse           `json:"window"`
	ByType   map[string]MoneyResponse `json:"by_type"`
	Residual MoneyResponse            `json:"residual"`
	Balanced bool                     `json:"balanced"`
}

// TrialBalanceFromDomain converts a trial balance to response.
func TrialBalanceFromDomain(tb *domain.TrialBalance) *TrialBalanceResponse {
	byType := make(map[string]MoneyResponse, len(tb.ByType))
	for t, m := range tb.ByType {
		byType[string(t)] = MoneyFromDomain(m)
	}
	return &TrialBalanceResponse{
		Currency: tb.Currency,
		Window:   WindowFromDomain(tb.Window),
		ByType:   byType,
		Residual: MoneyFromDomain(tb.Residual),
		Balanced: tb.Balanced(),
	}
}

// SideTotalsResponse holds debit and credit totals for one currency.
type SideTotalsResponse struct {
	Currency   string `json:"currency"`
	Debits     int64  `json:"debits"`
	Credits    int64  `json:"credits"`
	Difference int64  `json:"difference"`
	Balanced   bool   `json:"balanced"`
}

// ConsistencyResponse is the result of a ledger consistency check.
type ConsistencyResponse struct {
	Consistent bool                 `json:"consistent"`
	Totals     []SideTotalsResponse `json:"totals"`
}

// ConsistencyFromDomain converts side totals to response.
func ConsistencyFromDomain(totals []domain.SideTotals) *ConsistencyResponse {
	resp := &ConsistencyResponse{Consistent: true, Totals: sideTotalsFromDomain(totals)}
	for _, t := range totals {
		if !t.Balanced() {
			resp.Consistent = false
		}
	}
	return resp
}

func sideTotalsFromDomain(totals []domain.SideTotals) []SideTotalsResponse {
	result := make([]SideTotalsResponse, len(totals))
	for i, t := range totals {
		result[i] = SideTotalsResponse{
			Currency:   t.Currency,
			Debits:     t.Debits,
			Credits:    t.Credits,
			Difference: t.Difference(),
			Balanced:   t.Balanced(),
		}
	}
	return result
}

// ReconciliationResultResponse compares a cached and a recomputed balance.
type ReconciliationResultResponse struct {
	AccountID         string         `json:"account_id"`
	AccountName       string         `json:"account_name"`
	CachedBalance     *MoneyResponse `json:"cached_balance,omitempty"`
	CalculatedBalance MoneyResponse  `json:"calculated_balance"`
	Reconciled        bool           `json:"reconciled"`
}

// ReconciliationReportResponse represents a reconciliation report.
type ReconciliationReportResponse struct {
	Currency           string                          `json:"currency"`
	TotalAccounts      int                             `json:"total_accounts"`
	ReconciledAccounts int                             `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResultResponse `json:"discrepancies"`
	TrialBalance       *TrialBalanceResponse           `json:"trial_balance,omitempty"`
	Totals             []SideTotalsResponse            `json:"totals"`
	LedgerConsistent   bool                            `json:"ledger_consistent"`
	CheckedAt          time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromDomain converts a report to response. Only
// discrepancies are listed per account.
func ReconciliationReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		Currency:           r.Currency,
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResultResponse, len(r.Discrepancies)),
		Totals:             sideTotalsFromDomain(r.SideTotals),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
	if r.TrialBalance != nil {
		resp.TrialBalance = TrialBalanceFromDomain(r.TrialBalance)
	}
	for i, d := range r.Discrepancies {
		item := &ReconciliationResultResponse{
			AccountID:         d.Account.ID,
			AccountName:       d.Account.Name,
			CalculatedBalance: MoneyFromDomain(d.CalculatedBalance),
			Reconciled:        d.IsReconciled,
		}
		if d.CachedBalance != nil {
			cached := MoneyFromDomain(*d.CachedBalance)
			item.CachedBalance = &cached
		}
		resp.Discrepancies[i] = item
	}
	return resp
}

// EventResponse is one outbox event in an aggregate's history.
type EventResponse struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
	Published     bool           `json:"published"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = &EventResponse{
			ID:            e.ID,
			EventType:     e.EventType,
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			Payload:       e.Payload,
			CreatedAt:     e.CreatedAt,
			Published:     e.Published,
			PublishedAt:   e.PublishedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	Violations []string `json:"violations,omitempty"`
}
