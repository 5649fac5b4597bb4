package dto

import (
	"testing"
	"time"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

func TestMoneyFromDomain(t *testing.T) {
	tests := []struct {
		money domain.Money
		want  string
	}{
		{money: domain.NewMoney(12345, "USD"), want: "123.45"},
		{money: domain.NewMoney(-5, "EUR"), want: "-0.05"},
		{money: domain.NewMoney(700, "JPY"), want: "700"},
		{money: domain.Zero("USD"), want: "0.00"},
	}

	for _, tt := range tests {
		got := MoneyFromDomain(tt.money)
		if got.Amount != tt.want || got.AmountMinor != tt.money.Amount || got.Currency != tt.money.Currency {
			t.Errorf("MoneyFromDomain(%v) = %+v, want amount %s", tt.money, got, tt.want)
		}
	}
}

func TestAccountFromDomain(t *testing.T) {
	now := time.Now()
	a := &domain.Account{ID: "acc-1", Name: "Accumulated Depreciation", Type: domain.AccountTypeAsset, Contra: true, CreatedAt: now}

	resp := AccountFromDomain(a)
	if resp.ID != "acc-1" || resp.Type != "asset" || !resp.Contra || !resp.CreatedAt.Equal(now) {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.NormalBalance != string(domain.Credit) {
		t.Fatalf("expected contra asset to be credit-normal, got %s", resp.NormalBalance)
	}
}

func TestEntryFromDomain(t *testing.T) {
	e := &domain.Entry{
		ID:            "ent-1",
		Description:   "Sale",
		Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		DocumentRef:   &domain.DocumentRef{Type: "receipt", ID: "r-9"},
		DebitAmounts:  []domain.Amount{{AccountID: "cash", Money: domain.NewMoney(250, "USD"), Side: domain.Debit}},
		CreditAmounts: []domain.Amount{{AccountID: "sales", Money: domain.NewMoney(250, "USD"), Side: domain.Credit}},
	}

	resp := EntryFromDomain(e)
	if resp.Date != "2024-05-01" {
		t.Errorf("expected date 2024-05-01, got %s", resp.Date)
	}
	if resp.DocumentRef == nil || resp.DocumentRef.ID != "r-9" {
		t.Errorf("unexpected document ref %+v", resp.DocumentRef)
	}
	if len(resp.Debits) != 1 || resp.Debits[0].AccountID != "cash" || resp.Debits[0].Amount != "2.50" {
		t.Errorf("unexpected debits %+v", resp.Debits)
	}
	if len(resp.Credits) != 1 || resp.Credits[0].AmountMinor != 250 {
		t.Errorf("unexpected credits %+v", resp.Credits)
	}

	if got := EntriesFromDomain([]*domain.Entry{e, e}); len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
}

func TestTrialBalanceFromDomain(t *testing.T) {
	tb := &domain.TrialBalance{
		Currency: "USD",
		ByType: map[domain.AccountType]domain.Money{
			domain.AccountTypeAsset:  domain.NewMoney(100, "USD"),
			domain.AccountTypeEquity: domain.NewMoney(100, "USD"),
		},
		Residual: domain.Zero("USD"),
	}

	resp := TrialBalanceFromDomain(tb)
	if !resp.Balanced || resp.ByType["asset"].AmountMinor != 100 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestConsistencyFromDomain(t *testing.T) {
	resp := ConsistencyFromDomain([]domain.SideTotals{
		{Currency: "EUR", Debits: 10, Credits: 10},
		{Currency: "USD", Debits: 11, Credits: 10},
	})

	if resp.Consistent {
		t.Fatal("expected inconsistent ledger")
	}
	if resp.Totals[1].Difference != 1 || resp.Totals[1].Balanced {
		t.Fatalf("unexpected USD totals %+v", resp.Totals[1])
	}

	if empty := ConsistencyFromDomain(nil); !empty.Consistent || len(empty.Totals) != 0 {
		t.Fatalf("expected empty ledger to be consistent, got %+v", empty)
	}
}

func TestReconciliationReportFromDomain(t *testing.T) {
	cached := domain.NewMoney(999, "USD")
	report := &usecase.ReconciliationReport{
		Currency:           "USD",
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		Discrepancies: []*usecase.ReconciliationResult{{
			Account:           &domain.Account{ID: "sales", Name: "Sales"},
			CachedBalance:     &cached,
			CalculatedBalance: domain.NewMoney(250, "USD"),
		}},
		SideTotals:       []domain.SideTotals{{Currency: "USD", Debits: 250, Credits: 250}},
		LedgerConsistent: true,
	}

	resp := ReconciliationReportFromDomain(report)
	if len(resp.Discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %d", len(resp.Discrepancies))
	}
	d := resp.Discrepancies[0]
	if d.AccountID != "sales" || d.CachedBalance == nil || d.CachedBalance.AmountMinor != 999 || d.CalculatedBalance.AmountMinor != 250 {
		t.Fatalf("unexpected discrepancy %+v", d)
	}
	if resp.TrialBalance != nil {
		t.Fatal("expected no trial balance")
	}
	if !resp.LedgerConsistent || len(resp.Totals) != 1 {
		t.Fatalf("unexpected report %+v", resp)
	}
}
