package usecase_test

import (
	"context"
	"testing"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

func TestLedgerUseCase_TrialBalance(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "Cash", "asset", false)
	dep := f.account(t, "Accumulated Depreciation", "asset", true)
	loan := f.account(t, "Bank Loan", "liability", false)
	capital := f.account(t, "Capital", "equity", false)
	sales := f.account(t, "Sales", "revenue", false)
	rent := f.account(t, "Rent", "expense", false)

	f.post(t, date(4, 1), lines(line(cash.ID, 1000)), lines(line(capital.ID, 1000)))
	f.post(t, date(4, 2), lines(line(cash.ID, 500)), lines(line(loan.ID, 500)))
	f.post(t, date(4, 3), lines(line(cash.ID, 300)), lines(line(sales.ID, 300)))
	f.post(t, date(4, 4), lines(line(rent.ID, 200)), lines(line(cash.ID, 200)))
	f.post(t, date(4, 5), lines(line(rent.ID, 100)), lines(line(dep.ID, 100)))

	tb, err := f.ledgerUC.TrialBalance(context.Background(), usecase.BalanceQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[domain.AccountType]int64{
		domain.AccountTypeAsset:     1500,
		domain.AccountTypeLiability: 500,
		domain.AccountTypeEquity:    1000,
		domain.AccountTypeRevenue:   300,
		domain.AccountTypeExpense:   300,
	}
	for accountType, amount := range want {
		if got := tb.ByType[accountType].Amount; got != amount {
			t.Errorf("%s: expected %d, got %d", accountType, amount, got)
		}
	}
	if !tb.Balanced() {
		t.Fatalf("expected balanced books, residual %d", tb.Residual.Amount)
	}

	totals, err := f.ledgerUC.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(totals) != 1 || totals[0].Debits != 2100 || !totals[0].Balanced() {
		t.Fatalf("unexpected side totals: %+v", totals)
	}
}

func TestReconciliationUseCase_GenerateReport(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "Cash", "asset", false)
	sales := f.account(t, "Sales", "revenue", false)
	f.post(t, date(5, 1), lines(line(cash.ID, 250)), lines(line(sales.ID, 250)))

	// warm the cache for cash, then plant a stale value for sales
	if _, err := f.balanceUC.AccountBalance(context.Background(), cash.ID, usecase.BalanceQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	salesKey := usecase.BalanceKey{AccountID: sales.ID, Currency: "USD"}
	current, err := f.cache.Get(context.Background(), salesKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.cache.Set(context.Background(), salesKey, current.Generation, domain.NewMoney(999, "USD")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc := usecase.NewReconciliationUseCase(f.accounts, f.entries, f.ledgerUC, f.cache, domain.FixedClock{T: fixtureNow})

	report, err := uc.GenerateReport(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Currency != "USD" || report.TotalAccounts != 2 {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.ReconciledAccounts != 1 || len(report.Discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %+v", report.Discrepancies)
	}

	d := report.Discrepancies[0]
	if d.Account.ID != sales.ID || d.CachedBalance == nil || d.CachedBalance.Amount != 999 || d.CalculatedBalance.Amount != 250 {
		t.Fatalf("unexpected discrepancy: %+v", d)
	}
	if !report.LedgerConsistent {
		t.Fatal("expected consistent ledger")
	}
	if !report.CheckedAt.Equal(fixtureNow) {
		t.Fatalf("expected CheckedAt from clock, got %v", report.CheckedAt)
	}
}
