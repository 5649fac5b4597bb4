package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
	"github.com/iho/doubleentry/tests/testutil"
)

func TestConcurrentPostings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	for _, isolation := range []string{"read committed", "serializable"} {
		t.Run(isolation, func(t *testing.T) {
			testDB.TruncateAll(ctx)
			ledger := testDB.NewLedger(isolation)

			cash := ledger.CreateAccount(t, "Cash", domain.AccountTypeAsset, false)
			sales := ledger.CreateAccount(t, "Sales", domain.AccountTypeRevenue, false)
			vat := ledger.CreateAccount(t, "VAT", domain.AccountTypeLiability, false)

			const numEntries = 50

			var (
				wg           sync.WaitGroup
				successCount atomic.Int32
				inconsistent atomic.Int32
				done         = make(chan struct{})
			)

			// Readers must never observe half of an entry.
			var readers sync.WaitGroup
			readers.Add(1)
			go func() {
				defer readers.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					if _, err := ledger.Ledger.CheckConsistency(ctx); err != nil {
						inconsistent.Add(1)
					}
				}
			}()

			wg.Add(numEntries)
			for range numEntries {
				go func() {
					defer wg.Done()

					_, err := ledger.Entries.PostEntry(ctx, usecase.PostEntryInput{
						Description: "sale",
						Debits:      []usecase.AmountInput{{AccountID: cash.ID, Amount: 120}},
						Credits: []usecase.AmountInput{
							{AccountID: sales.ID, Amount: 100},
							{AccountID: vat.ID, Amount: 20},
						},
					})
					if err == nil {
						successCount.Add(1)
					} else {
						t.Logf("post failed: %v", err)
					}
				}()
			}

			wg.Wait()
			close(done)
			readers.Wait()

			if inconsistent.Load() != 0 {
				t.Errorf("readers observed %d inconsistent ledgers", inconsistent.Load())
			}

			posted := int64(successCount.Load())
			if posted == 0 {
				t.Fatal("expected at least one posted entry")
			}

			balance, err := ledger.Balances.AccountBalance(ctx, cash.ID, usecase.BalanceQuery{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if balance.Amount != posted*120 {
				t.Errorf("expected cash balance %d, got %d", posted*120, balance.Amount)
			}

			totals, err := ledger.Ledger.CheckConsistency(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(totals) != 1 || totals[0].Debits != posted*120 {
				t.Fatalf("unexpected totals %+v", totals)
			}
		})
	}
}
