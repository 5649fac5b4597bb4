package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
	"github.com/iho/doubleentry/tests/testutil"
)

func minor(v int64) *int64 { return &v }

func TestPostEntry_HTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	ledger := testDB.NewLedger("")
	router := newTestRouter(testDB, ledger)

	receivable := ledger.CreateAccount(t, "Receivables", domain.AccountTypeAsset, false)
	sales := ledger.CreateAccount(t, "Sales", domain.AccountTypeRevenue, false)
	vat := ledger.CreateAccount(t, "VAT Payable", domain.AccountTypeLiability, false)

	t.Run("compound entry is posted", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/entries", dto.PostEntryRequest{
			Description: "Invoice 42",
			Date:        "2024-03-01",
			DocumentRef: &dto.DocumentRefRequest{Type: "invoice", ID: "42"},
			Debits:      []dto.AmountRequest{{AccountID: receivable.ID, Amount: "120.00"}},
			Credits: []dto.AmountRequest{
				{AccountID: sales.ID, Amount: "100"},
				{AccountID: vat.ID, AmountMinor: minor(2000)},
			},
		}, nil)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var entry dto.EntryResponse
		if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if entry.Date != "2024-03-01" || entry.DocumentRef == nil || len(entry.Credits) != 2 {
			t.Fatalf("unexpected entry %+v", entry)
		}

		got := doJSON(t, router, http.MethodGet, "/api/v1/entries/"+entry.ID, nil, nil)
		if got.Code != http.StatusOK {
			t.Fatalf("expected stored entry, got %d", got.Code)
		}
	})

	t.Run("unbalanced entry is rejected with violations", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/entries", dto.PostEntryRequest{
			Description: "Broken",
			Debits:      []dto.AmountRequest{{AccountID: receivable.ID, Amount: "10"}},
			Credits:     []dto.AmountRequest{{AccountID: sales.ID, Amount: "9"}},
		}, nil)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}

		var resp dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Violations) == 0 {
			t.Fatal("expected violations")
		}
	})

	t.Run("unknown account is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/entries", dto.PostEntryRequest{
			Description: "Ghost",
			Debits:      []dto.AmountRequest{{AccountID: testutil.GenerateID(), Amount: "10"}},
			Credits:     []dto.AmountRequest{{AccountID: sales.ID, Amount: "10"}},
		}, nil)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("balances reflect only the posted entry", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/accounts/"+receivable.ID+"/balance", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var resp dto.AccountBalanceResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Balance.AmountMinor != 12000 {
			t.Fatalf("expected 12000, got %d", resp.Balance.AmountMinor)
		}
	})

	t.Run("ledger stays consistent", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		tb := doJSON(t, router, http.MethodGet, "/api/v1/ledger/trial-balance", nil, nil)
		var resp dto.TrialBalanceResponse
		if err := json.Unmarshal(tb.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Balanced {
			t.Fatalf("expected balanced trial balance, residual %+v", resp.Residual)
		}
	})
}

func TestPostEntry_Idempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	ledger := testDB.NewLedger("")
	router := newTestRouter(testDB, ledger)

	cash := ledger.CreateAccount(t, "Cash", domain.AccountTypeAsset, false)
	capital := ledger.CreateAccount(t, "Capital", domain.AccountTypeEquity, false)

	req := dto.PostEntryRequest{
		Description: "Owner investment",
		Debits:      []dto.AmountRequest{{AccountID: cash.ID, Amount: "500"}},
		Credits:     []dto.AmountRequest{{AccountID: capital.ID, Amount: "500"}},
	}
	headers := map[string]string{"Idempotency-Key": "invest-1"}

	first := doJSON(t, router, http.MethodPost, "/api/v1/entries", req, headers)
	second := doJSON(t, router, http.MethodPost, "/api/v1/entries", req, headers)

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201 twice, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatal("expected replayed body")
	}
	if second.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatal("expected replay header")
	}

	entries, err := ledger.Entries.ListEntries(ctx, usecase.ListEntriesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one stored entry, got %d", len(entries))
	}
}

func TestPostEntry_RejectedEntryLeavesNoTrace(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	ledger := testDB.NewLedger("")
	cash := ledger.CreateAccount(t, "Cash", domain.AccountTypeAsset, false)

	_, err := ledger.Entries.PostEntry(ctx, usecase.PostEntryInput{
		Description: "Half missing",
		Debits:      []usecase.AmountInput{{AccountID: cash.ID, Amount: 100}},
		Credits:     []usecase.AmountInput{{AccountID: testutil.GenerateID(), Amount: 100}},
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	var amounts, entries int
	if err := testDB.Pool.QueryRow(ctx, `SELECT count(*) FROM amounts`).Scan(&amounts); err != nil {
		t.Fatalf("failed to count amounts: %v", err)
	}
	if err := testDB.Pool.QueryRow(ctx, `SELECT count(*) FROM entries`).Scan(&entries); err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	if amounts != 0 || entries != 0 {
		t.Fatalf("expected no partial writes, found %d entries and %d amounts", entries, amounts)
	}
}
