package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

type ledgerServiceStub struct {
	trialBalanceFn func(ctx context.Context, q usecase.BalanceQuery) (*domain.TrialBalance, error)
	consistencyFn  func(ctx context.Context) ([]domain.SideTotals, error)
}

func (s *ledgerServiceStub) TrialBalance(ctx context.Context, q usecase.BalanceQuery) (*domain.TrialBalance, error) {
	return s.trialBalanceFn(ctx, q)
}

func (s *ledgerServiceStub) CheckConsistency(ctx context.Context) ([]domain.SideTotals, error) {
	return s.consistencyFn(ctx)
}

type reportServiceStub struct {
	generateFn func(ctx context.Context, currency string) (*usecase.ReconciliationReport, error)
}

func (s *reportServiceStub) GenerateReport(ctx context.Context, currency string) (*usecase.ReconciliationReport, error) {
	return s.generateFn(ctx, currency)
}

func TestLedgerHandler_TrialBalance(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		trialBalanceFn: func(ctx context.Context, q usecase.BalanceQuery) (*domain.TrialBalance, error) {
			if q.Currency != "EUR" {
				t.Fatalf("expected EUR, got %q", q.Currency)
			}
			return &domain.TrialBalance{
				Currency: "EUR",
				Window:   q.Window,
				ByType: map[domain.AccountType]domain.Money{
					domain.AccountTypeAsset:     domain.NewMoney(500, "EUR"),
					domain.AccountTypeLiability: domain.NewMoney(400, "EUR"),
				},
				Residual: domain.NewMoney(100, "EUR"),
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.TrialBalance(rec, httptest.NewRequest(http.MethodGet, "/ledger/trial-balance?currency=EUR&from=2024-01-01", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TrialBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Balanced || resp.Residual.AmountMinor != 100 || resp.Window.From != "2024-01-01" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	tests := []struct {
		name       string
		totals     []domain.SideTotals
		err        error
		wantStatus int
	}{
		{
			name:       "balanced",
			totals:     []domain.SideTotals{{Currency: "USD", Debits: 10, Credits: 10}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unbalanced",
			totals:     []domain.SideTotals{{Currency: "USD", Debits: 11, Credits: 10}},
			err:        fmt.Errorf("%w: USD", usecase.ErrInconsistentLedger),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "repository failure",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLedgerHandler(&ledgerServiceStub{
				consistencyFn: func(ctx context.Context) ([]domain.SideTotals, error) {
					return tt.totals, tt.err
				},
			}, nil)

			rec := httptest.NewRecorder()
			handler.CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestLedgerHandler_Report(t *testing.T) {
	handler := NewLedgerHandler(nil, &reportServiceStub{
		generateFn: func(ctx context.Context, currency string) (*usecase.ReconciliationReport, error) {
			if currency != "USD" {
				t.Fatalf("expected USD, got %q", currency)
			}
			return &usecase.ReconciliationReport{Currency: "USD", TotalAccounts: 3, ReconciledAccounts: 3, LedgerConsistent: true}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Report(rec, httptest.NewRequest(http.MethodGet, "/ledger/report?currency=USD", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ReconciliationReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalAccounts != 3 || !resp.LedgerConsistent {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_Report_NotConfigured(t *testing.T) {
	handler := NewLedgerHandler(nil, nil)

	rec := httptest.NewRecorder()
	handler.Report(rec, httptest.NewRequest(http.MethodGet, "/ledger/report", nil))

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}
