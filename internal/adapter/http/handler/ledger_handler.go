package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// LedgerService defines the ledger-wide checks needed by LedgerHandler.
type LedgerService interface {
	TrialBalance(ctx context.Context, q usecase.BalanceQuery) (*domain.TrialBalance, error)
	CheckConsistency(ctx context.Context) ([]domain.SideTotals, error)
}

// ReportService builds reconciliation reports.
type ReportService interface {
	GenerateReport(ctx context.Context, currency string) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
	reportUC ReportService
}

// NewLedgerHandler creates a new LedgerHandler. reportUC may be nil, in which
// case the report endpoint answers 501.
func NewLedgerHandler(ledgerUC LedgerService, reportUC ReportService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, reportUC: reportUC}
}

// TrialBalance returns per-type balances and the accounting equation residual.
func (h *LedgerHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	q, err := dto.BalanceQueryFromURL(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid balance query", err.Error())
		return
	}

	tb, err := h.ledgerUC.TrialBalance(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, "failed to compute trial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromDomain(tb))
}

// CheckConsistency checks that debits equal credits in every currency.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromDomain(totals))
			return
		}
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromDomain(totals))
}

// Report compares cached balances with balances recomputed from history.
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h.reportUC == nil {
		writeError(w, http.StatusNotImplemented, "reconciliation is not configured", "")
		return
	}

	report, err := h.reportUC.GenerateReport(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		writeDomainError(w, r, "failed to generate report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromDomain(report))
}
