package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	AccountBalance(ctx context.Context, accountID string, q usecase.BalanceQuery) (domain.Money, error)
	TypeBalance(ctx context.Context, accountType domain.AccountType, q usecase.BalanceQuery) (domain.Money, error)
}

// BalanceHandler serves account and account-type balances over a date window.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Account returns the balance of one account.
func (h *BalanceHandler) Account(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "account")
	if !ok {
		return
	}

	q, err := dto.BalanceQueryFromURL(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid balance query", err.Error())
		return
	}

	balance, err := h.balanceUC.AccountBalance(r.Context(), accountID, q)
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountBalanceResponse{
		AccountID: accountID,
		Window:    dto.WindowFromDomain(q.Window),
		Balance:   dto.MoneyFromDomain(balance),
	})
}

// Type returns the aggregate balance of every account of one type.
func (h *BalanceHandler) Type(w http.ResponseWriter, r *http.Request) {
	accountType, err := domain.ParseAccountType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account type", err.Error())
		return
	}

	q, err := dto.BalanceQueryFromURL(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid balance query", err.Error())
		return
	}

	balance, err := h.balanceUC.TypeBalance(r.Context(), accountType, q)
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TypeBalanceResponse{
		Type:    string(accountType),
		Window:  dto.WindowFromDomain(q.Window),
		Balance: dto.MoneyFromDomain(balance),
	})
}
