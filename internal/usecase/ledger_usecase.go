package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iho/doubleentry/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	accountRepo     AccountRepository
	entryRepo       EntryRepository
	ledgerRepo      LedgerRepository
	defaultCurrency string
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	defaultCurrency string,
) *LedgerUseCase {
	defaultCurrency = domain.NormalizeCurrency(defaultCurrency)
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	return &LedgerUseCase{
		accountRepo:     accountRepo,
		entryRepo:       entryRepo,
		ledgerRepo:      ledgerRepo,
		defaultCurrency: defaultCurrency,
	}
}

// TrialBalance computes every type's aggregate balance and the residual of
// Asset = Liability + Equity + Revenue - Expense over one window.
func (uc *LedgerUseCase) TrialBalance(ctx context.Context, q BalanceQuery) (*domain.TrialBalance, error) {
	currency := domain.NormalizeCurrency(q.Currency)
	if currency == "" {
		currency = uc.defaultCurrency
	}

	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	postings, err := uc.entryRepo.ListPostings(ctx, PostingFilter{Currency: currency, Window: q.Window})
	if err != nil {
		return nil, err
	}

	return domain.ComputeTrialBalance(accounts, postings, q.Window, currency), nil
}

// CheckConsistency verifies that, per currency, the sum of all debit amounts
// equals the sum of all credit amounts. The totals are returned in both cases.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) ([]domain.SideTotals, error) {
	totals, err := uc.ledgerRepo.SideTotals(ctx)
	if err != nil {
		return nil, err
	}

	var unbalanced []string
	for _, t := range totals {
		if !t.Balanced() {
			unbalanced = append(unbalanced, fmt.Sprintf("%s debits=%d credits=%d", t.Currency, t.Debits, t.Credits))
		}
	}

	if len(unbalanced) > 0 {
		return totals, fmt.Errorf("%w: %s", ErrInconsistentLedger, strings.Join(unbalanced, "; "))
	}

	return totals, nil
}
