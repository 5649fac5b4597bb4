package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/doubleentry/internal/domain"
)

// ReconciliationUseCase cross-checks cached balances, per-type totals and
// raw side totals against the posting history.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledger      *LedgerUseCase
	cache       BalanceCache
	clock       domain.Clock
}

// NewReconciliationUseCase creates a new reconciliation use case. cache may be nil.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledger *LedgerUseCase,
	cache BalanceCache,
	clock domain.Clock,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledger:      ledger,
		cache:       cache,
		clock:       clock,
	}
}

// ReconciliationResult compares an account's cached balance, if any, with
// the balance recomputed from its postings.
type ReconciliationResult struct {
	Account           *domain.Account
	CachedBalance     *domain.Money
	CalculatedBalance domain.Money
	IsReconciled      bool
}

// ReconciliationReport represents a full reconciliation report.
type ReconciliationReport struct {
	Currency           string
	TotalAccounts      int
	ReconciledAccounts int
	Accounts           []*ReconciliationResult
	Discrepancies      []*ReconciliationResult
	TrialBalance       *domain.TrialBalance
	SideTotals         []domain.SideTotals
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReport recomputes every account balance over all history from a
// single postings read and compares it with the balance cache.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context, currency string) (*ReconciliationReport, error) {
	q := BalanceQuery{Currency: currency}

	tb, err := uc.ledger.TrialBalance(ctx, q)
	if err != nil {
		return nil, err
	}

	totals, consistencyErr := uc.ledger.CheckConsistency(ctx)
	if consistencyErr != nil && !errors.Is(consistencyErr, ErrInconsistentLedger) {
		return nil, consistencyErr
	}

	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	postings, err := uc.entryRepo.ListPostings(ctx, PostingFilter{Currency: tb.Currency})
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		Currency:         tb.Currency,
		TotalAccounts:    len(accounts),
		Accounts:         make([]*ReconciliationResult, 0, len(accounts)),
		Discrepancies:    make([]*ReconciliationResult, 0),
		TrialBalance:     tb,
		SideTotals:       totals,
		LedgerConsistent: consistencyErr == nil && tb.Balanced(),
		CheckedAt:        uc.clock.Now(),
	}

	for _, account := range accounts {
		result := uc.reconcile(ctx, account, postings, tb.Currency)
		report.Accounts = append(report.Accounts, result)
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account, postings []domain.Posting, currency string) *ReconciliationResult {
	result := &ReconciliationResult{
		Account:           account,
		CalculatedBalance: domain.AccountBalance(account, postings, domain.DateWindow{}, currency),
		IsReconciled:      true,
	}

	if uc.cache == nil {
		return result
	}

	cached, err := uc.cache.Get(ctx, BalanceKey{AccountID: account.ID, Currency: currency})
	if err != nil || !cached.Hit {
		return result
	}

	balance := cached.Balance
	result.CachedBalance = &balance
	result.IsReconciled = balance == result.CalculatedBalance

	return result
}
