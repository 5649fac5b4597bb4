package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/doubleentry/internal/domain"
)

// EntryUseCaseConfig carries the collaborators of EntryUseCase.
type EntryUseCaseConfig struct {
	TxManager       TransactionManager
	AccountRepo     AccountRepository
	EntryRepo       EntryRepository
	OutboxRepo      OutboxRepository
	IDGen           IDGenerator
	Retrier         Retrier
	Cache           BalanceCache
	Clock           domain.Clock
	Metrics         MetricsRecorder
	AmountPolicy    domain.AmountPolicy
	DefaultCurrency string
}

// EntryUseCase handles entry business logic.
type EntryUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	entryRepo       EntryRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	retrier         Retrier
	cache           BalanceCache
	clock           domain.Clock
	metrics         MetricsRecorder
	policy          domain.AmountPolicy
	defaultCurrency string
}

// NewEntryUseCase creates a new EntryUseCase. Retrier, Cache and Metrics
// are optional.
func NewEntryUseCase(cfg EntryUseCaseConfig) *EntryUseCase {
	uc := &EntryUseCase{
		txManager:       cfg.TxManager,
		accountRepo:     cfg.AccountRepo,
		entryRepo:       cfg.EntryRepo,
		outboxRepo:      cfg.OutboxRepo,
		idGen:           cfg.IDGen,
		retrier:         cfg.Retrier,
		cache:           cfg.Cache,
		clock:           cfg.Clock,
		metrics:         cfg.Metrics,
		policy:          cfg.AmountPolicy,
		defaultCurrency: domain.NormalizeCurrency(cfg.DefaultCurrency),
	}

	if uc.retrier == nil {
		uc.retrier = noRetry{}
	}
	if uc.metrics == nil {
		uc.metrics = NopMetrics{}
	}
	if uc.clock == nil {
		uc.clock = domain.SystemClock{}
	}
	if uc.defaultCurrency == "" {
		uc.defaultCurrency = DefaultCurrency
	}

	return uc
}

// AmountInput is one side of an entry line in minor units. An empty
// Currency means the configured default currency.
type AmountInput struct {
	AccountID string
	Amount    int64
	Currency  string
}

// PostEntryInput represents input for posting an entry.
type PostEntryInput struct {
	Description string
	Date        *time.Time
	DocumentRef *domain.DocumentRef
	Debits      []AmountInput
	Credits     []AmountInput
}

// PostEntry validates and records a balanced entry. The entry, every one of
// its amounts and the entry.posted event are written in one transaction, so
// balance readers see either all of it or none of it.
func (uc *EntryUseCase) PostEntry(ctx context.Context, input PostEntryInput) (*domain.Entry, error) {
	entry, err := uc.buildEntry(input)
	if err != nil {
		uc.recordRejection(err)
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.persist(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			uc.metrics.EntryRejected("account_not_found")
		}
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, entry.AccountIDs()...); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("entry_id", entry.ID).
				Strs("account_ids", entry.AccountIDs()).
				Msg("failed to invalidate balance cache")
		}
	}

	uc.metrics.EntryPosted(entry.Currency(uc.defaultCurrency), entry.Total().Amount)

	return entry, nil
}

func (uc *EntryUseCase) buildEntry(input PostEntryInput) (*domain.Entry, error) {
	var violations []error

	if err := domain.ValidateDescription(input.Description); err != nil {
		violations = append(violations, err)
	}
	if err := domain.ValidateDocumentRef(input.DocumentRef); err != nil {
		violations = append(violations, err)
	}

	debits, debitErrs := uc.buildAmounts(input.Debits, domain.Debit)
	credits, creditErrs := uc.buildAmounts(input.Credits, domain.Credit)
	violations = append(violations, debitErrs...)
	violations = append(violations, creditErrs...)

	if len(debitErrs)+len(creditErrs) == 0 {
		var verr *domain.ValidationError
		if errors.As(domain.ValidateEntry(input.Description, debits, credits), &verr) {
			violations = append(violations, verr.Violations...)
		}
	} else {
		// Some lines were dropped, so the totals are not comparable. Presence
		// is judged on the submitted lines.
		if strings.TrimSpace(input.Description) == "" {
			violations = append(violations, domain.ErrMissingDescription)
		}
		if len(input.Debits) == 0 {
			violations = append(violations, domain.ErrNoDebitAmounts)
		}
		if len(input.Credits) == 0 {
			violations = append(violations, domain.ErrNoCreditAmounts)
		}
		if err := domain.ValidateSingleCurrency(debits, credits); err != nil {
			violations = append(violations, err)
		}
	}

	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	return domain.NewEntry(domain.EntryParams{
		ID:            uc.idGen.Generate(),
		Description:   input.Description,
		Date:          input.Date,
		DocumentRef:   input.DocumentRef,
		DebitAmounts:  debits,
		CreditAmounts: credits,
	}, uc.clock)
}

func (uc *EntryUseCase) buildAmounts(inputs []AmountInput, side domain.Side) ([]domain.Amount, []error) {
	var (
		amounts []domain.Amount
		errs    []error
	)

	for i, in := range inputs {
		currency := domain.NormalizeCurrency(in.Currency)
		if currency == "" {
			currency = uc.defaultCurrency
		}

		if strings.TrimSpace(in.AccountID) == "" {
			errs = append(errs, fmt.Errorf("%s amount %d: %w", side, i, domain.ErrAccountNotFound))
			continue
		}
		if err := domain.ValidateCurrency(currency); err != nil {
			errs = append(errs, fmt.Errorf("%s amount %d: %w", side, i, err))
			continue
		}

		amount, err := uc.policy.NewAmount(in.AccountID, domain.NewMoney(in.Amount, currency), side)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s amount %d: %w", side, i, err))
			continue
		}
		amounts = append(amounts, amount)
	}

	return amounts, errs
}

func (uc *EntryUseCase) persist(ctx context.Context, entry *domain.Entry) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	accountIDs := entry.AccountIDs()
	accounts, err := uc.accountRepo.GetByIDsTx(ctx, tx, accountIDs)
	if err != nil {
		return err
	}
	if missing := missingAccounts(accountIDs, accounts); len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, strings.Join(missing, ", "))
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	event := domain.NewEntryPostedEvent(uc.idGen.Generate(), entry, entry.Currency(uc.defaultCurrency))
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *EntryUseCase) recordRejection(err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		uc.metrics.EntryRejected("invalid")
		return
	}
	for _, v := range verr.Violations {
		uc.metrics.EntryRejected(violationReason(v))
	}
}

// violationReason maps a violation to a low-cardinality metric label.
func violationReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingDescription):
		return "missing_description"
	case errors.Is(err, domain.ErrNoDebitAmounts):
		return "no_debit_amounts"
	case errors.Is(err, domain.ErrNoCreditAmounts):
		return "no_credit_amounts"
	case errors.Is(err, domain.ErrMultipleCurrencies):
		return "multiple_currencies"
	case errors.Is(err, domain.ErrUnbalancedEntry):
		return "unbalanced"
	case errors.Is(err, domain.ErrWrongSide):
		return "wrong_side"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInvalidCurrency):
		return "invalid_currency"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	default:
		return "invalid"
	}
}

func missingAccounts(ids []string, found []*domain.Account) []string {
	present := make(map[string]bool, len(found))
	for _, a := range found {
		present[a.ID] = true
	}

	var missing []string
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// GetEntry retrieves an entry with all of its amounts.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	Limit  int
	Offset int
}

// ListEntries lists entries ordered by date, newest first.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.List(ctx, limit, offset)
}

// GetEntriesByAccountInput represents input for listing entries.
type GetEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// GetEntriesByAccount lists entries touching an account.
func (uc *EntryUseCase) GetEntriesByAccount(ctx context.Context, input GetEntriesByAccountInput) ([]*domain.Entry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}
