package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/doubleentry/internal/domain"
)

// BalanceUseCase derives balances from posting history.
type BalanceUseCase struct {
	accountRepo     AccountRepository
	entryRepo       EntryRepository
	cache           BalanceCache
	metrics         MetricsRecorder
	defaultCurrency string
}

// NewBalanceUseCase creates a new BalanceUseCase. cache and metrics may be nil.
func NewBalanceUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	cache BalanceCache,
	metrics MetricsRecorder,
	defaultCurrency string,
) *BalanceUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	defaultCurrency = domain.NormalizeCurrency(defaultCurrency)
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	return &BalanceUseCase{
		accountRepo:     accountRepo,
		entryRepo:       entryRepo,
		cache:           cache,
		metrics:         metrics,
		defaultCurrency: defaultCurrency,
	}
}

// BalanceQuery selects the postings a balance is computed over. An empty
// Currency means the configured default currency.
type BalanceQuery struct {
	Window   domain.DateWindow
	Currency string
}

func (uc *BalanceUseCase) currency(q BalanceQuery) string {
	if c := domain.NormalizeCurrency(q.Currency); c != "" {
		return c
	}
	return uc.defaultCurrency
}

// AccountBalance returns the balance of one account. Unknown accounts yield
// domain.ErrAccountNotFound, never a zero balance.
func (uc *BalanceUseCase) AccountBalance(ctx context.Context, accountID string, q BalanceQuery) (domain.Money, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}

	currency := uc.currency(q)
	key := BalanceKey{AccountID: account.ID, Currency: currency, Window: q.Window}

	var (
		cached    CachedBalance
		cacheable bool
	)
	if uc.cache != nil {
		cached, err = uc.cache.Get(ctx, key)
		switch {
		case err != nil:
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", accountID).Msg("balance cache read failed")
		case cached.Hit:
			uc.metrics.BalanceQueried("account", true)
			return cached.Balance, nil
		default:
			cacheable = true
		}
	}

	postings, err := uc.entryRepo.ListPostings(ctx, PostingFilter{
		AccountIDs: []string{account.ID},
		Currency:   currency,
		Window:     q.Window,
	})
	if err != nil {
		return domain.Money{}, err
	}

	balance := domain.AccountBalance(account, postings, q.Window, currency)
	uc.metrics.BalanceQueried("account", false)

	if cacheable {
		if err := uc.cache.Set(ctx, key, cached.Generation, balance); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("account_id", accountID).Msg("balance cache write failed")
		}
	}

	return balance, nil
}

// TypeBalance returns the aggregate balance of every account of one type.
// Contra accounts reduce the total.
func (uc *BalanceUseCase) TypeBalance(ctx context.Context, accountType domain.AccountType, q BalanceQuery) (domain.Money, error) {
	if !accountType.Valid() {
		return domain.Money{}, domain.ErrInvalidAccountType
	}

	currency := uc.currency(q)

	accounts, err := uc.accountRepo.ListByType(ctx, accountType)
	if err != nil {
		return domain.Money{}, err
	}
	uc.metrics.BalanceQueried("type", false)

	if len(accounts) == 0 {
		return domain.Zero(currency), nil
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	postings, err := uc.entryRepo.ListPostings(ctx, PostingFilter{
		AccountIDs: ids,
		Currency:   currency,
		Window:     q.Window,
	})
	if err != nil {
		return domain.Money{}, err
	}

	return domain.TypeBalance(accounts, postings, q.Window, currency), nil
}
