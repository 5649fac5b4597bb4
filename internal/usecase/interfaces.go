package usecase

import (
	"context"
	"time"

	"github.com/iho/doubleentry/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIDsTx returns the accounts that exist among ids, locked against
	// concurrent removal until tx ends.
	GetByIDsTx(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
}

// PostingFilter selects postings for balance computation. An empty
// AccountIDs slice selects postings of every account; an empty Currency
// selects every currency.
type PostingFilter struct {
	AccountIDs []string
	Currency   string
	Window     domain.DateWindow
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	// Create appends the entry and all of its amounts inside tx.
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Entry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// ListPostings returns matching postings ordered by entry date, then
	// entry id, then amount position. The result is read from one snapshot.
	ListPostings(ctx context.Context, filter PostingFilter) ([]domain.Posting, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	// SideTotals sums debit and credit amounts per currency.
	SideTotals(ctx context.Context) ([]domain.SideTotals, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	// GetByAggregate lists the events of one account or entry, oldest first.
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
	CountUnpublished(ctx context.Context) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// CachedBalance is the result of a balance cache lookup. Generation must be
// passed back to Set so that a value computed before a concurrent posting is
// never stored under the newer generation.
type CachedBalance struct {
	Generation int64
	Balance    domain.Money
	Hit        bool
}

// BalanceKey identifies one cached account balance.
type BalanceKey struct {
	AccountID string
	Currency  string
	Window    domain.DateWindow
}

// BalanceCache caches computed account balances per window.
type BalanceCache interface {
	Get(ctx context.Context, key BalanceKey) (CachedBalance, error)
	Set(ctx context.Context, key BalanceKey, generation int64, balance domain.Money) error
	// Invalidate moves the given accounts to a new generation.
	Invalidate(ctx context.Context, accountIDs ...string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so that it can be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives ledger business metrics.
type MetricsRecorder interface {
	AccountCreated(accountType domain.AccountType)
	EntryPosted(currency string, total int64)
	EntryRejected(reason string)
	BalanceQueried(kind string, cacheHit bool)
}

// NopMetrics discards all metrics.
type NopMetrics struct{}

func (NopMetrics) AccountCreated(domain.AccountType) {}
func (NopMetrics) EntryPosted(string, int64)         {}
func (NopMetrics) EntryRejected(string)              {}
func (NopMetrics) BalanceQueried(string, bool)       {}
