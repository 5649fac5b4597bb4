package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/infrastructure/postgres/generated"
	"github.com/iho/doubleentry/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create creates a new account outside of any transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return createAccount(ctx, r.queries, account)
}

// CreateTx creates a new account within tx.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := queriesIn(tx)
	if err != nil {
		return err
	}
	return createAccount(ctx, queries, account)
}

func createAccount(ctx context.Context, q *generated.Queries, account *domain.Account) error {
	_, err := q.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        account.ID,
		Name:      account.Name,
		Type:      string(account.Type),
		Contra:    account.Contra,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
	})

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDsTx retrieves the existing accounts among ids with a FOR SHARE lock.
func (r *AccountRepository) GetByIDsTx(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	queries, err := queriesIn(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForShare(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// ListByType lists every account of the given type.
func (r *AccountRepository) ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccountsByType(ctx, string(accountType))
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// ListAll lists the whole chart of accounts.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.queries.ListAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		Name:      row.Name,
		Type:      domain.AccountType(row.Type),
		Contra:    row.Contra,
		CreatedAt: row.CreatedAt.Time,
	}
}
