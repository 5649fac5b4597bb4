package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/doubleentry/internal/usecase"
)

type pgxPool interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
	opts pgx.TxOptions
}

// NewTxManager creates a TxManager that opens transactions at the given
// isolation level. An empty level uses the server default.
func NewTxManager(pool *pgxpool.Pool, isolation string) (*TxManager, error) {
	level, err := ParseIsolationLevel(isolation)
	if err != nil {
		return nil, err
	}

	return newTxManagerWithPool(pool, pgx.TxOptions{IsoLevel: level}), nil
}

func newTxManagerWithPool(pool pgxPool, opts pgx.TxOptions) *TxManager {
	return &TxManager{pool: pool, opts: opts}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// ParseIsolationLevel maps a configuration value such as "serializable" or
// "read committed" to a pgx isolation level.
func ParseIsolationLevel(s string) (pgx.TxIsoLevel, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")

	switch pgx.TxIsoLevel(normalized) {
	case "":
		return "", nil
	case pgx.Serializable, pgx.RepeatableRead, pgx.ReadCommitted, pgx.ReadUncommitted:
		return pgx.TxIsoLevel(normalized), nil
	default:
		return "", fmt.Errorf("unknown transaction isolation level %q", s)
	}
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
