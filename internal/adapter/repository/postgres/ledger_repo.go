package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// SideTotals sums debit and credit amounts per currency.
func (r *LedgerRepository) SideTotals(ctx context.Context) ([]domain.SideTotals, error) {
	rows, err := r.queries.SideTotalsByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	totals := make([]domain.SideTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.SideTotals{
			Currency: row.Currency,
			Debits:   row.Debits,
			Credits:  row.Credits,
		})
	}

	return totals, nil
}
