package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/infrastructure/postgres/generated"
	"github.com/iho/doubleentry/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create inserts the entry row and its amounts, debits first, within tx.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := queriesIn(tx)
	if err != nil {
		return err
	}

	params := generated.CreateEntryParams{
		ID:          entry.ID,
		Description: entry.Description,
		EntryDate:   dateToPgDate(entry.Date),
		CreatedAt:   timeToPgTimestamptz(entry.CreatedAt),
	}
	if ref := entry.DocumentRef; ref != nil {
		params.DocumentType = optionalText(ref.Type, true)
		params.DocumentID = optionalText(ref.ID, true)
	}

	if err := queries.CreateEntry(ctx, params); err != nil {
		return err
	}

	for i, amount := range entry.Amounts() {
		err := queries.CreateAmount(ctx, generated.CreateAmountParams{
			EntryID:   entry.ID,
			Position:  int32(i),
			AccountID: amount.AccountID,
			Side:      string(amount.Side),
			Amount:    amount.Money.Amount,
			Currency:  amount.Money.Currency,
		})
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, amount.AccountID)
			}
			return err
		}
	}

	return nil
}

// GetByID retrieves an entry with its amounts.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entries, err := r.withAmounts(ctx, []generated.Entry{row})
	if err != nil {
		return nil, err
	}

	return entries[0], nil
}

// List lists entries, newest first.
func (r *EntryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntries(ctx, generated.ListEntriesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return r.withAmounts(ctx, rows)
}

// ListByAccount lists entries with at least one amount against accountID, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return r.withAmounts(ctx, rows)
}

// ListPostings reads matching postings in a single statement.
func (r *EntryRepository) ListPostings(ctx context.Context, filter usecase.PostingFilter) ([]domain.Posting, error) {
	rows, err := r.queries.ListPostings(ctx, generated.ListPostingsParams{
		AccountIds: filter.AccountIDs,
		Currency:   filter.Currency,
		FromDate:   optionalDate(filter.Window.From),
		ToDate:     optionalDate(filter.Window.To),
	})
	if err != nil {
		return nil, err
	}

	postings := make([]domain.Posting, 0, len(rows))
	for _, row := range rows {
		postings = append(postings, domain.Posting{
			EntryID:   row.EntryID,
			EntryDate: pgDateToTime(row.EntryDate),
			Amount: domain.Amount{
				AccountID: row.AccountID,
				Money:     domain.NewMoney(row.Amount, row.Currency),
				Side:      domain.Side(row.Side),
			},
		})
	}

	return postings, nil
}

// withAmounts loads the amounts of rows in one query and assembles entries in row order.
func (r *EntryRepository) withAmounts(ctx context.Context, rows []generated.Entry) ([]*domain.Entry, error) {
	if len(rows) == 0 {
		return []*domain.Entry{}, nil
	}

	ids := make([]string, len(rows))
	byID := make(map[string]*domain.Entry, len(rows))
	entries := make([]*domain.Entry, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		entries[i] = rowToEntry(row)
		byID[row.ID] = entries[i]
	}

	amounts, err := r.queries.ListAmountsByEntryIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, a := range amounts {
		entry, ok := byID[a.EntryID]
		if !ok {
			continue
		}

		amount := domain.Amount{
			AccountID: a.AccountID,
			Money:     domain.NewMoney(a.Amount, a.Currency),
			Side:      domain.Side(a.Side),
		}
		if amount.Side == domain.Debit {
			entry.DebitAmounts = append(entry.DebitAmounts, amount)
		} else {
			entry.CreditAmounts = append(entry.CreditAmounts, amount)
		}
	}

	return entries, nil
}

func rowToEntry(row generated.Entry) *domain.Entry {
	entry := &domain.Entry{
		ID:          row.ID,
		Description: row.Description,
		Date:        pgDateToTime(row.EntryDate),
		CreatedAt:   row.CreatedAt.Time,
	}
	if row.DocumentType.Valid && row.DocumentID.Valid {
		entry.DocumentRef = &domain.DocumentRef{Type: row.DocumentType.String, ID: row.DocumentID.String}
	}

	return entry
}
