package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
	"github.com/iho/doubleentry/internal/usecase/mocks"
)

func datePtr(month time.Month, d int) *time.Time {
	t := date(month, d)
	return &t
}

func TestBalanceUseCase_AccountBalance(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "Cash", "asset", false)
	capital := f.account(t, "Capital", "equity", false)
	dep := f.account(t, "Accumulated Depreciation", "asset", true)
	expense := f.account(t, "Depreciation Expense", "expense", false)

	f.post(t, date(1, 1), lines(line(cash.ID, 1000)), lines(line(capital.ID, 1000)))
	f.post(t, date(1, 10), lines(line(capital.ID, 250)), lines(line(cash.ID, 250)))
	f.post(t, date(1, 20), lines(line(expense.ID, 300)), lines(line(dep.ID, 300)))

	tests := []struct {
		name    string
		account *domain.Account
		query   usecase.BalanceQuery
		want    int64
	}{
		{name: "asset over all history", account: cash, want: 750},
		{name: "equity is credit-normal", account: capital, want: 750},
		{name: "contra asset shows credits positive", account: dep, want: 300},
		{
			name:    "inclusive upper bound",
			account: cash,
			query:   usecase.BalanceQuery{Window: domain.NewDateWindow(nil, datePtr(1, 10))},
			want:    750,
		},
		{
			name:    "lower bound excludes earlier entries",
			account: cash,
			query:   usecase.BalanceQuery{Window: domain.NewDateWindow(datePtr(1, 2), nil)},
			want:    -250,
		},
		{
			name:    "from after to",
			account: cash,
			query:   usecase.BalanceQuery{Window: domain.NewDateWindow(datePtr(1, 10), datePtr(1, 1))},
			want:    0,
		},
		{
			name:    "other currency has no postings",
			account: cash,
			query:   usecase.BalanceQuery{Currency: "EUR"},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.balanceUC.AccountBalance(context.Background(), tt.account.ID, tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Amount != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got.Amount)
			}
		})
	}
}

func TestBalanceUseCase_UnknownAccount(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.balanceUC.AccountBalance(context.Background(), "missing", usecase.BalanceQuery{})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBalanceUseCase_CachesUntilNextPosting(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "Cash", "asset", false)
	sales := f.account(t, "Sales", "revenue", false)

	f.post(t, date(2, 1), lines(line(cash.ID, 100)), lines(line(sales.ID, 100)))

	for i := 0; i < 3; i++ {
		got, err := f.balanceUC.AccountBalance(context.Background(), cash.ID, usecase.BalanceQuery{})
		if err != nil || got.Amount != 100 {
			t.Fatalf("expected 100, got %v (%v)", got, err)
		}
	}
	if calls := f.entries.PostingsCalls(); calls != 1 {
		t.Fatalf("expected one postings read, got %d", calls)
	}
	if f.metrics.CacheHits != 2 {
		t.Fatalf("expected 2 cache hits, got %d", f.metrics.CacheHits)
	}

	f.post(t, date(2, 2), lines(line(cash.ID, 50)), lines(line(sales.ID, 50)))

	got, err := f.balanceUC.AccountBalance(context.Background(), cash.ID, usecase.BalanceQuery{})
	if err != nil || got.Amount != 150 {
		t.Fatalf("expected fresh balance 150 after posting, got %v (%v)", got, err)
	}
}

func TestBalanceUseCase_CacheErrorsFallBackToHistory(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "Cash", "asset", false)
	sales := f.account(t, "Sales", "revenue", false)
	f.post(t, date(2, 1), lines(line(cash.ID, 100)), lines(line(sales.ID, 100)))

	f.cache.GetErr = errors.New("redis down")

	got, err := f.balanceUC.AccountBalance(context.Background(), cash.ID, usecase.BalanceQuery{})
	if err != nil || got.Amount != 100 {
		t.Fatalf("expected 100, got %v (%v)", got, err)
	}
}

func TestBalanceUseCase_TypeBalance(t *testing.T) {
	f := newLedgerFixture(t)
	equipment := f.account(t, "Equipment", "asset", false)
	cash := f.account(t, "Cash", "asset", false)
	dep := f.account(t, "Accumulated Depreciation", "asset", true)
	capital := f.account(t, "Capital", "equity", false)
	expense := f.account(t, "Depreciation Expense", "expense", false)

	f.post(t, date(3, 1), lines(line(equipment.ID, 1000), line(cash.ID, 500)), lines(line(capital.ID, 1500)))
	f.post(t, date(3, 31), lines(line(expense.ID, 300)), lines(line(dep.ID, 300)))

	assets, err := f.balanceUC.TypeBalance(context.Background(), domain.AccountTypeAsset, usecase.BalanceQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assets.Amount != 1200 {
		t.Fatalf("expected assets net of contra 1200, got %d", assets.Amount)
	}

	beforeDepreciation, err := f.balanceUC.TypeBalance(context.Background(), domain.AccountTypeAsset, usecase.BalanceQuery{
		Window: domain.NewDateWindow(nil, datePtr(3, 30)),
	})
	if err != nil || beforeDepreciation.Amount != 1500 {
		t.Fatalf("expected 1500 before depreciation, got %v (%v)", beforeDepreciation, err)
	}

	revenue, err := f.balanceUC.TypeBalance(context.Background(), domain.AccountTypeRevenue, usecase.BalanceQuery{})
	if err != nil || revenue != domain.Zero("USD") {
		t.Fatalf("expected zero revenue with no accounts, got %v (%v)", revenue, err)
	}

	if _, err := f.balanceUC.TypeBalance(context.Background(), domain.AccountType("income"), usecase.BalanceQuery{}); !errors.Is(err, domain.ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}
}

func TestBalanceUseCase_RepositoryErrorSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	entries := mocks.NewMockEntryRepository(ctrl)
	dbErr := errors.New("db down")

	accounts.EXPECT().GetByID(gomock.Any(), "cash").Return(&domain.Account{ID: "cash", Type: domain.AccountTypeAsset}, nil)
	entries.EXPECT().ListPostings(gomock.Any(), usecase.PostingFilter{AccountIDs: []string{"cash"}, Currency: "JPY"}).Return(nil, dbErr)

	uc := usecase.NewBalanceUseCase(accounts, entries, nil, nil, "jpy")

	if _, err := uc.AccountBalance(context.Background(), "cash", usecase.BalanceQuery{}); !errors.Is(err, dbErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
}
