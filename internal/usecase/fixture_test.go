package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
	"github.com/iho/doubleentry/internal/usecase/mocks"
)

var fixtureNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

// ledgerFixture wires every use case to one in-memory store.
type ledgerFixture struct {
	store     *mocks.Store
	accounts  *mocks.FakeAccountRepository
	entries   *mocks.FakeEntryRepository
	outbox    *mocks.FakeOutboxRepository
	txManager *mocks.FakeTransactionManager
	cache     *mocks.FakeBalanceCache
	metrics   *mocks.RecordingMetrics

	accountUC *usecase.AccountUseCase
	entryUC   *usecase.EntryUseCase
	balanceUC *usecase.BalanceUseCase
	ledgerUC  *usecase.LedgerUseCase
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := mocks.NewStore()
	f := &ledgerFixture{
		store:     store,
		accounts:  mocks.NewFakeAccountRepository(store),
		entries:   mocks.NewFakeEntryRepository(store),
		outbox:    mocks.NewFakeOutboxRepository(store),
		txManager: mocks.NewFakeTransactionManager(store),
		cache:     mocks.NewFakeBalanceCache(),
		metrics:   mocks.NewRecordingMetrics(),
	}
	clock := domain.FixedClock{T: fixtureNow}
	idGen := mocks.NewSequenceIDGenerator("id")

	f.accountUC = usecase.NewAccountUseCase(f.txManager, f.accounts, f.outbox, idGen, clock, f.metrics)
	f.entryUC = usecase.NewEntryUseCase(usecase.EntryUseCaseConfig{
		TxManager:       f.txManager,
		AccountRepo:     f.accounts,
		EntryRepo:       f.entries,
		OutboxRepo:      f.outbox,
		IDGen:           idGen,
		Cache:           f.cache,
		Clock:           clock,
		Metrics:         f.metrics,
		DefaultCurrency: "USD",
	})
	f.balanceUC = usecase.NewBalanceUseCase(f.accounts, f.entries, f.cache, f.metrics, "USD")
	f.ledgerUC = usecase.NewLedgerUseCase(f.accounts, f.entries, mocks.NewFakeLedgerRepository(store), "USD")

	return f
}

func (f *ledgerFixture) account(t *testing.T, name, accountType string, contra bool) *domain.Account {
	t.Helper()

	acc, err := f.accountUC.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Name:   name,
		Type:   accountType,
		Contra: contra,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return acc
}

func (f *ledgerFixture) post(t *testing.T, date time.Time, debits, credits []usecase.AmountInput) *domain.Entry {
	t.Helper()

	entry, err := f.entryUC.PostEntry(context.Background(), usecase.PostEntryInput{
		Description: "test entry",
		Date:        &date,
		Debits:      debits,
		Credits:     credits,
	})
	if err != nil {
		t.Fatalf("post entry: %v", err)
	}
	return entry
}

func line(accountID string, amount int64) usecase.AmountInput {
	return usecase.AmountInput{AccountID: accountID, Amount: amount}
}

func lines(in ...usecase.AmountInput) []usecase.AmountInput {
	return in
}

func date(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}
