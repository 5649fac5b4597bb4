package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// Store is an in-memory ledger shared by the fake repositories. Writes made
// through a FakeTransaction become visible together on Commit.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	order    []string
	entries  []*domain.Entry
	events   []*domain.OutboxEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*domain.Account)}
}

// Entries returns a snapshot of committed entries in insertion order.
func (s *Store) Entries() []*domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Entry(nil), s.entries...)
}

// Events returns a snapshot of committed outbox events.
func (s *Store) Events() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.events...)
}

// apply runs op under the write lock, or queues it when tx is a FakeTransaction.
func (s *Store) apply(tx usecase.Transaction, op func()) {
	if ftx, ok := tx.(*FakeTransaction); ok {
		ftx.pending = append(ftx.pending, op)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	op()
}

// FakeTransactionManager hands out FakeTransactions bound to a Store.
type FakeTransactionManager struct {
	store *Store

	BeginFunc  func(ctx context.Context) (usecase.Transaction, error)
	CommitFunc func(ctx context.Context) error
}

func NewFakeTransactionManager(store *Store) *FakeTransactionManager {
	return &FakeTransactionManager{store: store}
}

func (m *FakeTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &FakeTransaction{store: m.store, commitFunc: m.CommitFunc}, nil
}

// FakeTransaction buffers writes until Commit.
type FakeTransaction struct {
	store      *Store
	pending    []func()
	done       bool
	commitFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *FakeTransaction) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	if t.commitFunc != nil {
		if err := t.commitFunc(ctx); err != nil {
			return err
		}
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, op := range t.pending {
		op()
	}
	t.pending = nil
	t.done = true
	t.Committed = true
	return nil
}

func (t *FakeTransaction) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.pending = nil
	t.done = true
	t.RolledBack = true
	return nil
}

// FakeAccountRepository is an in-memory AccountRepository.
type FakeAccountRepository struct {
	store *Store

	GetByIDFunc func(ctx context.Context, id string) (*domain.Account, error)
}

func NewFakeAccountRepository(store *Store) *FakeAccountRepository {
	return &FakeAccountRepository{store: store}
}

// Add stores accounts directly, bypassing transactions.
func (r *FakeAccountRepository) Add(accounts ...*domain.Account) {
	for _, a := range accounts {
		_ = r.Create(context.Background(), a)
	}
}

func (r *FakeAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.CreateTx(ctx, nil, account)
}

func (r *FakeAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	r.store.apply(tx, func() {
		if _, ok := r.store.accounts[account.ID]; !ok {
			r.store.order = append(r.store.order, account.ID)
		}
		r.store.accounts[account.ID] = account
	})
	return nil
}

func (r *FakeAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if r.GetByIDFunc != nil {
		return r.GetByIDFunc(ctx, id)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if acc, ok := r.store.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *FakeAccountRepository) GetByIDsTx(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := r.store.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (r *FakeAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	all, _ := r.ListAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *FakeAccountRepository) ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error) {
	all, _ := r.ListAll(ctx)
	var accounts []*domain.Account
	for _, a := range all {
		if a.Type == accountType {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

func (r *FakeAccountRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(r.store.order))
	for _, id := range r.store.order {
		accounts = append(accounts, r.store.accounts[id])
	}
	return accounts, nil
}

// FakeEntryRepository is an in-memory EntryRepository.
type FakeEntryRepository struct {
	store *Store

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	ListPostingsFunc func(ctx context.Context, filter usecase.PostingFilter) ([]domain.Posting, error)
	postingsCalls    int
	callsMu          sync.Mutex
}

func NewFakeEntryRepository(store *Store) *FakeEntryRepository {
	return &FakeEntryRepository{store: store}
}

func (r *FakeEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, tx, entry); err != nil {
			return err
		}
	}
	r.store.apply(tx, func() {
		r.store.entries = append(r.store.entries, entry)
	})
	return nil
}

func (r *FakeEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, e := range r.store.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (r *FakeEntryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Entry, error) {
	return paginate(r.store.Entries(), limit, offset), nil
}

func (r *FakeEntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	var matched []*domain.Entry
	for _, e := range r.store.Entries() {
		for _, id := range e.AccountIDs() {
			if id == accountID {
				matched = append(matched, e)
				break
			}
		}
	}
	return paginate(matched, limit, offset), nil
}

func (r *FakeEntryRepository) ListPostings(ctx context.Context, filter usecase.PostingFilter) ([]domain.Posting, error) {
	r.callsMu.Lock()
	r.postingsCalls++
	r.callsMu.Unlock()

	if r.ListPostingsFunc != nil {
		return r.ListPostingsFunc(ctx, filter)
	}

	wanted := make(map[string]bool, len(filter.AccountIDs))
	for _, id := range filter.AccountIDs {
		wanted[id] = true
	}

	var postings []domain.Posting
	for _, e := range r.store.Entries() {
		if !filter.Window.Contains(e.Date) || filter.Window.IsEmpty() {
			continue
		}
		for _, a := range e.Amounts() {
			if len(wanted) > 0 && !wanted[a.AccountID] {
				continue
			}
			if filter.Currency != "" && a.Currency() != filter.Currency {
				continue
			}
			postings = append(postings, domain.Posting{EntryID: e.ID, EntryDate: e.Date, Amount: a})
		}
	}

	sort.SliceStable(postings, func(i, j int) bool {
		if !postings[i].EntryDate.Equal(postings[j].EntryDate) {
			return postings[i].EntryDate.Before(postings[j].EntryDate)
		}
		return postings[i].EntryID < postings[j].EntryID
	})
	return postings, nil
}

// PostingsCalls reports how many times ListPostings was called.
func (r *FakeEntryRepository) PostingsCalls() int {
	r.callsMu.Lock()
	defer r.callsMu.Unlock()
	return r.postingsCalls
}

func paginate(entries []*domain.Entry, limit, offset int) []*domain.Entry {
	if offset >= len(entries) {
		return nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

// FakeOutboxRepository is an in-memory OutboxRepository.
type FakeOutboxRepository struct {
	store *Store

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewFakeOutboxRepository(store *Store) *FakeOutboxRepository {
	return &FakeOutboxRepository{store: store}
}

func (r *FakeOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, tx, event); err != nil {
			return err
		}
	}
	r.store.apply(tx, func() {
		r.store.events = append(r.store.events, event)
	})
	return nil
}

func (r *FakeOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	for _, e := range r.store.Events() {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (r *FakeOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (r *FakeOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	for _, e := range r.store.Events() {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	if offset >= len(events) {
		return nil, nil
	}
	events = events[offset:]
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *FakeOutboxRepository) CountUnpublished(ctx context.Context) (int64, error) {
	var n int64
	for _, e := range r.store.Events() {
		if !e.Published {
			n++
		}
	}
	return n, nil
}

func (r *FakeOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.events[:0]
	for _, e := range r.store.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.store.events = kept
	return nil
}

// FakeLedgerRepository computes side totals from the Store.
type FakeLedgerRepository struct {
	store *Store
}

func NewFakeLedgerRepository(store *Store) *FakeLedgerRepository {
	return &FakeLedgerRepository{store: store}
}

func (r *FakeLedgerRepository) SideTotals(ctx context.Context) ([]domain.SideTotals, error) {
	byCurrency := make(map[string]*domain.SideTotals)
	var order []string
	for _, e := range r.store.Entries() {
		for _, a := range e.Amounts() {
			t, ok := byCurrency[a.Currency()]
			if !ok {
				t = &domain.SideTotals{Currency: a.Currency()}
				byCurrency[a.Currency()] = t
				order = append(order, a.Currency())
			}
			if a.Side == domain.Debit {
				t.Debits += a.Money.Amount
			} else {
				t.Credits += a.Money.Amount
			}
		}
	}
	sort.Strings(order)
	totals := make([]domain.SideTotals, 0, len(order))
	for _, c := range order {
		totals = append(totals, *byCurrency[c])
	}
	return totals, nil
}

// FakeBalanceCache is an in-memory BalanceCache with generation counters.
type FakeBalanceCache struct {
	mu          sync.Mutex
	generations map[string]int64
	values      map[string]domain.Money

	GetErr error
}

func NewFakeBalanceCache() *FakeBalanceCache {
	return &FakeBalanceCache{
		generations: make(map[string]int64),
		values:      make(map[string]domain.Money),
	}
}

func cacheKey(key usecase.BalanceKey, generation int64) string {
	return fmt.Sprintf("%s:%d:%s:%s", key.AccountID, generation, key.Currency, key.Window)
}

func (c *FakeBalanceCache) Get(ctx context.Context, key usecase.BalanceKey) (usecase.CachedBalance, error) {
	if c.GetErr != nil {
		return usecase.CachedBalance{}, c.GetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generations[key.AccountID]
	value, ok := c.values[cacheKey(key, gen)]
	return usecase.CachedBalance{Generation: gen, Balance: value, Hit: ok}, nil
}

func (c *FakeBalanceCache) Set(ctx context.Context, key usecase.BalanceKey, generation int64, balance domain.Money) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[cacheKey(key, generation)] = balance
	return nil
}

func (c *FakeBalanceCache) Invalidate(ctx context.Context, accountIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range accountIDs {
		c.generations[id]++
	}
	return nil
}

// SequenceIDGenerator returns prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// FakeIdempotencyStore is an in-memory IdempotencyStore.
type FakeIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewFakeIdempotencyStore() *FakeIdempotencyStore {
	return &FakeIdempotencyStore{data: make(map[string][]byte)}
}

func (m *FakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyPending)
	}
	return false, nil, nil
}

func (m *FakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *FakeIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// RecordingMetrics counts MetricsRecorder calls.
type RecordingMetrics struct {
	mu         sync.Mutex
	Accounts   int
	Posted     int
	Rejections map[string]int
	CacheHits  int
	CacheMiss  int
}

func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{Rejections: make(map[string]int)}
}

func (m *RecordingMetrics) AccountCreated(domain.AccountType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accounts++
}

func (m *RecordingMetrics) EntryPosted(string, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted++
}

func (m *RecordingMetrics) EntryRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejections[reason]++
}

func (m *RecordingMetrics) BalanceQueried(kind string, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cacheHit {
		m.CacheHits++
	} else {
		m.CacheMiss++
	}
}
