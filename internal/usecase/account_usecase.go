package usecase

import (
	"context"
	"strings"

	"github.com/iho/doubleentry/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	clock       domain.Clock
	metrics     MetricsRecorder
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock domain.Clock,
	metrics MetricsRecorder,
) *AccountUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name   string
	Type   string
	Contra bool
}

// CreateAccount creates a new account and records an account.created event
// in the same transaction.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Type:      accountType,
		Contra:    input.Contra,
		CreatedAt: uc.clock.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	event := domain.NewAccountCreatedEvent(uc.idGen.Generate(), account)
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.metrics.AccountCreated(account.Type)

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts. A non-empty Type
// returns every account of that type and ignores pagination.
type ListAccountsInput struct {
	Type   string
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Type != "" {
		accountType, err := domain.ParseAccountType(input.Type)
		if err != nil {
			return nil, err
		}
		return uc.accountRepo.ListByType(ctx, accountType)
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}
