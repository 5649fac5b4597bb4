package usecase

import (
	"context"

	"github.com/iho/doubleentry/internal/domain"
)

// EventUseCase reads the outbox history of accounts and entries.
type EventUseCase struct {
	outboxRepo  OutboxRepository
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewEventUseCase creates a new EventUseCase.
func NewEventUseCase(outboxRepo OutboxRepository, accountRepo AccountRepository, entryRepo EntryRepository) *EventUseCase {
	return &EventUseCase{
		outboxRepo:  outboxRepo,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ListEventsInput represents input for listing the events of one aggregate.
type ListEventsInput struct {
	ID     string
	Limit  int
	Offset int
}

// ListAccountEvents returns the events recorded for an account, oldest first.
func (uc *EventUseCase) ListAccountEvents(ctx context.Context, input ListEventsInput) ([]*domain.OutboxEvent, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.ID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeAccount, input.ID, limit, offset)
}

// ListEntryEvents returns the events recorded for an entry, oldest first.
func (uc *EventUseCase) ListEntryEvents(ctx context.Context, input ListEventsInput) ([]*domain.OutboxEvent, error) {
	if _, err := uc.entryRepo.GetByID(ctx, input.ID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeEntry, input.ID, limit, offset)
}
