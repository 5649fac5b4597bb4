package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
	"github.com/iho/doubleentry/internal/usecase/mocks"
)

func TestEventUseCase_History(t *testing.T) {
	f := newLedgerFixture(t)
	cash := f.account(t, "Cash", "asset", false)
	sales := f.account(t, "Sales", "revenue", false)
	entry := f.post(t, date(6, 1), lines(line(cash.ID, 75)), lines(line(sales.ID, 75)))

	uc := usecase.NewEventUseCase(f.outbox, f.accounts, f.entries)

	accountEvents, err := uc.ListAccountEvents(context.Background(), usecase.ListEventsInput{ID: cash.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accountEvents) != 1 || accountEvents[0].EventType != domain.EventTypeAccountCreated {
		t.Fatalf("expected account.created only, got %+v", accountEvents)
	}

	entryEvents, err := uc.ListEntryEvents(context.Background(), usecase.ListEventsInput{ID: entry.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entryEvents) != 1 || entryEvents[0].AggregateID != entry.ID {
		t.Fatalf("expected entry.posted for %s, got %+v", entry.ID, entryEvents)
	}

	if _, err := uc.ListAccountEvents(context.Background(), usecase.ListEventsInput{ID: "missing"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := uc.ListEntryEvents(context.Background(), usecase.ListEventsInput{ID: "missing"}); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestEventUseCase_PaginationClamped(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)

	accounts.EXPECT().GetByID(gomock.Any(), "cash").Return(&domain.Account{ID: "cash"}, nil)
	outbox.EXPECT().GetByAggregate(gomock.Any(), domain.AggregateTypeAccount, "cash", 1000, 0).Return(nil, nil)

	uc := usecase.NewEventUseCase(outbox, accounts, nil)
	if _, err := uc.ListAccountEvents(context.Background(), usecase.ListEventsInput{ID: "cash", Limit: 5000, Offset: -3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
