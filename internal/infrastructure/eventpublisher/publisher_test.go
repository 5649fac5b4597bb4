package eventpublisher

import (
	"context"
	"errors"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: "type"}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type"},
			{ID: "evt-2", EventType: "type"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub)

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("expected only evt-2 to be marked, got %#v", repo.marked)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestProcessEventsReportsOutcomes(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeEntryPosted},
			{ID: "evt-2", EventType: domain.EventTypeAccountCreated},
		},
	}
	pub := &stubPublisher{errorsByID: map[string]error{"evt-2": errors.New("fail")}}
	observer := &stubObserver{}

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Observer:   observer,
		Logger:     zerolog.Nop(),
	})

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	if observer.ok != 1 || observer.failed != 1 {
		t.Fatalf("expected one success and one failure, got ok=%d failed=%d", observer.ok, observer.failed)
	}
}

func TestTickDeletesExpiredEvents(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubOutboxRepo{}

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  &stubPublisher{},
		Clock:      domain.FixedClock{T: now},
		Logger:     zerolog.Nop(),
		Retention:  24 * time.Hour,
	})

	ep.tick(context.Background())

	if want := now.Add(-24 * time.Hour); !repo.deletedBefore.Equal(want) {
		t.Fatalf("expected delete before %v, got %v", want, repo.deletedBefore)
	}
}

func TestTickReportsBacklog(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeEntryPosted},
			{ID: "evt-2", EventType: domain.EventTypeEntryPosted},
		},
	}
	pub := &stubPublisher{errorsByID: map[string]error{"evt-2": errors.New("fail")}}
	observer := &stubObserver{}

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Observer:   observer,
		Logger:     zerolog.Nop(),
	})

	ep.tick(context.Background())

	if len(observer.backlog) != 1 || observer.backlog[0] != 1 {
		t.Fatalf("expected backlog of 1 after one failure, got %v", observer.backlog)
	}
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:        "evt-1",
		EventType: domain.EventTypeAccountCreated,
		Payload:   map[string]any{"account_id": "acc-1"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if !strings.Contains(buf.String(), `"payload":{"account_id":"acc-1"}`) {
		t.Fatalf("expected payload in log line, got %q", buf.String())
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubObserver struct {
	ok, failed int
	backlog    []int64
}

func (s *stubObserver) OutboxBacklog(n int64) {
	s.backlog = append(s.backlog, n)
}

func (s *stubObserver) EventPublished(eventType string, err error) {
	if err != nil {
		s.failed++
		return
	}
	s.ok++
}

type stubOutboxRepo struct {
	events        []*domain.OutboxEvent
	marked        []string
	deletedBefore time.Time
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (s *stubOutboxRepo) CountUnpublished(ctx context.Context) (int64, error) {
	return int64(len(s.events) - len(s.marked)), nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.deletedBefore = before
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
