package handler

import (
	"context"
	"net/http"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// EventService defines the event history reads needed by EventHandler.
type EventService interface {
	ListAccountEvents(ctx context.Context, input usecase.ListEventsInput) ([]*domain.OutboxEvent, error)
	ListEntryEvents(ctx context.Context, input usecase.ListEventsInput) ([]*domain.OutboxEvent, error)
}

// EventHandler serves the outbox history of accounts and entries.
type EventHandler struct {
	eventUC EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventUC EventService) *EventHandler {
	return &EventHandler{eventUC: eventUC}
}

type listEventsFunc func(context.Context, usecase.ListEventsInput) ([]*domain.OutboxEvent, error)

// ForAccount lists the events of the account in the URL.
func (h *EventHandler) ForAccount(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.eventUC.ListAccountEvents)
}

// ForEntry lists the events of the entry in the URL.
func (h *EventHandler) ForEntry(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.eventUC.ListEntryEvents)
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request, fn listEventsFunc) {
	id, ok := pathID(w, r, "aggregate")
	if !ok {
		return
	}

	events, err := fn(r.Context(), usecase.ListEventsInput{
		ID:     id,
		Limit:  parseIntQuery(r, "limit", 50),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list events", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
