package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	PostEntry(ctx context.Context, input usecase.PostEntryInput) (*domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	GetEntriesByAccount(ctx context.Context, input usecase.GetEntriesByAccountInput) ([]*domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC         EntryService
	defaultCurrency string
}

// NewEntryHandler creates a new EntryHandler. defaultCurrency decides the
// precision of decimal amounts sent without a currency.
func NewEntryHandler(entryUC EntryService, defaultCurrency string) *EntryHandler {
	if defaultCurrency == "" {
		defaultCurrency = usecase.DefaultCurrency
	}
	return &EntryHandler{entryUC: entryUC, defaultCurrency: defaultCurrency}
}

// Post records a journal entry.
func (h *EntryHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req dto.PostEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(h.defaultCurrency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry", err.Error())
		return
	}

	entry, err := h.entryUC.PostEntry(r.Context(), input)
	if err != nil {
		// unknown accounts found inside the transaction arrive unwrapped
		var verr *domain.ValidationError
		if errors.Is(err, domain.ErrAccountNotFound) && !errors.As(err, &verr) {
			err = &domain.ValidationError{Violations: []error{err}}
		}
		writeDomainError(w, r, "failed to post entry", err)
		return
	}

	w.Header().Set("Location", "/api/v1/entries/"+entry.ID)
	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves an entry with its amounts.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "entry")
	if !ok {
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists entries, newest first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByAccount lists entries that touch an account.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "account")
	if !ok {
		return
	}

	entries, err := h.entryUC.GetEntriesByAccount(r.Context(), usecase.GetEntriesByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
