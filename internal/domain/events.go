package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeEntryPosted    = "entry.posted"
	EventTypeAccountCreated = "account.created"
)

// Aggregate types
const (
	AggregateTypeEntry   = "entry"
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryPostedEvent payload
type EntryPostedEvent struct {
	EntryID     string   `json:"entry_id"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Currency    string   `json:"currency"`
	Total       int64    `json:"total"`
	AccountIDs  []string `json:"account_ids"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Contra    bool   `json:"contra"`
}

// NewEntryPostedEvent builds the outbox event announcing a posted entry.
func NewEntryPostedEvent(id string, e *Entry, currency string) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   e.ID,
		AggregateType: AggregateTypeEntry,
		EventType:     EventTypeEntryPosted,
		Payload: payloadOf(EntryPostedEvent{
			EntryID:     e.ID,
			Description: e.Description,
			Date:        e.Date.Format(DateLayout),
			Currency:    currency,
			Total:       e.Total().Amount,
			AccountIDs:  e.AccountIDs(),
		}),
		CreatedAt: e.CreatedAt,
	}
}

// NewAccountCreatedEvent builds the outbox event announcing a new account.
func NewAccountCreatedEvent(id string, a *Account) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountCreated,
		Payload: payloadOf(AccountCreatedEvent{
			AccountID: a.ID,
			Name:      a.Name,
			Type:      string(a.Type),
			Contra:    a.Contra,
		}),
		CreatedAt: a.CreatedAt,
	}
}

// payloadOf converts an event payload struct to its JSON object form.
func payloadOf(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "failed to marshal payload"}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"error": "failed to unmarshal payload"}
	}

	return result
}
