package usecase

import "time"

// DefaultTransactionTimeout bounds every write transaction.
const DefaultTransactionTimeout = 10 * time.Second

// Idempotency defaults shared by the HTTP middleware and the redis store.
const (
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is held under a key until the first request
	// carrying it completes.
	IdempotencyPending = "processing"
)

// DefaultCurrency is used when neither the caller nor the configuration
// names one.
const DefaultCurrency = "USD"
