package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes worth re-running a whole transaction for.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// RetryPolicy bounds how often and how fast a failed transaction is re-run.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

// RetryObserver is told about every retry, keyed by SQLSTATE.
type RetryObserver interface {
	TxRetried(code string)
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithRetryPolicy replaces the default policy.
func WithRetryPolicy(p RetryPolicy) RetrierOption {
	return func(r *Retrier) { r.policy = p }
}

// WithRetryObserver reports retries to o.
func WithRetryObserver(o RetryObserver) RetrierOption {
	return func(r *Retrier) {
		if o != nil {
			r.observer = o
		}
	}
}

// Retrier implements usecase.Retrier. It re-runs operations that failed with
// a serialization failure or deadlock, backing off exponentially.
type Retrier struct {
	policy   RetryPolicy
	observer RetryObserver
	logger   zerolog.Logger
}

// NewRetrier creates a Retrier with DefaultRetryPolicy unless overridden.
func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		policy:   DefaultRetryPolicy(),
		observer: nopRetryObserver{},
		logger:   logger.With().Str("component", "retrier").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs operation until it succeeds, fails with a non-retryable error,
// exhausts the policy or ctx is done. The last error is returned as is.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = 0

	maxRetries := r.policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	attempt := func() error {
		err := operation()
		if err != nil && retryableCode(err) == "" {
			return backoff.Permanent(err)
		}
		return err
	}

	retry := 0
	notify := func(err error, wait time.Duration) {
		retry++
		code := retryableCode(err)
		r.observer.TxRetried(code)
		r.logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("retry", retry).
			Dur("backoff", wait).
			Msg("retryable database error, retrying")
	}

	return backoff.RetryNotify(attempt, backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx), notify)
}

// retryableCode returns the SQLSTATE of err when it is worth a retry, and
// "" otherwise.
func retryableCode(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return pgErr.Code
	}
	return ""
}

type nopRetryObserver struct{}

func (nopRetryObserver) TxRetried(string) {}
