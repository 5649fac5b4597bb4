package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/doubleentry/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsCreated *prometheus.CounterVec
	EntriesPosted   *prometheus.CounterVec
	EntryTotal      *prometheus.HistogramVec
	EntryRejections *prometheus.CounterVec
	BalanceQueries  *prometheus.CounterVec
	TxRetries       *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	OutboxPending   prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_accounts_created_total",
				Help: "Total number of accounts created by type",
			},
			[]string{"type"},
		),
		EntriesPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entries_posted_total",
				Help: "Total number of entries posted by currency",
			},
			[]string{"currency"},
		),
		EntryTotal: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_entry_total_minor_units",
				Help:    "Entry totals in minor units",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"currency"},
		),
		EntryRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_entry_rejections_total",
				Help: "Total number of rejected entries by reason",
			},
			[]string{"reason"},
		),
		BalanceQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_balance_queries_total",
				Help: "Total balance queries by kind and cache outcome",
			},
			[]string{"kind", "cache_hit"},
		),
		TxRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_tx_retries_total",
				Help: "Transactions re-run after a retryable database error, by SQLSTATE",
			},
			[]string{"code"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_outbox_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_outbox_events_failed_total",
				Help: "Total outbox events that failed to publish by type",
			},
			[]string{"event_type"},
		),
		OutboxPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ledger_outbox_pending_events",
				Help: "Outbox events waiting to be published",
			},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// AccountCreated implements usecase.MetricsRecorder.
func (m *Metrics) AccountCreated(accountType domain.AccountType) {
	m.AccountsCreated.WithLabelValues(string(accountType)).Inc()
}

// EntryPosted implements usecase.MetricsRecorder.
func (m *Metrics) EntryPosted(currency string, total int64) {
	m.EntriesPosted.WithLabelValues(currency).Inc()
	m.EntryTotal.WithLabelValues(currency).Observe(float64(total))
}

// EntryRejected implements usecase.MetricsRecorder.
func (m *Metrics) EntryRejected(reason string) {
	m.EntryRejections.WithLabelValues(reason).Inc()
}

// BalanceQueried implements usecase.MetricsRecorder.
func (m *Metrics) BalanceQueried(kind string, cacheHit bool) {
	m.BalanceQueries.WithLabelValues(kind, strconv.FormatBool(cacheHit)).Inc()
}

// TxRetried counts one transaction retry.
func (m *Metrics) TxRetried(code string) {
	m.TxRetries.WithLabelValues(code).Inc()
}

// OutboxBacklog records the number of unpublished outbox events.
func (m *Metrics) OutboxBacklog(n int64) {
	m.OutboxPending.Set(float64(n))
}

// EventPublished records the outcome of one outbox publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	if err != nil {
		m.EventsFailed.WithLabelValues(eventType).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}
