package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/doubleentry/internal/adapter/http/handler"
	"github.com/iho/doubleentry/internal/adapter/http/middleware"
	"github.com/iho/doubleentry/internal/infrastructure/metrics"
	"github.com/iho/doubleentry/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional parts left nil
// are skipped.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	EntryHandler   *handler.EntryHandler
	BalanceHandler *handler.BalanceHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler
	EventHandler   *handler.EventHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter

	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/balance", cfg.BalanceHandler.Account)
			if cfg.EventHandler != nil {
				r.Get("/{id}/events", cfg.EventHandler.ForAccount)
			}
		})

		r.Get("/balances/{type}", cfg.BalanceHandler.Type)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Post)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			if cfg.EventHandler != nil {
				r.Get("/{id}/events", cfg.EventHandler.ForEntry)
			}
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/trial-balance", cfg.LedgerHandler.TrialBalance)
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/report", cfg.LedgerHandler.Report)
		})
	})

	return r
}
