package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/doubleentry/internal/adapter/http"
	"github.com/iho/doubleentry/internal/adapter/http/handler"
	"github.com/iho/doubleentry/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/doubleentry/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/doubleentry/internal/adapter/repository/redis"
	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/infrastructure/config"
	"github.com/iho/doubleentry/internal/infrastructure/eventpublisher"
	"github.com/iho/doubleentry/internal/infrastructure/logger"
	"github.com/iho/doubleentry/internal/infrastructure/metrics"
	"github.com/iho/doubleentry/internal/infrastructure/postgres"
	"github.com/iho/doubleentry/internal/infrastructure/redis"
	"github.com/iho/doubleentry/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "doubleentry",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx = log.WithContext(ctx)

	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:             cfg.RedisURL,
		ConnectAttempts: cfg.RedisConnectAttempts,
		Logger:          log,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	app, err := newApp(cfg, pool, redisClient, m, log)
	if err != nil {
		return err
	}

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: app.outboxRepo,
		Publisher:  newPublisher(cfg, redisClient, log),
		Observer:   m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	rateLimiter := newRateLimiter(cfg, m)
	if rateLimiter != nil {
		go rateLimiter.Run(ctx, time.Minute, 10*time.Minute)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(app.accounts),
		EntryHandler:     handler.NewEntryHandler(app.entries, cfg.DefaultCurrency),
		BalanceHandler:   handler.NewBalanceHandler(app.balances),
		LedgerHandler:    handler.NewLedgerHandler(app.ledger, app.reconciliation),
		EventHandler:     handler.NewEventHandler(app.events),
		HealthHandler:    handler.NewHealthHandler(pool, handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })),
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log,
		Metrics:          m,
		Gatherer:         registry,
		RateLimiter:      rateLimiter,
		CORSOrigins:      cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// app holds the wired use cases.
type app struct {
	accounts       *usecase.AccountUseCase
	entries        *usecase.EntryUseCase
	balances       *usecase.BalanceUseCase
	ledger         *usecase.LedgerUseCase
	reconciliation *usecase.ReconciliationUseCase
	events         *usecase.EventUseCase
	outboxRepo     *postgresRepo.OutboxRepository
}

func newApp(cfg *config.Config, pool *pgxpool.Pool, redisClient *goredis.Client, m *metrics.Metrics, log zerolog.Logger) (*app, error) {
	txManager, err := postgresRepo.NewTxManager(pool, cfg.DatabaseTxIsolation)
	if err != nil {
		return nil, err
	}

	clock := domain.SystemClock{}
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator(clock)

	var cache usecase.BalanceCache
	if cfg.BalanceCacheEnabled {
		cache = redisRepo.NewBalanceCache(redisClient, cfg.BalanceCacheTTL)
	}

	retrier := postgresRepo.NewRetrier(log,
		postgresRepo.WithRetryPolicy(postgresRepo.RetryPolicy{
			MaxRetries:      cfg.DatabaseRetryMax,
			InitialInterval: cfg.DatabaseRetryWait,
			MaxInterval:     cfg.DatabaseRetryMaxWait,
		}),
		postgresRepo.WithRetryObserver(m),
	)
	ledger := usecase.NewLedgerUseCase(accountRepo, entryRepo, ledgerRepo, cfg.DefaultCurrency)

	return &app{
		accounts: usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, idGen, clock, m),
		entries: usecase.NewEntryUseCase(usecase.EntryUseCaseConfig{
			TxManager:       txManager,
			AccountRepo:     accountRepo,
			EntryRepo:       entryRepo,
			OutboxRepo:      outboxRepo,
			IDGen:           idGen,
			Retrier:         retrier,
			Cache:           cache,
			Clock:           clock,
			Metrics:         m,
			AmountPolicy:    cfg.AmountPolicy(),
			DefaultCurrency: cfg.DefaultCurrency,
		}),
		balances:       usecase.NewBalanceUseCase(accountRepo, entryRepo, cache, m, cfg.DefaultCurrency),
		ledger:         ledger,
		reconciliation: usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledger, cache, clock),
		events:         usecase.NewEventUseCase(outboxRepo, accountRepo, entryRepo),
		outboxRepo:     outboxRepo,
	}, nil
}

// newPublisher selects where outbox events are delivered.
func newPublisher(cfg *config.Config, client *goredis.Client, log zerolog.Logger) eventpublisher.Publisher {
	if cfg.OutboxPublisher == config.PublisherRedis {
		return redisRepo.NewStreamPublisher(client, cfg.OutboxStream, cfg.OutboxStreamMaxLen)
	}
	return eventpublisher.NewLogPublisher(log)
}

// newRateLimiter returns nil when rate limiting is disabled.
func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
}

func serverAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}
