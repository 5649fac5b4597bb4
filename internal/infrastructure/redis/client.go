package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config configures the Redis client. Zero values keep go-redis defaults.
type Config struct {
	URL         string
	PoolSize    int
	DialTimeout time.Duration

	// ConnectAttempts bounds the startup pings. Values below 1 mean one.
	ConnectAttempts int
	Logger          zerolog.Logger
}

// NewClient creates a Redis client and waits until it answers a ping,
// backing off between ConnectAttempts tries.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 0

	client := redis.NewClient(opts)
	ping := func() error { return client.Ping(ctx).Err() }
	notify := func(err error, wait time.Duration) {
		cfg.Logger.Warn().Err(err).Str("addr", opts.Addr).Dur("backoff", wait).Msg("redis not ready")
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx), notify); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
