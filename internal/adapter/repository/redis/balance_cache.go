package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

// BalanceCache implements usecase.BalanceCache using Redis.
//
// Every account has a generation counter. Cached balances are stored under
// the generation that was current when they were read, so bumping the
// counter hides all earlier values without scanning for them.
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewBalanceCache creates a new BalanceCache. Cached values expire after ttl.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
		ttl:    ttl,
	}
}

func (c *BalanceCache) generationKey(accountID string) string {
	return c.prefix + "gen:" + accountID
}

func (c *BalanceCache) valueKey(key usecase.BalanceKey, generation int64) string {
	return fmt.Sprintf("%s%s:%s:%s:%d", c.prefix, key.AccountID, key.Currency, key.Window, generation)
}

// Get returns the account's current generation and, when present, the
// balance cached under it.
func (c *BalanceCache) Get(ctx context.Context, key usecase.BalanceKey) (usecase.CachedBalance, error) {
	generation, err := c.client.Get(ctx, c.generationKey(key.AccountID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return usecase.CachedBalance{}, err
	}

	result := usecase.CachedBalance{Generation: generation}

	amount, err := c.client.Get(ctx, c.valueKey(key, generation)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return result, nil
	case err != nil:
		return usecase.CachedBalance{}, err
	}

	result.Balance = domain.NewMoney(amount, key.Currency)
	result.Hit = true

	return result, nil
}

// Set stores balance under generation.
func (c *BalanceCache) Set(ctx context.Context, key usecase.BalanceKey, generation int64, balance domain.Money) error {
	return c.client.Set(ctx, c.valueKey(key, generation), balance.Amount, c.ttl).Err()
}

// Invalidate bumps the generation of every given account in one round trip.
func (c *BalanceCache) Invalidate(ctx context.Context, accountIDs ...string) error {
	if len(accountIDs) == 0 {
		return nil
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range accountIDs {
			pipe.Incr(ctx, c.generationKey(id))
		}
		return nil
	})

	return err
}
