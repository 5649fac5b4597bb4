package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/doubleentry/internal/domain"
	"github.com/iho/doubleentry/internal/usecase"
)

func TestBalanceCache_MissThenHit(t *testing.T) {
	client, _ := startRedis(t)
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()
	key := usecase.BalanceKey{AccountID: "cash", Currency: "USD"}

	miss, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, miss.Hit)
	assert.Equal(t, int64(0), miss.Generation)

	require.NoError(t, cache.Set(ctx, key, miss.Generation, domain.NewMoney(-250, "USD")))

	hit, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit.Hit)
	assert.Equal(t, domain.NewMoney(-250, "USD"), hit.Balance)
}

func TestBalanceCache_InvalidateHidesOlderGenerations(t *testing.T) {
	client, _ := startRedis(t)
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()
	cash := usecase.BalanceKey{AccountID: "cash", Currency: "USD"}
	sales := usecase.BalanceKey{AccountID: "sales", Currency: "USD"}

	require.NoError(t, cache.Set(ctx, cash, 0, domain.NewMoney(100, "USD")))
	require.NoError(t, cache.Set(ctx, sales, 0, domain.NewMoney(100, "USD")))

	require.NoError(t, cache.Invalidate(ctx, "cash"))

	got, err := cache.Get(ctx, cash)
	require.NoError(t, err)
	assert.False(t, got.Hit)
	assert.Equal(t, int64(1), got.Generation)

	untouched, err := cache.Get(ctx, sales)
	require.NoError(t, err)
	assert.True(t, untouched.Hit)
}

func TestBalanceCache_StaleWriteIsNeverServed(t *testing.T) {
	client, _ := startRedis(t)
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()
	key := usecase.BalanceKey{AccountID: "cash", Currency: "USD"}

	// a reader sees generation 0, then a posting lands before it writes back
	before, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, "cash"))
	require.NoError(t, cache.Set(ctx, key, before.Generation, domain.NewMoney(1, "USD")))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestBalanceCache_WindowsAreSeparate(t *testing.T) {
	client, _ := startRedis(t)
	defer client.Close()

	cache := NewBalanceCache(client, time.Minute)
	ctx := context.Background()

	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	all := usecase.BalanceKey{AccountID: "cash", Currency: "USD"}
	january := usecase.BalanceKey{AccountID: "cash", Currency: "USD", Window: domain.NewDateWindow(nil, &to)}

	require.NoError(t, cache.Set(ctx, all, 0, domain.NewMoney(500, "USD")))

	got, err := cache.Get(ctx, january)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestBalanceCache_ValuesExpire(t *testing.T) {
	client, mr := startRedis(t)
	defer client.Close()

	cache := NewBalanceCache(client, time.Second)
	ctx := context.Background()
	key := usecase.BalanceKey{AccountID: "cash", Currency: "USD"}

	require.NoError(t, cache.Set(ctx, key, 0, domain.NewMoney(10, "USD")))
	mr.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestBalanceCache_InvalidateNothing(t *testing.T) {
	client, _ := startRedis(t)
	defer client.Close()

	require.NoError(t, NewBalanceCache(client, time.Minute).Invalidate(context.Background()))
}
