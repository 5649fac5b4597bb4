package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// startRedis runs an in-memory server for the duration of the test and
// returns a client bound to it. The server is exposed so tests can move its
// clock with FastForward.
func startRedis(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr(), Protocol: 2})
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}
