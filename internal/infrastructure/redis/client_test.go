package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
)

func TestNewClient(t *testing.T) {
	srv := miniredis.RunT(t)
	down := miniredis.RunT(t)
	downURL := "redis://" + down.Addr()
	down.Close()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "connects", cfg: Config{URL: "redis://" + srv.Addr(), PoolSize: 2}},
		{name: "malformed URL", cfg: Config{URL: "://bad-url"}, wantErr: true},
		{
			name:    "server down after all attempts",
			cfg:     Config{URL: downURL, DialTimeout: 50 * time.Millisecond, ConnectAttempts: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = zerolog.Nop()
			client, err := NewClient(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					client.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer client.Close()

			if got := client.Options().PoolSize; got != tt.cfg.PoolSize {
				t.Fatalf("expected pool size %d, got %d", tt.cfg.PoolSize, got)
			}
		})
	}
}

func TestNewClientWaitsForServer(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.Close()

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = srv.Restart()
	}()

	client, err := NewClient(context.Background(), Config{
		URL:             "redis://" + srv.Addr(),
		DialTimeout:     50 * time.Millisecond,
		ConnectAttempts: 20,
		Logger:          zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("expected client once the server is back, got %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
}
