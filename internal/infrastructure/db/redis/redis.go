package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/payrollhq/payroll-system/internal/infrastructure/config"
)

// Connect opens the client backing the idempotency store and pings it
// within cfg.Timeout. The client is closed again when the ping fails.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// clientOptions applies cfg.Timeout to dialing and to every command, so a
// stalled Redis delays an employee create by at most that long.
func clientOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
}
