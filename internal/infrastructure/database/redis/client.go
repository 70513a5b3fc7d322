// Package redis wraps the go-redis client with docrisk configuration and
// connectivity checks.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// Connect builds a go-redis client from cfg and verifies connectivity with a
// ping before returning it.
func Connect(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "redis ping failed")
	}

	logger.Info("connected to redis", logging.String("addr", cfg.Addr))
	return client, nil
}
