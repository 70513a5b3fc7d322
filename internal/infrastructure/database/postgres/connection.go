// Package postgres manages the PostgreSQL connection pool and schema
// migrations for docrisk.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// connectTimeout bounds the initial pool construction and ping.
const connectTimeout = 10 * time.Second

// Connect builds a pgx connection pool from cfg and verifies connectivity
// with a ping before returning it.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger logging.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidConfig, "invalid database configuration")
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "database ping failed")
	}

	logger.Info("connected to postgres",
		logging.String("host", cfg.Host),
		logging.String("database", cfg.Name),
		logging.Int("max_conns", int(cfg.MaxConns)),
	)
	return pool, nil
}
