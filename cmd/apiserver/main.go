// The apiserver serves the docrisk query API: cached, deduplicated entity
// retrieval with snapshot fallback.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docuvault/docrisk/internal/application/retrieval"
	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/infrastructure/cache"
	"github.com/docuvault/docrisk/internal/infrastructure/database/postgres"
	"github.com/docuvault/docrisk/internal/infrastructure/database/postgres/repositories"
	dbredis "github.com/docuvault/docrisk/internal/infrastructure/database/redis"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/prometheus"
	"github.com/docuvault/docrisk/internal/infrastructure/storage/snapshot"
	httpserver "github.com/docuvault/docrisk/internal/interfaces/http"
	"github.com/docuvault/docrisk/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("apiserver")
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := prometheus.NewCollector()

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(pool, cfg.Database.MigrationsPath, logger); err != nil {
		return err
	}

	entityRepo := repositories.NewEntityRepository(pool, logger)

	var resultCache cache.Cache
	readiness := map[string]handlers.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
	}
	switch cfg.Cache.Backend {
	case "redis":
		client, err := dbredis.Connect(ctx, cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		resultCache = cache.NewRedis(client, logger)
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	default:
		resultCache = cache.NewMemory()
	}

	snapshotSource := retrieval.NewSnapshotSource()
	if cfg.Snapshot.Enabled() {
		loader := snapshot.NewLoader(cfg.Snapshot, logger)
		entities, err := loader.Load(ctx)
		if err != nil {
			// A missing snapshot only disables degraded mode; the
			// apiserver still serves from the primary source.
			logger.Warn("snapshot unavailable, fallback disabled", logging.Err(err))
		} else {
			snapshotSource.Replace(entities)
		}
		if cfg.Snapshot.RefreshInterval > 0 {
			go refreshSnapshot(ctx, loader, snapshotSource, cfg.Snapshot.RefreshInterval, logger)
		}
	}

	var primary retrieval.Source
	if cfg.Retrieval.BackingURL != "" {
		primary = retrieval.NewHTTPSource(cfg.Retrieval.BackingURL, cfg.Retrieval.RequestTimeout)
	} else {
		primary = retrieval.NewStoreSource(entityRepo)
	}
	primary = retrieval.WithRetry(primary, retrieval.RetryPolicy{
		MaxRetries: cfg.Retrieval.MaxRetries,
		BaseDelay:  cfg.Retrieval.RetryBaseDelay,
	}, logger, metrics)

	retrievalSvc := retrieval.NewService(primary, snapshotSource, resultCache,
		retrieval.Options{
			CacheTTL:         cfg.Cache.TTL,
			PrefetchNextPage: cfg.Retrieval.PrefetchNextPage,
		}, logger, metrics)

	if configPath != "" {
		err := config.Watch(configPath, func(updated *config.Config) {
			retrievalSvc.UpdateOptions(retrieval.Options{
				CacheTTL:         updated.Cache.TTL,
				PrefetchNextPage: updated.Retrieval.PrefetchNextPage,
			})
			logger.Info("configuration reloaded",
				logging.Duration("cache_ttl", updated.Cache.TTL))
		})
		if err != nil {
			logger.Warn("config hot reload disabled", logging.Err(err))
		}
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Entities: handlers.NewEntitiesHandler(retrievalSvc, logger),
		Health:   handlers.NewHealthHandler(readiness),
		Logger:   logger,
		Metrics:  metrics,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)
	return server.Run(ctx)
}

// refreshSnapshot periodically reloads the degraded-mode snapshot so long
// running apiservers pick up newer exports.  Reload failures keep the
// current snapshot in place.
func refreshSnapshot(ctx context.Context, loader *snapshot.Loader,
	source *retrieval.SnapshotSource, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entities, err := loader.Load(ctx)
			if err != nil {
				logger.Warn("snapshot refresh failed", logging.Err(err))
				continue
			}
			source.Replace(entities)
		}
	}
}
