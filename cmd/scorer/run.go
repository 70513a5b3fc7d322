package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docuvault/docrisk/internal/application/scoring"
	"github.com/docuvault/docrisk/internal/config"
	"github.com/docuvault/docrisk/internal/infrastructure/database/postgres"
	"github.com/docuvault/docrisk/internal/infrastructure/database/postgres/repositories"
	"github.com/docuvault/docrisk/internal/infrastructure/messaging/kafka"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	"github.com/docuvault/docrisk/internal/infrastructure/storage/snapshot"
	"github.com/docuvault/docrisk/internal/intelligence/riskscore"
)

func newRunCmd(configPath *string) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one batch scoring run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.Context(), *configPath, exportPath)
		},
	}
	cmd.Flags().StringVar(&exportPath, "export-snapshot", "",
		"write a snapshot JSON file after a successful run")
	return cmd
}

func runBatch(parent context.Context, configPath, exportPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("scorer")
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(pool, cfg.Database.MigrationsPath, logger); err != nil {
		return err
	}

	dict := riskscore.DefaultDictionary()
	if cfg.Scoring.DictionaryPath != "" {
		dict, err = riskscore.LoadDictionary(cfg.Scoring.DictionaryPath)
		if err != nil {
			return err
		}
		logger.Info("dictionary override loaded",
			logging.String("path", cfg.Scoring.DictionaryPath))
	}

	var events scoring.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		events = producer
	}

	entityRepo := repositories.NewEntityRepository(pool, logger)
	docRepo := repositories.NewDocumentRepository(pool, logger)
	aggregator := riskscore.NewAggregator(riskscore.NewScanner(), riskscore.NewMatcher(dict))

	// The scorer is a one-shot process with no scrape endpoint, so no
	// metrics collector is wired.
	svc := scoring.NewService(entityRepo, docRepo, aggregator, events,
		cfg.Worker.Concurrency, logger, nil)

	report, err := svc.RunBatch(ctx)
	if err != nil {
		return err
	}

	if exportPath != "" {
		if err := exportSnapshot(ctx, entityRepo, exportPath); err != nil {
			return err
		}
		logger.Info("snapshot exported", logging.String("path", exportPath))
	}

	logger.Info("run finished",
		logging.String("run_id", report.RunID.String()),
		logging.Int("scored", report.Scored),
		logging.Int("skipped", report.Skipped),
	)
	return nil
}

func exportSnapshot(ctx context.Context, repo *repositories.EntityRepository, path string) error {
	entities, err := repo.ListScorable(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return snapshot.Write(f, entities)
}
