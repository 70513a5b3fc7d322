// Package scoring implements the batch risk-scoring run: parallel
// per-entity scoring followed by a single classification pass.
package scoring

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docuvault/docrisk/internal/domain/document"
	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/messaging/kafka"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/prometheus"
	"github.com/docuvault/docrisk/internal/intelligence/riskscore"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

// EventPublisher is the slice of the kafka producer the scoring service
// needs.  Emission failures never fail a run.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event interface{}) error
}

// Report summarises one completed batch run.
type Report struct {
	RunID      common.ID
	Scored     int
	Skipped    int
	Classified int64
	Duration   time.Duration
}

// Service runs batch scoring: every scorable entity is scored in parallel,
// then risk bands are recomputed in one pass once all score writes have
// landed.
type Service struct {
	store       entity.ScoreStore
	docs        document.Repository
	aggregator  *riskscore.Aggregator
	events      EventPublisher
	concurrency int
	logger      logging.Logger
	metrics     *prometheus.Collector
}

// NewService wires a scoring service.  events may be nil when event
// emission is not configured.
func NewService(store entity.ScoreStore, docs document.Repository,
	aggregator *riskscore.Aggregator, events EventPublisher, concurrency int,
	logger logging.Logger, metrics *prometheus.Collector) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		store:       store,
		docs:        docs,
		aggregator:  aggregator,
		events:      events,
		concurrency: concurrency,
		logger:      logger.Named("scoring"),
		metrics:     metrics,
	}
}

// RunBatch scores every scorable entity and then reclassifies all risk
// bands.  Per-entity failures skip that entity and continue; the run itself
// fails only when the entity listing or the classification pass fails.
// RunBatch is idempotent: rerunning over unchanged documents writes the same
// scores and bands.
func (s *Service) RunBatch(ctx context.Context) (*Report, error) {
	runID := common.NewID()
	start := time.Now()

	entities, err := s.store.ListScorable(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeScoringFailed, "failed to list entities")
	}

	s.logger.Info("batch scoring run started",
		logging.String("run_id", runID.String()),
		logging.Int("entities", len(entities)),
		logging.Int("concurrency", s.concurrency),
	)
	s.publish(ctx, kafka.TopicRunStarted, runID, kafka.RunStartedEvent{
		RunID:     runID,
		Entities:  len(entities),
		StartedAt: start,
	})

	var scored, skipped atomic.Int64

	jobs := make(chan *entity.Entity)
	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				if err := s.scoreEntity(ctx, e); err != nil {
					skipped.Add(1)
					s.logger.Warn("entity skipped",
						logging.String("run_id", runID.String()),
						logging.String("entity_id", e.ID.String()),
						logging.Err(err),
					)
					s.publish(ctx, kafka.TopicEntitySkipped, runID, kafka.EntitySkippedEvent{
						RunID:    runID,
						EntityID: e.ID,
						Reason:   err.Error(),
					})
					continue
				}
				scored.Add(1)
			}
		}()
	}

	for _, e := range entities {
		jobs <- e
	}
	close(jobs)

	// The classification pass must observe every score write of this run,
	// so it waits for the full worker pool to drain.
	wg.Wait()

	classified, err := s.store.ClassifyAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeScoringFailed, "classification pass failed")
	}

	report := &Report{
		RunID:      runID,
		Scored:     int(scored.Load()),
		Skipped:    int(skipped.Load()),
		Classified: classified,
		Duration:   time.Since(start),
	}

	s.metrics.RecordBatchRun(report.Scored, report.Skipped, report.Duration)
	s.logger.Info("batch scoring run completed",
		logging.String("run_id", runID.String()),
		logging.Int("scored", report.Scored),
		logging.Int("skipped", report.Skipped),
		logging.Int64("classified", report.Classified),
		logging.Duration("duration", report.Duration),
	)
	s.publish(ctx, kafka.TopicRunCompleted, runID, kafka.RunCompletedEvent{
		RunID:      runID,
		Scored:     report.Scored,
		Skipped:    report.Skipped,
		Classified: report.Classified,
		Duration:   report.Duration,
		FinishedAt: time.Now(),
	})
	return report, nil
}

// scoreEntity loads one entity's documents, runs the scoring pipeline, and
// persists the result.
func (s *Service) scoreEntity(ctx context.Context, e *entity.Entity) error {
	if err := e.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "entity not scorable")
	}

	docs, err := s.docs.ListForEntity(ctx, e.ID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeScoringFailed, "failed to load documents")
	}

	agg := s.aggregator.Score(e.FullName, docs)

	if err := s.store.UpsertScore(ctx, e.ID, agg.TotalScore, agg.PeakTier, agg.MentionCount); err != nil {
		return apperrors.Wrap(err, apperrors.CodeScoringFailed, "failed to persist score")
	}
	return nil
}

// publish emits a run event; failures are logged and swallowed.
func (s *Service) publish(ctx context.Context, topic string, runID common.ID, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, runID.String(), event); err != nil {
		s.logger.Warn("event publish failed",
			logging.String("topic", topic),
			logging.Err(err),
		)
	}
}
