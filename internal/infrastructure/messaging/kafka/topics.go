// Package kafka emits scoring-run lifecycle events to downstream consumers
// (audit trails, alerting, reindexers).
package kafka

import (
	"time"

	"github.com/docuvault/docrisk/pkg/types/common"
)

// Topics carrying scoring-run lifecycle events.
const (
	TopicRunStarted    = "scoring.run.started"
	TopicRunCompleted  = "scoring.run.completed"
	TopicEntitySkipped = "scoring.entity.skipped"
)

// RunStartedEvent is published when a batch scoring run begins.
type RunStartedEvent struct {
	RunID     common.ID `json:"run_id"`
	Entities  int       `json:"entities"`
	StartedAt time.Time `json:"started_at"`
}

// RunCompletedEvent is published when a batch scoring run finishes,
// including runs where some entities were skipped.
type RunCompletedEvent struct {
	RunID      common.ID     `json:"run_id"`
	Scored     int           `json:"scored"`
	Skipped    int           `json:"skipped"`
	Classified int64         `json:"classified"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}

// EntitySkippedEvent is published for each entity dropped from a run.
type EntitySkippedEvent struct {
	RunID    common.ID `json:"run_id"`
	EntityID common.ID `json:"entity_id"`
	Reason   string    `json:"reason"`
}
