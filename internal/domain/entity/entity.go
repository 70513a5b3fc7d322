// Package entity defines the scored archive entity, its risk band
// classification, and the repository contracts the application layer
// depends on.
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/docuvault/docrisk/pkg/types/common"
)

// Blended ranking weights.  Mention volume and accumulated severity both
// matter to reviewers; severity dominates.
const (
	MentionWeight = 0.3
	ScoreWeight   = 0.7
)

// Entity is a person or organisation referenced by the document archive,
// together with its most recent scoring results.
type Entity struct {
	ID           common.ID `json:"id"`
	FullName     string    `json:"full_name"`
	Tags         []string  `json:"tags,omitempty"`
	TotalScore   int       `json:"total_score"`
	PeakTier     int       `json:"peak_tier"`
	RiskBand     RiskBand  `json:"risk_band"`
	MentionCount int       `json:"mention_count"`
	ScoredAt     time.Time `json:"scored_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BlendedScore is the ranking key for "sort by score" listings:
// 0.3 x mention count + 0.7 x total score, higher first.
func (e *Entity) BlendedScore() float64 {
	return MentionWeight*float64(e.MentionCount) + ScoreWeight*float64(e.TotalScore)
}

// Validate reports whether the entity is scorable.  An empty or
// whitespace-only name cannot be matched against document text.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.FullName) == "" {
		return fmt.Errorf("entity %s: full name is empty", e.ID)
	}
	return nil
}
