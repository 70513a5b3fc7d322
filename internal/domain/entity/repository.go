package entity

import (
	"context"

	"github.com/docuvault/docrisk/pkg/types/common"
)

// Sort keys accepted by SearchCriteria.SortBy.
const (
	SortByName     = "name"
	SortByMentions = "mentions"
	SortByScore    = "score"
	SortByRisk     = "risk"
)

// SearchCriteria captures every filter and ordering parameter a retrieval
// query can carry.  Zero values mean "no constraint".
type SearchCriteria struct {
	// Search is a case-insensitive substring match on the full name.
	// A non-empty Search marks the query as cache-bypassing.
	Search string `json:"search,omitempty"`

	// RiskBands restricts results to the listed bands.
	RiskBands []RiskBand `json:"risk_bands,omitempty"`

	// Tags restricts results to entities carrying at least one listed tag.
	Tags []string `json:"tags,omitempty"`

	// MinScore and MaxScore bound the total score when non-nil.
	MinScore *int `json:"min_score,omitempty"`
	MaxScore *int `json:"max_score,omitempty"`

	// SortBy is one of the SortBy* keys; empty means SortByScore.
	SortBy string `json:"sort_by,omitempty"`

	// SortOrder defaults to descending for score-like keys and ascending
	// for name when empty.
	SortOrder common.SortOrder `json:"sort_order,omitempty"`

	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize returns a copy with pagination bounds and sort defaults applied.
func (c SearchCriteria) Normalize() SearchCriteria {
	p := common.Pagination{Page: c.Page, PageSize: c.PageSize}.Normalize()
	c.Page, c.PageSize = p.Page, p.PageSize
	if c.SortBy == "" {
		c.SortBy = SortByScore
	}
	if !c.SortOrder.Valid() {
		if c.SortBy == SortByName {
			c.SortOrder = common.SortAsc
		} else {
			c.SortOrder = common.SortDesc
		}
	}
	return c
}

// HasSearch reports whether the criteria carry a free-text search term.
func (c SearchCriteria) HasSearch() bool { return c.Search != "" }

// Page is one page of entities together with paging metadata.  Stale marks
// results served from the degraded-mode snapshot rather than the primary
// source.
type Page struct {
	Data       []*Entity `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	Stale      bool      `json:"stale"`
}

// ScoreStore is the persistence contract for entity scores.  The postgres
// repository implements it; the scoring and retrieval services depend on it.
type ScoreStore interface {
	// UpsertScore writes one entity's scoring results, stamping scored_at.
	UpsertScore(ctx context.Context, id common.ID, totalScore, peakTier, mentionCount int) error

	// ClassifyAll recomputes every entity's risk band from its current
	// total score in a single statement and returns the rows affected.
	// Runs only after all score writes of a batch have completed.
	ClassifyAll(ctx context.Context) (int64, error)

	// Search returns one page of entities matching the criteria.
	Search(ctx context.Context, criteria SearchCriteria) (*Page, error)

	// ListScorable returns every entity eligible for scoring.
	ListScorable(ctx context.Context) ([]*Entity, error)
}
