package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/docuvault/docrisk/internal/domain/entity"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

// SnapshotSource serves queries from an in-memory snapshot of a previous
// scoring run.  It is the last-resort source: results are marked stale.
type SnapshotSource struct {
	mu       sync.RWMutex
	entities []*entity.Entity
	loaded   bool
}

// NewSnapshotSource returns an empty, unloaded snapshot source.
func NewSnapshotSource() *SnapshotSource {
	return &SnapshotSource{}
}

// Replace swaps in a new snapshot.  Safe to call while queries are running.
func (s *SnapshotSource) Replace(entities []*entity.Entity) {
	s.mu.Lock()
	s.entities = entities
	s.loaded = true
	s.mu.Unlock()
}

// Loaded reports whether a snapshot has been installed.
func (s *SnapshotSource) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Absorb merges freshly served entities into the snapshot by ID so fallback
// data ages gracefully between full snapshot loads.  A no-op until a
// baseline snapshot has been installed: partial pages alone must not enable
// fallback.
func (s *SnapshotSource) Absorb(entities []*entity.Entity) {
	if len(entities) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	byID := make(map[common.ID]int, len(s.entities))
	for i, e := range s.entities {
		byID[e.ID] = i
	}
	for _, e := range entities {
		if i, ok := byID[e.ID]; ok {
			s.entities[i] = e
		} else {
			s.entities = append(s.entities, e)
		}
	}
}

// Fetch filters, sorts, and paginates the snapshot with the same semantics
// as the database search, and marks the page stale.
func (s *SnapshotSource) Fetch(_ context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	s.mu.RLock()
	entities, loaded := s.entities, s.loaded
	s.mu.RUnlock()

	if !loaded {
		return nil, apperrors.New(apperrors.CodeSnapshotUnavailable, "no snapshot loaded")
	}

	page := ApplyCriteria(entities, criteria)
	page.Stale = true
	return page, nil
}

// ApplyCriteria runs the full filter, sort, and paginate pipeline over an
// in-memory entity slice.  Ordering must agree with the SQL search: same
// sort keys, same direction defaults, ties broken by id ascending.
func ApplyCriteria(entities []*entity.Entity, criteria entity.SearchCriteria) *entity.Page {
	criteria = criteria.Normalize()

	filtered := make([]*entity.Entity, 0, len(entities))
	for _, e := range entities {
		if matchesCriteria(e, criteria) {
			filtered = append(filtered, e)
		}
	}

	sortEntities(filtered, criteria)

	total := int64(len(filtered))
	p := common.Pagination{Page: criteria.Page, PageSize: criteria.PageSize}

	start := p.Offset()
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + criteria.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return &entity.Page{
		Data:       filtered[start:end],
		Total:      total,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
		TotalPages: p.TotalPages(total),
	}
}

func matchesCriteria(e *entity.Entity, criteria entity.SearchCriteria) bool {
	if criteria.Search != "" &&
		!strings.Contains(strings.ToLower(e.FullName), strings.ToLower(criteria.Search)) {
		return false
	}
	if len(criteria.RiskBands) > 0 {
		found := false
		for _, b := range criteria.RiskBands {
			if e.RiskBand == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(criteria.Tags) > 0 && !hasAnyTag(e.Tags, criteria.Tags) {
		return false
	}
	if criteria.MinScore != nil && e.TotalScore < *criteria.MinScore {
		return false
	}
	if criteria.MaxScore != nil && e.TotalScore > *criteria.MaxScore {
		return false
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func sortEntities(entities []*entity.Entity, criteria entity.SearchCriteria) {
	desc := criteria.SortOrder == common.SortDesc

	less := func(a, b *entity.Entity) int {
		switch criteria.SortBy {
		case entity.SortByName:
			return strings.Compare(a.FullName, b.FullName)
		case entity.SortByMentions:
			return compareInt(a.MentionCount, b.MentionCount)
		case entity.SortByRisk:
			return compareInt(int(a.RiskBand), int(b.RiskBand))
		default:
			return compareFloat(a.BlendedScore(), b.BlendedScore())
		}
	}

	sort.SliceStable(entities, func(i, j int) bool {
		c := less(entities[i], entities[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return entities[i].ID < entities[j].ID
	})
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
