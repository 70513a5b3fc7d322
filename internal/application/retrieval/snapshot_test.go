package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docrisk/internal/domain/entity"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

func snapshotEntities() []*entity.Entity {
	return []*entity.Entity{
		{ID: "00000000-0000-0000-0000-000000000001", FullName: "Acme Holdings",
			Tags: []string{"corporate", "watchlist"}, TotalScore: 120, PeakTier: 5,
			RiskBand: entity.RiskHigh, MentionCount: 4},
		{ID: "00000000-0000-0000-0000-000000000002", FullName: "Beta Trading",
			Tags: []string{"corporate"}, TotalScore: 25, PeakTier: 3,
			RiskBand: entity.RiskMedium, MentionCount: 10},
		{ID: "00000000-0000-0000-0000-000000000003", FullName: "Gamma Logistics",
			TotalScore: 5, PeakTier: 1, RiskBand: entity.RiskLow, MentionCount: 1},
	}
}

func TestSnapshotSourceUnloaded(t *testing.T) {
	src := NewSnapshotSource()
	assert.False(t, src.Loaded())

	_, err := src.Fetch(context.Background(), entity.SearchCriteria{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSnapshotUnavailable))
}

func TestSnapshotSourceMarksStale(t *testing.T) {
	src := NewSnapshotSource()
	src.Replace(snapshotEntities())
	assert.True(t, src.Loaded())

	page, err := src.Fetch(context.Background(), entity.SearchCriteria{})
	require.NoError(t, err)
	assert.True(t, page.Stale)
	assert.Equal(t, int64(3), page.Total)
}

func TestSnapshotSourceAbsorb(t *testing.T) {
	fresh := []*entity.Entity{
		{ID: "00000000-0000-0000-0000-000000000001", FullName: "Acme Holdings",
			TotalScore: 200, PeakTier: 5, RiskBand: entity.RiskHigh, MentionCount: 6},
		{ID: "00000000-0000-0000-0000-000000000004", FullName: "Delta Shipping",
			TotalScore: 15, PeakTier: 2, RiskBand: entity.RiskMedium, MentionCount: 3},
	}

	t.Run("no-op before a baseline snapshot is installed", func(t *testing.T) {
		src := NewSnapshotSource()
		src.Absorb(fresh)
		assert.False(t, src.Loaded())
	})

	t.Run("updates existing entries and appends new ones", func(t *testing.T) {
		src := NewSnapshotSource()
		src.Replace(snapshotEntities())
		src.Absorb(fresh)

		page, err := src.Fetch(context.Background(), entity.SearchCriteria{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		assert.Equal(t, "Acme Holdings", page.Data[0].FullName)
		assert.Equal(t, 200, page.Data[0].TotalScore)
	})
}

func TestApplyCriteriaDefaultSort(t *testing.T) {
	// Blended score descending: Acme 0.3*4+0.7*120=85.2,
	// Beta 0.3*10+0.7*25=20.5, Gamma 0.3*1+0.7*5=3.8.
	page := ApplyCriteria(snapshotEntities(), entity.SearchCriteria{})

	require.Len(t, page.Data, 3)
	assert.Equal(t, "Acme Holdings", page.Data[0].FullName)
	assert.Equal(t, "Beta Trading", page.Data[1].FullName)
	assert.Equal(t, "Gamma Logistics", page.Data[2].FullName)
}

func TestApplyCriteriaFilters(t *testing.T) {
	entities := snapshotEntities()

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		page := ApplyCriteria(entities, entity.SearchCriteria{Search: "GAMMA"})
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Gamma Logistics", page.Data[0].FullName)
	})

	t.Run("risk bands", func(t *testing.T) {
		page := ApplyCriteria(entities, entity.SearchCriteria{
			RiskBands: []entity.RiskBand{entity.RiskHigh, entity.RiskMedium},
		})
		assert.Len(t, page.Data, 2)
	})

	t.Run("tags match any", func(t *testing.T) {
		page := ApplyCriteria(entities, entity.SearchCriteria{Tags: []string{"watchlist"}})
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Acme Holdings", page.Data[0].FullName)
	})

	t.Run("score bounds", func(t *testing.T) {
		min, max := 10, 100
		page := ApplyCriteria(entities, entity.SearchCriteria{MinScore: &min, MaxScore: &max})
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Beta Trading", page.Data[0].FullName)
	})
}

func TestApplyCriteriaSortKeys(t *testing.T) {
	entities := snapshotEntities()

	t.Run("name ascending by default", func(t *testing.T) {
		page := ApplyCriteria(entities, entity.SearchCriteria{SortBy: entity.SortByName})
		assert.Equal(t, "Acme Holdings", page.Data[0].FullName)
		assert.Equal(t, "Gamma Logistics", page.Data[2].FullName)
	})

	t.Run("mentions descending", func(t *testing.T) {
		page := ApplyCriteria(entities, entity.SearchCriteria{SortBy: entity.SortByMentions})
		assert.Equal(t, "Beta Trading", page.Data[0].FullName)
	})

	t.Run("risk descending", func(t *testing.T) {
		page := ApplyCriteria(entities, entity.SearchCriteria{SortBy: entity.SortByRisk})
		assert.Equal(t, entity.RiskHigh, page.Data[0].RiskBand)
		assert.Equal(t, entity.RiskLow, page.Data[2].RiskBand)
	})

	t.Run("ties break by id ascending", func(t *testing.T) {
		tied := []*entity.Entity{
			{ID: "00000000-0000-0000-0000-00000000000b", FullName: "B", TotalScore: 10, MentionCount: 1},
			{ID: "00000000-0000-0000-0000-00000000000a", FullName: "A", TotalScore: 10, MentionCount: 1},
		}
		page := ApplyCriteria(tied, entity.SearchCriteria{})
		assert.Equal(t, "A", page.Data[0].FullName)
		assert.Equal(t, "B", page.Data[1].FullName)
	})
}

func TestApplyCriteriaPagination(t *testing.T) {
	entities := snapshotEntities()

	page := ApplyCriteria(entities, entity.SearchCriteria{Page: 2, PageSize: 2})
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Gamma Logistics", page.Data[0].FullName)

	empty := ApplyCriteria(entities, entity.SearchCriteria{Page: 9, PageSize: 2})
	assert.Empty(t, empty.Data)
	assert.Equal(t, int64(3), empty.Total)
}

func TestApplyCriteriaExplicitAscendingBlend(t *testing.T) {
	page := ApplyCriteria(snapshotEntities(), entity.SearchCriteria{
		SortBy:    entity.SortByScore,
		SortOrder: common.SortAsc,
	})
	assert.Equal(t, "Gamma Logistics", page.Data[0].FullName)
	assert.Equal(t, "Acme Holdings", page.Data[2].FullName)
}
