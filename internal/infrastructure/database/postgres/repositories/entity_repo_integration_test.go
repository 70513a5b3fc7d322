//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/database/postgres"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

const migrationsPath = "../../../../../migrations"

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "docrisk",
				"POSTGRES_PASSWORD": "docrisk",
				"POSTGRES_DB":       "docrisk",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://docrisk:docrisk@%s:%s/docrisk?sslmode=disable", host, port.Port())

	var pool *pgxpool.Pool
	require.Eventually(t, func() bool {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return false
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return false
		}
		return true
	}, 30*time.Second, time.Second)

	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(pool, migrationsPath, logging.NewNopLogger()))
	return pool
}

func seedEntity(t *testing.T, pool *pgxpool.Pool, name string, tags []string) common.ID {
	t.Helper()
	id := common.NewID()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO entities (id, full_name, tags) VALUES ($1, $2, $3)`,
		id.String(), name, tags)
	require.NoError(t, err)
	return id
}

func TestEntityRepositoryScoreLifecycle(t *testing.T) {
	pool := startPostgres(t)
	repo := NewEntityRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	highID := seedEntity(t, pool, "Acme Holdings", []string{"corporate"})
	medID := seedEntity(t, pool, "Beta Trading", nil)
	lowID := seedEntity(t, pool, "Gamma Logistics", nil)

	require.NoError(t, repo.UpsertScore(ctx, highID, 120, 5, 4))
	require.NoError(t, repo.UpsertScore(ctx, medID, 25, 3, 2))
	require.NoError(t, repo.UpsertScore(ctx, lowID, 5, 1, 1))

	affected, err := repo.ClassifyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	page, err := repo.Search(ctx, entity.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)

	// Default sort is blended score descending.
	assert.Equal(t, highID, page.Data[0].ID)
	assert.Equal(t, entity.RiskHigh, page.Data[0].RiskBand)
	assert.Equal(t, medID, page.Data[1].ID)
	assert.Equal(t, entity.RiskMedium, page.Data[1].RiskBand)
	assert.Equal(t, lowID, page.Data[2].ID)
	assert.Equal(t, entity.RiskLow, page.Data[2].RiskBand)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestEntityRepositoryUpsertMissingEntity(t *testing.T) {
	pool := startPostgres(t)
	repo := NewEntityRepository(pool, logging.NewNopLogger())

	err := repo.UpsertScore(context.Background(), common.NewID(), 10, 1, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEntityRepositorySearchFilters(t *testing.T) {
	pool := startPostgres(t)
	repo := NewEntityRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	acmeID := seedEntity(t, pool, "Acme Holdings", []string{"corporate", "watchlist"})
	seedEntity(t, pool, "Beta Trading", []string{"corporate"})

	require.NoError(t, repo.UpsertScore(ctx, acmeID, 60, 4, 2))
	_, err := repo.ClassifyAll(ctx)
	require.NoError(t, err)

	t.Run("search term", func(t *testing.T) {
		page, err := repo.Search(ctx, entity.SearchCriteria{Search: "acme"})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Acme Holdings", page.Data[0].FullName)
	})

	t.Run("risk band filter", func(t *testing.T) {
		page, err := repo.Search(ctx, entity.SearchCriteria{
			RiskBands: []entity.RiskBand{entity.RiskHigh},
		})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, acmeID, page.Data[0].ID)
	})

	t.Run("tag filter", func(t *testing.T) {
		page, err := repo.Search(ctx, entity.SearchCriteria{Tags: []string{"watchlist"}})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, acmeID, page.Data[0].ID)
	})

	t.Run("score bounds", func(t *testing.T) {
		min := 50
		page, err := repo.Search(ctx, entity.SearchCriteria{MinScore: &min})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, acmeID, page.Data[0].ID)
	})

	t.Run("like metacharacters are literal", func(t *testing.T) {
		page, err := repo.Search(ctx, entity.SearchCriteria{Search: "%"})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
	})
}

func TestDocumentRepositoryListForEntity(t *testing.T) {
	pool := startPostgres(t)
	repo := NewDocumentRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	entityID := seedEntity(t, pool, "Acme Holdings", nil)

	docID := common.NewID()
	_, err := pool.Exec(ctx, `
		INSERT INTO documents (id, title, content) VALUES ($1, $2, $3)`,
		docID.String(), "Filing 1", "Acme Holdings faces a lawsuit.")
	require.NoError(t, err)

	nullID := common.NewID()
	_, err = pool.Exec(ctx, `
		INSERT INTO documents (id, title, content) VALUES ($1, $2, NULL)`,
		nullID.String(), "Unextracted scan")
	require.NoError(t, err)

	for _, id := range []common.ID{docID, nullID} {
		_, err = pool.Exec(ctx, `
			INSERT INTO entity_documents (entity_id, document_id) VALUES ($1, $2)`,
			entityID.String(), id.String())
		require.NoError(t, err)
	}

	docs, err := repo.ListForEntity(ctx, entityID)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := map[common.ID]string{}
	for _, d := range docs {
		byID[d.ID] = d.Content
	}
	assert.Equal(t, "Acme Holdings faces a lawsuit.", byID[docID])
	assert.Equal(t, "", byID[nullID])
}
