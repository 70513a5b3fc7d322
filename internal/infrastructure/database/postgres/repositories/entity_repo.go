// Package repositories contains the pgx-backed implementations of the
// domain repository contracts.
package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

// EntityRepository is the pgx implementation of entity.ScoreStore.
type EntityRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewEntityRepository constructs an EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool, logger logging.Logger) *EntityRepository {
	return &EntityRepository{pool: pool, logger: logger.Named("entity_repo")}
}

var _ entity.ScoreStore = (*EntityRepository)(nil)

const entityColumns = `id, full_name, tags, total_score, peak_tier, risk_band,
	mention_count, scored_at, created_at, updated_at`

// UpsertScore writes one entity's scoring results.  The entity row must
// already exist; scoring never creates entities.
func (r *EntityRepository) UpsertScore(ctx context.Context, id common.ID, totalScore, peakTier, mentionCount int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE entities
		SET total_score = $2,
		    peak_tier = $3,
		    mention_count = $4,
		    scored_at = now(),
		    updated_at = now()
		WHERE id = $1`,
		id.String(), totalScore, peakTier, mentionCount)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to write entity score")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("entity not found").WithDetail("id=" + id.String())
	}
	return nil
}

// ClassifyAll recomputes risk bands for every entity from its stored total
// score in one statement, so a batch either classifies everything against
// the same thresholds or nothing.
func (r *EntityRepository) ClassifyAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE entities
		SET risk_band = CASE
			WHEN total_score >= $1 THEN 'HIGH'
			WHEN total_score >= $2 THEN 'MEDIUM'
			ELSE 'LOW'
		END,
		updated_at = now()`,
		entity.HighRiskThreshold, entity.MediumRiskThreshold)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to classify entities")
	}
	return tag.RowsAffected(), nil
}

// Search returns one page of entities matching the criteria, with the total
// row count computed in the same query via a window function.
func (r *EntityRepository) Search(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	criteria = criteria.Normalize()

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if criteria.Search != "" {
		conds = append(conds, fmt.Sprintf("full_name ILIKE %s", arg("%"+escapeLike(criteria.Search)+"%")))
	}
	if len(criteria.RiskBands) > 0 {
		names := make([]string, len(criteria.RiskBands))
		for i, b := range criteria.RiskBands {
			names[i] = b.String()
		}
		conds = append(conds, fmt.Sprintf("risk_band = ANY(%s)", arg(names)))
	}
	if len(criteria.Tags) > 0 {
		conds = append(conds, fmt.Sprintf("tags && %s", arg(criteria.Tags)))
	}
	if criteria.MinScore != nil {
		conds = append(conds, fmt.Sprintf("total_score >= %s", arg(*criteria.MinScore)))
	}
	if criteria.MaxScore != nil {
		conds = append(conds, fmt.Sprintf("total_score <= %s", arg(*criteria.MaxScore)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM entities
		%s
		ORDER BY %s, id ASC
		LIMIT %s OFFSET %s`,
		entityColumns, where, orderClause(criteria),
		arg(criteria.PageSize),
		arg((criteria.Page-1)*criteria.PageSize),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "entity search query failed")
	}
	defer rows.Close()

	var (
		entities []*entity.Entity
		total    int64
	)
	for rows.Next() {
		e, rowTotal, err := scanEntityWithTotal(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to scan entity row")
		}
		entities = append(entities, e)
		total = rowTotal
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "entity search iteration failed")
	}

	p := common.Pagination{Page: criteria.Page, PageSize: criteria.PageSize}
	return &entity.Page{
		Data:       entities,
		Total:      total,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
		TotalPages: p.TotalPages(total),
	}, nil
}

// ListScorable returns every entity with a non-empty name, in stable order.
func (r *EntityRepository) ListScorable(ctx context.Context) ([]*entity.Entity, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM entities ORDER BY id ASC`, entityColumns))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list entities")
	}
	defer rows.Close()

	var entities []*entity.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to scan entity row")
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "entity listing iteration failed")
	}
	return entities, nil
}

// orderClause maps a sort key onto its SQL expression.  The blended score
// expression must stay in lockstep with entity.BlendedScore so database and
// snapshot orderings agree.
func orderClause(criteria entity.SearchCriteria) string {
	dir := "DESC"
	if criteria.SortOrder == common.SortAsc {
		dir = "ASC"
	}
	switch criteria.SortBy {
	case entity.SortByName:
		return "full_name " + dir
	case entity.SortByMentions:
		return "mention_count " + dir
	case entity.SortByRisk:
		return fmt.Sprintf(
			"CASE risk_band WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END %s", dir)
	default:
		return fmt.Sprintf("(%g * mention_count + %g * total_score) %s",
			entity.MentionWeight, entity.ScoreWeight, dir)
	}
}

// escapeLike escapes ILIKE metacharacters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanEntity(row pgx.Row) (*entity.Entity, error) {
	var (
		e    entity.Entity
		id   string
		band string
	)
	if err := row.Scan(&id, &e.FullName, &e.Tags, &e.TotalScore, &e.PeakTier,
		&band, &e.MentionCount, &e.ScoredAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return finishEntity(&e, id, band)
}

func scanEntityWithTotal(row pgx.Row) (*entity.Entity, int64, error) {
	var (
		e     entity.Entity
		id    string
		band  string
		total int64
	)
	if err := row.Scan(&id, &e.FullName, &e.Tags, &e.TotalScore, &e.PeakTier,
		&band, &e.MentionCount, &e.ScoredAt, &e.CreatedAt, &e.UpdatedAt, &total); err != nil {
		return nil, 0, err
	}
	out, err := finishEntity(&e, id, band)
	return out, total, err
}

func finishEntity(e *entity.Entity, id, band string) (*entity.Entity, error) {
	e.ID = common.ID(id)
	parsed, err := entity.ParseRiskBand(band)
	if err != nil {
		return nil, err
	}
	e.RiskBand = parsed
	return e, nil
}
