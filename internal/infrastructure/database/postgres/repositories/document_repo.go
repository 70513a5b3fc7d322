package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuvault/docrisk/internal/domain/document"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

// DocumentRepository is the pgx implementation of document.Repository.
type DocumentRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool, logger logging.Logger) *DocumentRepository {
	return &DocumentRepository{pool: pool, logger: logger.Named("document_repo")}
}

var _ document.Repository = (*DocumentRepository)(nil)

// ListForEntity returns every document linked to the entity through the
// entity_documents join table.  Documents whose text extraction failed carry
// NULL content; COALESCE turns that into the empty string the scanner treats
// as zero-match.
func (r *DocumentRepository) ListForEntity(ctx context.Context, entityID common.ID) ([]*document.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.title, COALESCE(d.content, '')
		FROM documents d
		JOIN entity_documents ed ON ed.document_id = d.id
		WHERE ed.entity_id = $1
		ORDER BY d.id ASC`,
		entityID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list entity documents")
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		var (
			d  document.Document
			id string
		)
		if err := rows.Scan(&id, &d.Title, &d.Content); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to scan document row")
		}
		d.ID = common.ID(id)
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "document listing iteration failed")
	}
	return docs, nil
}
