// Package document defines the archive document model and its read-side
// repository contract.
package document

import (
	"context"

	"github.com/docuvault/docrisk/pkg/types/common"
)

// Document is a single archived item.  Content may be empty for documents
// whose text extraction failed; scoring treats those as zero-match.
type Document struct {
	ID      common.ID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// Repository is the read-side contract the scoring engine uses to pull an
// entity's documents.
type Repository interface {
	// ListForEntity returns every document that mentions the entity,
	// in stable (id ascending) order.
	ListForEntity(ctx context.Context, entityID common.ID) ([]*Document, error)
}
