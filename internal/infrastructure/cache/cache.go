// Package cache provides the retrieval result cache behind a small
// interface with in-memory and redis implementations.
package cache

import (
	"context"
	"time"

	"github.com/docuvault/docrisk/internal/domain/entity"
)

// Cache stores fully materialised result pages keyed by the canonical query
// key.  Implementations must be safe for concurrent use.  A Get on an
// expired entry behaves as a miss; eviction is lazy, there is no background
// sweeper.
type Cache interface {
	// Get returns the cached page for key, or ok=false on miss or expiry.
	Get(ctx context.Context, key string) (*entity.Page, bool)

	// Put stores the page under key for the given TTL.
	Put(ctx context.Context, key string, page *entity.Page, ttl time.Duration)

	// Invalidate removes the entry for key if present.
	Invalidate(ctx context.Context, key string)
}
