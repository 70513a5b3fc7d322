package retrieval

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/cache"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// prefetchTimeout bounds the background next-page warm-up so an abandoned
// prefetch cannot hold a singleflight slot indefinitely.
const prefetchTimeout = 30 * time.Second

// Options tune the service beyond its collaborators.
type Options struct {
	// CacheTTL is how long served pages stay fresh in the cache.
	CacheTTL time.Duration

	// PrefetchNextPage warms the cache with page N+1 after serving page N.
	PrefetchNextPage bool
}

// Service answers entity queries.  Fresh results flow through a cache and a
// singleflight group so identical concurrent queries share one backing
// fetch; when the primary source is exhausted the snapshot serves stale
// results rather than failing the query.
type Service struct {
	primary  Source
	snapshot *SnapshotSource
	cache    cache.Cache
	logger   logging.Logger
	metrics  *prometheus.Collector

	optsMu sync.RWMutex
	opts   Options

	flight singleflight.Group
}

// NewService wires a retrieval service.  primary should already carry its
// retry decoration; snapshot may be an unloaded SnapshotSource when no
// fallback is configured.
func NewService(primary Source, snapshot *SnapshotSource, resultCache cache.Cache,
	opts Options, logger logging.Logger, metrics *prometheus.Collector) *Service {
	return &Service{
		primary:  primary,
		snapshot: snapshot,
		cache:    resultCache,
		opts:     opts,
		logger:   logger.Named("retrieval"),
		metrics:  metrics,
	}
}

// Query returns one page of entities for the criteria.
//
// Queries with a search term bypass the cache entirely: search results are
// too variable to be worth caching and must always reflect current data.
// All other queries are served from cache when fresh, otherwise fetched
// through the singleflight group and cached on success.  Stale snapshot
// pages are never cached.
func (s *Service) Query(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	criteria = criteria.Normalize()
	start := time.Now()
	defer func() { s.metrics.RecordQueryDuration(time.Since(start)) }()

	if criteria.HasSearch() {
		return s.fetch(ctx, criteria)
	}

	key := cacheKey(criteria)
	if page, ok := s.cache.Get(ctx, key); ok {
		s.metrics.RecordCacheHit()
		s.maybePrefetch(criteria, page)
		return page, nil
	}
	s.metrics.RecordCacheMiss()

	page, err := s.fetchShared(ctx, key, criteria)
	if err != nil {
		return nil, err
	}
	s.maybePrefetch(criteria, page)
	return page, nil
}

// Invalidate drops the cached page for the given criteria.  Exposed for
// operational tooling after out-of-band data changes.
func (s *Service) Invalidate(ctx context.Context, criteria entity.SearchCriteria) {
	s.cache.Invalidate(ctx, cacheKey(criteria.Normalize()))
}

// UpdateOptions swaps the tuning options at runtime.  Already-cached pages
// keep the TTL they were stored with; new fetches use the new values.
func (s *Service) UpdateOptions(opts Options) {
	s.optsMu.Lock()
	s.opts = opts
	s.optsMu.Unlock()
}

func (s *Service) options() Options {
	s.optsMu.RLock()
	defer s.optsMu.RUnlock()
	return s.opts
}

// fetchShared funnels identical concurrent queries through one in-flight
// fetch.  The flight runs on a context detached from the caller so that one
// abandoned request does not cancel the result for the others sharing it.
func (s *Service) fetchShared(ctx context.Context, key string, criteria entity.SearchCriteria) (*entity.Page, error) {
	result, err, shared := s.flight.Do(key, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		page, err := s.fetch(flightCtx, criteria)
		if err != nil {
			return nil, err
		}
		if !page.Stale {
			s.cache.Put(flightCtx, key, page, s.options().CacheTTL)
		}
		return page, nil
	})
	if shared {
		s.metrics.RecordDedupCoalesced()
	}
	if err != nil {
		return nil, err
	}
	return result.(*entity.Page), nil
}

// fetch tries the primary source and degrades to the snapshot when the
// primary is exhausted.  Permanent query errors (validation) surface
// immediately; stale fallback is success, not an error.
func (s *Service) fetch(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	page, err := s.primary.Fetch(ctx, criteria)
	if err == nil {
		if s.snapshot != nil {
			s.snapshot.Absorb(page.Data)
		}
		return page, nil
	}
	if !apperrors.IsTransient(err) {
		return nil, err
	}

	if s.snapshot == nil || !s.snapshot.Loaded() {
		return nil, apperrors.Wrap(err, apperrors.CodeNoDataSource,
			"primary source exhausted and no snapshot loaded")
	}

	s.logger.Warn("serving stale snapshot after primary exhaustion", logging.Err(err))
	s.metrics.RecordFallbackServe()
	return s.snapshot.Fetch(ctx, criteria)
}

// maybePrefetch warms the cache with the next page in the background.  Fire
// and forget: failures only log, and an already-cached next page is skipped.
func (s *Service) maybePrefetch(criteria entity.SearchCriteria, served *entity.Page) {
	if !s.options().PrefetchNextPage || criteria.HasSearch() {
		return
	}
	if served == nil || criteria.Page >= served.TotalPages {
		return
	}

	next := criteria
	next.Page++
	key := cacheKey(next)

	s.metrics.RecordPrefetch()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
		defer cancel()

		if _, ok := s.cache.Get(ctx, key); ok {
			return
		}
		if _, err := s.fetchShared(ctx, key, next); err != nil {
			s.logger.Debug("next-page prefetch failed",
				logging.Int("page", next.Page), logging.Err(err))
		}
	}()
}

// cacheKey builds the canonical cache key for normalized criteria.  JSON of
// the criteria struct is deterministic for a fixed field order, and the
// normalization step guarantees equivalent queries serialise identically.
func cacheKey(criteria entity.SearchCriteria) string {
	data, err := json.Marshal(criteria)
	if err != nil {
		// Criteria are plain data; marshalling cannot fail in practice.
		return "unkeyed"
	}
	var sb strings.Builder
	sb.Grow(len(data) + 8)
	sb.WriteString("v1:")
	sb.Write(data)
	return sb.String()
}
