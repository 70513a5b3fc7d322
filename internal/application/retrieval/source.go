// Package retrieval implements the query side of docrisk: cached, deduped,
// retried reads over the scored entity set with snapshot fallback.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// Source is a primary provider of entity result pages.  The store-backed
// and HTTP-backed implementations are interchangeable; the service composes
// one of them with retry and snapshot fallback.
type Source interface {
	Fetch(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Store source
// ─────────────────────────────────────────────────────────────────────────────

// StoreSource serves queries directly from the score store.
type StoreSource struct {
	store entity.ScoreStore
}

// NewStoreSource wraps a score store as a Source.
func NewStoreSource(store entity.ScoreStore) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Fetch(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	return s.store.Search(ctx, criteria)
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP source
// ─────────────────────────────────────────────────────────────────────────────

// HTTPSource serves queries from a remote scoring API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource constructs an HTTPSource against baseURL with the given
// per-request timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTPSource) Fetch(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	u := h.baseURL + "/api/v1/entities?" + encodeCriteria(criteria)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build backing request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeBackingUnavailable, "backing source unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.Newf(apperrors.CodeBackingUnavailable,
			"backing source returned %d", resp.StatusCode)
	default:
		return nil, apperrors.Newf(apperrors.CodeValidation,
			"backing source rejected query with %d", resp.StatusCode)
	}

	var page entity.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSerialization,
			"failed to decode backing response")
	}
	return &page, nil
}

func encodeCriteria(criteria entity.SearchCriteria) string {
	q := url.Values{}
	if criteria.Search != "" {
		q.Set("search", criteria.Search)
	}
	if len(criteria.RiskBands) > 0 {
		names := make([]string, len(criteria.RiskBands))
		for i, b := range criteria.RiskBands {
			names[i] = b.String()
		}
		q.Set("risk_band", strings.Join(names, ","))
	}
	if len(criteria.Tags) > 0 {
		q.Set("tags", strings.Join(criteria.Tags, ","))
	}
	if criteria.MinScore != nil {
		q.Set("min_score", strconv.Itoa(*criteria.MinScore))
	}
	if criteria.MaxScore != nil {
		q.Set("max_score", strconv.Itoa(*criteria.MaxScore))
	}
	if criteria.SortBy != "" {
		q.Set("sort_by", criteria.SortBy)
	}
	if criteria.SortOrder != "" {
		q.Set("sort_order", string(criteria.SortOrder))
	}
	q.Set("page", strconv.Itoa(criteria.Page))
	q.Set("page_size", strconv.Itoa(criteria.PageSize))
	return q.Encode()
}

// ─────────────────────────────────────────────────────────────────────────────
// Retry decorator
// ─────────────────────────────────────────────────────────────────────────────

// RetryPolicy controls the retry decorator: MaxRetries additional attempts
// after the first failure, with exponential backoff starting at BaseDelay
// (1s, 2s, 4s with the defaults).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// retrySource wraps a Source with transient-failure retries.
type retrySource struct {
	inner   Source
	policy  RetryPolicy
	logger  logging.Logger
	metrics *prometheus.Collector
}

// WithRetry decorates src with the retry policy.  Permanent failures
// (validation, malformed input) are returned immediately; only transient
// failures consume the retry budget.
func WithRetry(src Source, policy RetryPolicy, logger logging.Logger, metrics *prometheus.Collector) Source {
	return &retrySource{inner: src, policy: policy, logger: logger, metrics: metrics}
}

func (r *retrySource) Fetch(ctx context.Context, criteria entity.SearchCriteria) (*entity.Page, error) {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.policy.BaseDelay << (attempt - 1)
			r.metrics.RecordRetryAttempt()
			r.logger.Warn("retrying backing fetch",
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Err(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout,
					"query cancelled during retry backoff")
			}
		}

		page, err := r.inner.Fetch(ctx, criteria)
		if err == nil {
			return page, nil
		}
		if !apperrors.IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, apperrors.Wrap(lastErr, apperrors.CodeBackingUnavailable,
		fmt.Sprintf("backing source failed after %d attempts", r.policy.MaxRetries+1))
}
