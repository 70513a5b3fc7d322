package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// fakeSource scripts a sequence of Fetch outcomes.
type fakeSource struct {
	calls   atomic.Int64
	results []fakeResult
}

type fakeResult struct {
	page *entity.Page
	err  error
}

func (f *fakeSource) Fetch(_ context.Context, _ entity.SearchCriteria) (*entity.Page, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.results) {
		n = len(f.results) - 1
	}
	r := f.results[n]
	return r.page, r.err
}

func fastRetry(max int) RetryPolicy {
	return RetryPolicy{MaxRetries: max, BaseDelay: time.Millisecond}
}

func TestHTTPSourceFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/v1/entities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"3e0170c6-93b0-4d4f-9f3a-000000000001",
			"full_name":"Acme Holdings","total_score":60,"peak_tier":4,
			"risk_band":"HIGH","mention_count":2}],
			"total":1,"page":1,"page_size":20,"total_pages":1}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, 5*time.Second)
	min := 50
	page, err := src.Fetch(context.Background(), entity.SearchCriteria{
		RiskBands: []entity.RiskBand{entity.RiskHigh},
		MinScore:  &min,
		Page:      1,
		PageSize:  20,
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Acme Holdings", page.Data[0].FullName)
	assert.Equal(t, entity.RiskHigh, page.Data[0].RiskBand)

	assert.Contains(t, gotQuery, "risk_band=HIGH")
	assert.Contains(t, gotQuery, "min_score=50")
}

func TestHTTPSourceServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, 5*time.Second)
	_, err := src.Fetch(context.Background(), entity.SearchCriteria{Page: 1, PageSize: 20})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBackingUnavailable))
	assert.True(t, apperrors.IsTransient(err))
}

func TestHTTPSourceClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, 5*time.Second)
	_, err := src.Fetch(context.Background(), entity.SearchCriteria{Page: 1, PageSize: 20})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.False(t, apperrors.IsTransient(err))
}

func TestHTTPSourceUnreachable(t *testing.T) {
	src := NewHTTPSource("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := src.Fetch(context.Background(), entity.SearchCriteria{Page: 1, PageSize: 20})
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	want := &entity.Page{Total: 1, Page: 1, PageSize: 20, TotalPages: 1}
	src := &fakeSource{results: []fakeResult{
		{err: apperrors.New(apperrors.CodeBackingUnavailable, "503")},
		{err: apperrors.New(apperrors.CodeBackingUnavailable, "503")},
		{page: want},
	}}

	retried := WithRetry(src, fastRetry(3), logging.NewNopLogger(), nil)
	page, err := retried.Fetch(context.Background(), entity.SearchCriteria{})
	require.NoError(t, err)
	assert.Equal(t, want, page)
	assert.Equal(t, int64(3), src.calls.Load())
}

func TestRetryExhaustsBudget(t *testing.T) {
	src := &fakeSource{results: []fakeResult{
		{err: apperrors.New(apperrors.CodeBackingUnavailable, "503")},
	}}

	retried := WithRetry(src, fastRetry(3), logging.NewNopLogger(), nil)
	_, err := retried.Fetch(context.Background(), entity.SearchCriteria{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBackingUnavailable))

	// First attempt plus three retries.
	assert.Equal(t, int64(4), src.calls.Load())
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	src := &fakeSource{results: []fakeResult{
		{err: apperrors.InvalidParam("bad criteria")},
	}}

	retried := WithRetry(src, fastRetry(3), logging.NewNopLogger(), nil)
	_, err := retried.Fetch(context.Background(), entity.SearchCriteria{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	src := &fakeSource{results: []fakeResult{
		{err: apperrors.New(apperrors.CodeBackingUnavailable, "503")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retried := WithRetry(src, RetryPolicy{MaxRetries: 3, BaseDelay: time.Minute},
		logging.NewNopLogger(), nil)
	_, err := retried.Fetch(ctx, entity.SearchCriteria{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTimeout))
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestStoreSourceDelegates(t *testing.T) {
	store := &fakeStore{page: &entity.Page{Total: 7}}
	src := NewStoreSource(store)

	page, err := src.Fetch(context.Background(), entity.SearchCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
}
