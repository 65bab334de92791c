// internal/services/search_service_test.go
package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/batisource/sourcing-backend/internal/cache"
	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/provider"
)

type stubSearcher struct {
	mtx        sync.Mutex
	termCalls  []string
	imageCalls []string
	maxSeen    int
	failOn     map[string]error
	emptyFor   map[string]bool
	onSearch   func()
}

func (s *stubSearcher) SearchTerm(_ context.Context, term string, maxResults int) (*models.TermResult, error) {
	s.mtx.Lock()
	s.termCalls = append(s.termCalls, term)
	s.maxSeen = maxResults
	s.mtx.Unlock()

	if s.onSearch != nil {
		s.onSearch()
	}
	if err, ok := s.failOn[term]; ok {
		return nil, err
	}

	result := &models.TermResult{
		SearchQuery: term,
		Results:     []models.ProductRecord{{ID: "p-" + term, Title: term, MOQ: 1}},
		SearchedAt:  time.Now(),
		TotalFound:  1,
	}
	if s.emptyFor[term] {
		result.Results = []models.ProductRecord{}
		result.TotalFound = 0
	}
	return result, nil
}

func (s *stubSearcher) SearchByImage(_ context.Context, imageURL string, maxResults int) (*models.TermResult, error) {
	s.mtx.Lock()
	s.imageCalls = append(s.imageCalls, imageURL)
	s.mtx.Unlock()

	if err, ok := s.failOn[imageURL]; ok {
		return nil, err
	}

	result := &models.TermResult{
		SearchQuery: imageURL,
		Results:     []models.ProductRecord{{ID: "img-p", Title: "image match", MOQ: 1}},
		SearchedAt:  time.Now(),
		TotalFound:  1,
	}
	if s.emptyFor[imageURL] {
		result.Results = []models.ProductRecord{}
		result.TotalFound = 0
	}
	return result, nil
}

func testSearchService(searcher TermSearcher) *SearchService {
	return NewSearchService(searcher, cache.NewMemory(time.Minute), nil,
		config.ProviderConfig{MaxResults: 10, RequestDelay: time.Millisecond},
		config.SearchConfig{SyncThreshold: 5, MaxSyncProducts: 20, CacheTTL: time.Minute})
}

func TestSearchSingleCachesResult(t *testing.T) {
	searcher := &stubSearcher{}
	svc := testSearchService(searcher)
	ctx := context.Background()

	first, err := svc.SearchSingle(ctx, "ciment", 0)
	assert.NoError(t, err)
	assert.Len(t, first.Results, 1)

	// Same normalized term, different casing: served from cache.
	second, err := svc.SearchSingle(ctx, "  CIMENT ", 0)
	assert.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)
	assert.Len(t, searcher.termCalls, 1)
}

func TestSearchSingleDoesNotCacheFailures(t *testing.T) {
	searcher := &stubSearcher{failOn: map[string]error{
		"ciment": &provider.Error{StatusCode: 500, Message: "boom"},
	}}
	svc := testSearchService(searcher)
	ctx := context.Background()

	_, err := svc.SearchSingle(ctx, "ciment", 0)
	assert.Error(t, err)

	searcher.failOn = nil
	result, err := svc.SearchSingle(ctx, "ciment", 0)
	assert.NoError(t, err)
	assert.Len(t, result.Results, 1)
	assert.Len(t, searcher.termCalls, 2)
}

func TestSearchManyPartialFailure(t *testing.T) {
	searcher := &stubSearcher{failOn: map[string]error{
		"peinture": &provider.Error{StatusCode: 502, Message: "bad gateway"},
	}}
	svc := testSearchService(searcher)

	agg, err := svc.SearchMany(context.Background(), []string{"ciment", "peinture", "pompe"}, models.SearchOptions{}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, agg.TotalProducts)
	assert.Equal(t, 2, agg.CompletedSearches)
	assert.Equal(t, 1, agg.FailedSearches)

	assert.Len(t, agg.Results, 3)
	assert.Equal(t, "peinture", agg.Results[1].SearchQuery)
	assert.NotEmpty(t, agg.Results[1].Error)
	assert.Empty(t, agg.Results[1].Results)
	assert.Equal(t, "pompe", agg.Results[2].SearchQuery)
}

func TestSearchManyServesRepeatsFromCache(t *testing.T) {
	searcher := &stubSearcher{}
	svc := testSearchService(searcher)

	agg, err := svc.SearchMany(context.Background(), []string{"ciment", "ciment", "pompe"}, models.SearchOptions{}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 3, agg.CompletedSearches)
	assert.Len(t, agg.Results, 3)
	// The duplicate term hits the cache instead of the provider.
	assert.Equal(t, []string{"ciment", "pompe"}, searcher.termCalls)
}

func TestSearchManyCancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	searcher := &stubSearcher{}
	searcher.onSearch = func() { cancel() }
	svc := testSearchService(searcher)

	agg, err := svc.SearchMany(ctx, []string{"a", "b", "c"}, models.SearchOptions{}, nil)

	assert.ErrorIs(t, err, ErrSearchCancelled)
	assert.NotNil(t, agg)
	assert.Len(t, agg.Results, 1)
	assert.Len(t, searcher.termCalls, 1)
}

func TestSearchManyCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &stubSearcher{}
	svc := testSearchService(searcher)

	agg, err := svc.SearchMany(ctx, []string{"a", "b"}, models.SearchOptions{}, nil)

	assert.ErrorIs(t, err, ErrSearchCancelled)
	assert.Empty(t, agg.Results)
	assert.Empty(t, searcher.termCalls)
}

func TestSearchManyFatalWhenNotConfigured(t *testing.T) {
	searcher := &stubSearcher{failOn: map[string]error{
		"a": provider.ErrNotConfigured,
	}}
	svc := testSearchService(searcher)

	_, err := svc.SearchMany(context.Background(), []string{"a", "b"}, models.SearchOptions{}, nil)

	assert.ErrorIs(t, err, provider.ErrNotConfigured)
	// Fatal errors stop the run; the remaining terms are never attempted.
	assert.Equal(t, []string{"a"}, searcher.termCalls)
}

func TestSearchManyReportsProgress(t *testing.T) {
	searcher := &stubSearcher{}
	svc := testSearchService(searcher)

	var completed []int
	agg, err := svc.SearchMany(context.Background(), []string{"a", "b"}, models.SearchOptions{},
		func(done, total int, current string) {
			completed = append(completed, done)
			assert.Equal(t, 2, total)
		})

	assert.NoError(t, err)
	assert.Equal(t, 2, agg.CompletedSearches)
	assert.Equal(t, []int{0, 1, 2}, completed)
}

func TestSearchManyCapsResultsForSyncRuns(t *testing.T) {
	searcher := &stubSearcher{}
	svc := testSearchService(searcher)

	_, err := svc.SearchMany(context.Background(), []string{"a"}, models.SearchOptions{MaxResults: 500}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 20, searcher.maxSeen)
}

func TestSearchImageFallsBackToKeyword(t *testing.T) {
	searcher := &stubSearcher{emptyFor: map[string]bool{
		"https://img.example.com/ref.jpg": true,
	}}
	svc := testSearchService(searcher)

	result, err := svc.SearchImage(context.Background(), "https://img.example.com/ref.jpg", "pompe", 0)

	assert.NoError(t, err)
	assert.Len(t, result.Results, 1)
	assert.Equal(t, []string{"https://img.example.com/ref.jpg"}, searcher.imageCalls)
	assert.Equal(t, []string{"pompe"}, searcher.termCalls)
}

func TestSearchImageSkipsFallbackOnHit(t *testing.T) {
	searcher := &stubSearcher{}
	svc := testSearchService(searcher)

	result, err := svc.SearchImage(context.Background(), "https://img.example.com/ref.jpg", "pompe", 0)

	assert.NoError(t, err)
	assert.Len(t, result.Results, 1)
	assert.Empty(t, searcher.termCalls)
}
