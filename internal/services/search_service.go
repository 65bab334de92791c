// internal/services/search_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/batisource/sourcing-backend/internal/cache"
	"github.com/batisource/sourcing-backend/internal/config"
	"github.com/batisource/sourcing-backend/internal/models"
	"github.com/batisource/sourcing-backend/internal/provider"
)

// TermSearcher is the slice of the provider client the search service needs.
type TermSearcher interface {
	SearchTerm(ctx context.Context, term string, maxResults int) (*models.TermResult, error)
	SearchByImage(ctx context.Context, imageURL string, maxResults int) (*models.TermResult, error)
}

// ProgressFunc reports sequential search progress. completed counts terms
// already processed (success or failure); current is the term being searched.
type ProgressFunc func(completed, total int, current string)

// SearchService runs provider searches inline, with read-through caching and
// a fixed delay between consecutive provider calls.
type SearchService struct {
	searcher    TermSearcher
	store       cache.Store
	logs        *SearchLogService
	providerCfg config.ProviderConfig
	searchCfg   config.SearchConfig
}

func NewSearchService(searcher TermSearcher, store cache.Store, logs *SearchLogService, providerCfg config.ProviderConfig, searchCfg config.SearchConfig) *SearchService {
	return &SearchService{
		searcher:    searcher,
		store:       store,
		logs:        logs,
		providerCfg: providerCfg,
		searchCfg:   searchCfg,
	}
}

// SearchSingle looks up one keyword, serving from cache when possible.
func (s *SearchService) SearchSingle(ctx context.Context, keyword string, maxResults int) (*models.TermResult, error) {
	if maxResults <= 0 {
		maxResults = s.providerCfg.MaxResults
	}

	key := cache.TermKey(keyword)
	if cached, ok := s.store.Get(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	result, err := s.searcher.SearchTerm(ctx, keyword, maxResults)
	s.logs.Record(nil, models.SearchTypeKeyword, result, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.store.Set(ctx, key, result)
	return result, nil
}

// SearchImage looks up products by image URL. When the provider returns no
// matches and a fallback keyword is given, it retries as a keyword search.
func (s *SearchService) SearchImage(ctx context.Context, imageURL, fallbackKeyword string, maxResults int) (*models.TermResult, error) {
	if maxResults <= 0 {
		maxResults = s.providerCfg.MaxResults
	}

	key := cache.ImageKey(imageURL)
	if cached, ok := s.store.Get(ctx, key); ok {
		return cached, nil
	}

	start := time.Now()
	result, err := s.searcher.SearchByImage(ctx, imageURL, maxResults)
	s.logs.Record(nil, models.SearchTypeImage, result, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 && fallbackKeyword != "" {
		fallback, fbErr := s.searchFallback(ctx, fallbackKeyword, maxResults)
		if fbErr == nil {
			s.store.Set(ctx, key, fallback)
			return fallback, nil
		}
		logrus.WithError(fbErr).WithField("keyword", fallbackKeyword).Warn("Image search keyword fallback failed")
	}

	s.store.Set(ctx, key, result)
	return result, nil
}

func (s *SearchService) searchFallback(ctx context.Context, keyword string, maxResults int) (*models.TermResult, error) {
	start := time.Now()
	result, err := s.searcher.SearchTerm(ctx, keyword, maxResults)
	s.logs.Record(nil, models.SearchTypeKeywordFallback, result, time.Since(start), err)
	return result, err
}

// SearchMany runs the terms sequentially with the configured delay between
// provider calls. A failing term is recorded in its result slot and does not
// stop the run. Cancellation is honored between terms; the partial aggregate
// built so far is returned alongside ErrSearchCancelled.
func (s *SearchService) SearchMany(ctx context.Context, terms []string, opts models.SearchOptions, onProgress ProgressFunc) (*models.AggregateResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.providerCfg.MaxResults
	}
	if s.searchCfg.MaxSyncProducts > 0 && maxResults > s.searchCfg.MaxSyncProducts {
		maxResults = s.searchCfg.MaxSyncProducts
	}

	agg := &models.AggregateResult{
		TotalProducts: len(terms),
		Results:       make([]models.TermResult, 0, len(terms)),
		StartedAt:     time.Now(),
	}

	limiter := rate.NewLimiter(rate.Every(s.providerCfg.RequestDelay), 1)

	for i, term := range terms {
		if ctx.Err() != nil {
			agg.CompletedAt = time.Now()
			return agg, ErrSearchCancelled
		}

		if onProgress != nil {
			onProgress(i, len(terms), term)
		}

		key := cache.TermKey(term)
		if cached, ok := s.store.Get(ctx, key); ok {
			agg.Results = append(agg.Results, *cached)
			agg.CompletedSearches++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			agg.CompletedAt = time.Now()
			return agg, ErrSearchCancelled
		}

		start := time.Now()
		result, err := s.searcher.SearchTerm(ctx, term, maxResults)
		s.logs.Record(nil, models.SearchTypeKeyword, result, time.Since(start), err)
		if err != nil {
			if errors.Is(err, provider.ErrNotConfigured) {
				agg.CompletedAt = time.Now()
				return agg, err
			}
			if ctx.Err() != nil {
				agg.CompletedAt = time.Now()
				return agg, ErrSearchCancelled
			}

			logrus.WithError(err).WithField("term", term).Warn("Term search failed")
			agg.Results = append(agg.Results, models.TermResult{
				SearchQuery: term,
				Results:     []models.ProductRecord{},
				SearchedAt:  time.Now(),
				Error:       err.Error(),
			})
			agg.FailedSearches++
			continue
		}

		s.store.Set(ctx, key, result)
		agg.Results = append(agg.Results, *result)
		agg.CompletedSearches++
	}

	if onProgress != nil {
		onProgress(len(terms), len(terms), "")
	}

	agg.CompletedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"terms":     len(terms),
		"completed": agg.CompletedSearches,
		"failed":    agg.FailedSearches,
		"duration":  fmt.Sprintf("%.1fs", agg.CompletedAt.Sub(agg.StartedAt).Seconds()),
	}).Info("Sequential search finished")

	return agg, nil
}
