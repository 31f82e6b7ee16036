package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/jackett"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
	"github.com/qbitmaster/qbitmaster-api/pkg/config"
)

type jackettClient interface {
	Configured() bool
	Search(ctx context.Context, query, category string) ([]jackett.Result, error)
	Indexers(ctx context.Context) ([]jackett.Indexer, error)
}

// JackettService searches torrent indexers through Jackett with a Redis
// cache in front.
type JackettService struct {
	client jackettClient
	cache  *CacheService
	cfg    config.JackettConfig
	logger *zap.Logger
}

// NewJackettService constructs a JackettService.
func NewJackettService(client jackettClient, cache *CacheService, cfg config.JackettConfig, logger *zap.Logger) *JackettService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JackettService{client: client, cache: cache, cfg: cfg, logger: logger}
}

// Search queries all configured indexers. Results are sorted by seeders,
// capped, and cached per query+category.
func (s *JackettService) Search(ctx context.Context, query, category string) (*dto.JackettSearchResponse, error) {
	if query == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "search query is required")
	}
	if !s.client.Configured() {
		return nil, appErrors.Clone(appErrors.ErrUpstreamDown, "jackett is not configured")
	}

	cacheKey := fmt.Sprintf("jackett:search:%s:%s", url.QueryEscape(query), url.QueryEscape(category))
	var cached dto.JackettSearchResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		s.logger.Debug("jackett search served from cache", zap.String("query", query))
		return &cached, nil
	}

	results, err := s.client.Search(ctx, query, category)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstreamTimeout.Code, appErrors.ErrUpstreamTimeout.Status, "jackett search timed out")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "jackett search failed")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Seeders > results[j].Seeders
	})

	maxResults := s.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	response := &dto.JackettSearchResponse{Results: make([]dto.JackettSearchResult, 0, len(results))}
	for _, r := range results {
		magnet := r.MagnetURI
		if magnet == "" {
			magnet = r.Link
		}
		response.Results = append(response.Results, dto.JackettSearchResult{
			Title:     r.Title,
			Size:      r.Size,
			Seeders:   r.Seeders,
			Leechers:  r.Peers,
			Magnet:    magnet,
			Tracker:   r.Tracker,
			Published: r.PublishDate,
		})
	}
	response.Total = len(response.Results)

	if err := s.cache.Set(ctx, cacheKey, response, s.cfg.SearchCacheTTL); err != nil {
		s.logger.Warn("failed to cache jackett results", zap.Error(err))
	}

	return response, nil
}

// Indexers lists the indexers known to Jackett.
func (s *JackettService) Indexers(ctx context.Context) ([]dto.JackettIndexer, error) {
	if !s.client.Configured() {
		return nil, appErrors.Clone(appErrors.ErrUpstreamDown, "jackett is not configured")
	}

	indexers, err := s.client.Indexers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "failed to list jackett indexers")
	}

	items := make([]dto.JackettIndexer, 0, len(indexers))
	for _, idx := range indexers {
		items = append(items, dto.JackettIndexer{ID: idx.ID, Name: idx.Name, Configured: idx.Configured})
	}
	return items, nil
}
