package service

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"manchitra-be/internal/domain"
	"manchitra-be/internal/metrics"
	"manchitra-be/internal/repository"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"
	"manchitra-be/pkg/redis"
)

// Suggestion search limits
const (
	MinSuggestionQueryLen  = 2
	MaxSuggestionLimit     = 20
	DefaultSuggestionLimit = 10
)

// suggestionService serves autocomplete suggestions behind a read-through
// cache. Disabling the cache changes latency and the cached flag, never the
// returned suggestions.
type suggestionService struct {
	placeRepo   repository.PlaceRepository
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewSuggestionService creates a new suggestion service. redisClient may be
// nil, in which case every search hits the store.
func NewSuggestionService(placeRepo repository.PlaceRepository, redisClient *redis.Client, logger *logger.Logger) SuggestionService {
	return &suggestionService{
		placeRepo:   placeRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Search returns suggestions for a query, cache first
func (s *suggestionService) Search(ctx context.Context, query string, limit int) (*domain.SuggestionResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))

	// Short queries return empty without touching cache or store
	if utf8.RuneCountInString(normalized) < MinSuggestionQueryLen {
		return &domain.SuggestionResult{Suggestions: []domain.Suggestion{}}, nil
	}

	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}

	if suggestions, ok := s.cachedSuggestions(ctx, normalized, limit); ok {
		return &domain.SuggestionResult{Suggestions: suggestions, Cached: true}, nil
	}

	suggestions, err := s.placeRepo.SearchSuggestions(ctx, normalized, limit)
	if err != nil {
		s.logger.WithError(err).Error("Suggestion search failed")
		return nil, apperrors.NewStorageError("failed to search suggestions", err)
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}

	s.cacheSuggestions(ctx, normalized, limit, suggestions)

	return &domain.SuggestionResult{Suggestions: suggestions}, nil
}

// cachedSuggestions reads a cached result. Misses and errors both fall
// through to the store.
func (s *suggestionService) cachedSuggestions(ctx context.Context, normalizedQuery string, limit int) ([]domain.Suggestion, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	key := s.redisClient.KeyBuilder.KeySuggestions(normalizedQuery, limit)
	data, err := s.redisClient.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			s.logger.WithError(err).Warn("Suggestion cache read failed, falling back to store")
			metrics.IncCacheLookup("suggestions", "error")
		} else {
			metrics.IncCacheLookup("suggestions", "miss")
		}
		return nil, false
	}

	var suggestions []domain.Suggestion
	if err := json.Unmarshal([]byte(data), &suggestions); err != nil {
		s.logger.WithError(err).Warn("Suggestion cache corrupted, falling back to store")
		metrics.IncCacheLookup("suggestions", "corrupt")
		return nil, false
	}

	metrics.IncCacheLookup("suggestions", "hit")
	return suggestions, true
}

// cacheSuggestions stores a computed result. Failures are logged and
// swallowed.
func (s *suggestionService) cacheSuggestions(ctx context.Context, normalizedQuery string, limit int, suggestions []domain.Suggestion) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(suggestions)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal suggestions for cache")
		return
	}

	key := s.redisClient.KeyBuilder.KeySuggestions(normalizedQuery, limit)
	if err := s.redisClient.Set(ctx, key, string(data), redis.TTLSuggestions); err != nil {
		s.logger.WithError(err).Warn("Failed to cache suggestions")
	}
}
