package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"manchitra-be/internal/domain"
	"manchitra-be/internal/metrics"
	"manchitra-be/internal/repository"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"
	"manchitra-be/pkg/redis"
)

// Snapshot size buckets. Requests up to 10 entries are served from the top10
// snapshot, anything larger from top25.
const (
	RankingBucketSmall = 10
	RankingBucketLarge = 25

	// MaxRankingLimit is the largest top-N a caller may request
	MaxRankingLimit = 25
)

// rankingService recomputes and serves top-N popularity rankings
type rankingService struct {
	counterRepo    repository.CounterRepository
	engagementRepo repository.EngagementRepository
	rankingRepo    repository.RankingRepository
	placeRepo      repository.PlaceRepository
	redisClient    *redis.Client
	logger         *logger.Logger
}

// NewRankingService creates a new ranking service. redisClient may be nil, in
// which case every read falls through to the persisted snapshot.
func NewRankingService(
	counterRepo repository.CounterRepository,
	engagementRepo repository.EngagementRepository,
	rankingRepo repository.RankingRepository,
	placeRepo repository.PlaceRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) RankingService {
	return &rankingService{
		counterRepo:    counterRepo,
		engagementRepo: engagementRepo,
		rankingRepo:    rankingRepo,
		placeRepo:      placeRepo,
		redisClient:    redisClient,
		logger:         logger,
	}
}

// BucketFor maps a requested limit to the snapshot bucket serving it
func BucketFor(n int) int {
	if n <= RankingBucketSmall {
		return RankingBucketSmall
	}
	return RankingBucketLarge
}

// RecomputeTopN rebuilds the snapshot for a kind from raw counters, persists
// it, and writes it through to the cache. Concurrent recomputations race with
// last write wins on the stored snapshot.
func (s *rankingService) RecomputeTopN(ctx context.Context, kind domain.RankingKind, n int) (*domain.RankingSnapshot, error) {
	counts, err := s.countsFor(ctx, kind)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s counters", kind), err)
	}

	ranked := rankCounts(counts, n)

	ids := make([]int64, len(ranked))
	for i, e := range ranked {
		ids[i] = e.placeID
	}

	places, err := s.placeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load place metadata", err)
	}

	snapshot := &domain.RankingSnapshot{
		Kind:       kind,
		SizeBucket: BucketFor(n),
		ComputedAt: time.Now().UTC(),
	}

	// Counters whose place no longer exists in the catalog are dropped,
	// not errored
	rank := 1
	for _, e := range ranked {
		place, ok := places[e.placeID]
		if !ok {
			continue
		}
		snapshot.Entries = append(snapshot.Entries, domain.RankingEntry{
			Rank:  rank,
			Place: place,
			Score: e.score,
		})
		rank++
	}

	if err := s.rankingRepo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, apperrors.NewStorageError("failed to persist ranking snapshot", err)
	}

	s.cacheSnapshot(ctx, snapshot)

	s.logger.WithFields(map[string]interface{}{
		"kind":    string(kind),
		"bucket":  snapshot.SizeBucket,
		"entries": len(snapshot.Entries),
	}).Info("Ranking snapshot recomputed")

	return snapshot, nil
}

// GetTopN serves the most recent snapshot, cache first. It never recomputes;
// callers needing freshness call RecomputeTopN explicitly.
func (s *rankingService) GetTopN(ctx context.Context, kind domain.RankingKind, n int) ([]domain.RankingEntry, error) {
	if n > MaxRankingLimit {
		n = MaxRankingLimit
	}
	bucket := BucketFor(n)

	if entries, ok := s.cachedSnapshot(ctx, kind, bucket); ok {
		return truncateEntries(entries, n), nil
	}

	snapshot, err := s.rankingRepo.GetSnapshot(ctx, kind, bucket)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read ranking snapshot", err)
	}
	if snapshot == nil {
		return []domain.RankingEntry{}, nil
	}

	return truncateEntries(snapshot.Entries, n), nil
}

// countsFor reads the raw counters backing a ranking kind
func (s *rankingService) countsFor(ctx context.Context, kind domain.RankingKind) (map[int64]int64, error) {
	switch kind {
	case domain.RankingKindViews:
		return s.counterRepo.AllViewCounts(ctx)
	case domain.RankingKindVisits:
		return s.engagementRepo.AllVisitCounts(ctx)
	default:
		return nil, fmt.Errorf("unknown ranking kind %q", kind)
	}
}

type rankedCount struct {
	placeID int64
	score   int64
}

// rankCounts sorts counters descending by score with ties broken by ascending
// place ID, then truncates to n
func rankCounts(counts map[int64]int64, n int) []rankedCount {
	ranked := make([]rankedCount, 0, len(counts))
	for placeID, score := range counts {
		ranked = append(ranked, rankedCount{placeID: placeID, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].placeID < ranked[j].placeID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func truncateEntries(entries []domain.RankingEntry, n int) []domain.RankingEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

// cacheSnapshot writes a snapshot through to Redis. Failures are logged and
// swallowed; the cache is never load-bearing.
func (s *rankingService) cacheSnapshot(ctx context.Context, snapshot *domain.RankingSnapshot) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(snapshot.Entries)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal ranking entries for cache")
		return
	}

	key := s.redisClient.KeyBuilder.KeyRankingSnapshot(string(snapshot.Kind), snapshot.SizeBucket)
	if err := s.redisClient.Set(ctx, key, string(data), redis.TTLRankingSnapshot); err != nil {
		s.logger.WithError(err).Warn("Failed to cache ranking snapshot")
		return
	}

	lastUpdateKey := s.redisClient.KeyBuilder.KeyRankingLastUpdate(string(snapshot.Kind))
	if err := s.redisClient.Set(ctx, lastUpdateKey, snapshot.ComputedAt.Unix(), redis.TTLRankingLastUpdate); err != nil {
		s.logger.WithError(err).Warn("Failed to record ranking last update")
	}
}

// cachedSnapshot reads entries from Redis. Any miss or error falls through to
// the persisted snapshot.
func (s *rankingService) cachedSnapshot(ctx context.Context, kind domain.RankingKind, bucket int) ([]domain.RankingEntry, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	key := s.redisClient.KeyBuilder.KeyRankingSnapshot(string(kind), bucket)
	data, err := s.redisClient.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			s.logger.WithError(err).Warn("Ranking cache read failed, falling back to snapshot")
			metrics.IncCacheLookup("ranking", "error")
		} else {
			metrics.IncCacheLookup("ranking", "miss")
		}
		return nil, false
	}

	var entries []domain.RankingEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		s.logger.WithError(err).Warn("Ranking cache corrupted, evicting and falling back to snapshot")
		metrics.IncCacheLookup("ranking", "corrupt")
		if delErr := s.redisClient.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).Warn("Failed to evict corrupted ranking cache entry")
		}
		return nil, false
	}

	metrics.IncCacheLookup("ranking", "hit")
	return entries, true
}
