package service

import (
	"context"
	"crypto/sha256"
	"fmt"

	"manchitra-be/internal/domain"
	"manchitra-be/internal/repository"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"
	"manchitra-be/pkg/redis"
)

// viewService records view increments and fans a recompute trigger out to the
// ranking worker
type viewService struct {
	counterRepo repository.CounterRepository
	redisClient *redis.Client
	trigger     RecomputeTrigger
	logger      *logger.Logger
	rateLimit   int64
}

// NewViewService creates a new view service. redisClient may be nil, in which
// case rate limiting is skipped.
func NewViewService(counterRepo repository.CounterRepository, redisClient *redis.Client, trigger RecomputeTrigger, logger *logger.Logger, rateLimit int) ViewService {
	return &viewService{
		counterRepo: counterRepo,
		redisClient: redisClient,
		trigger:     trigger,
		logger:      logger,
		rateLimit:   int64(rateLimit),
	}
}

// IncrementView records one view. The ranking recompute is fire and forget:
// its failure never fails the increment.
func (s *viewService) IncrementView(ctx context.Context, placeID int64, ipAddress string) (*domain.ViewResult, *domain.RateLimitInfo, error) {
	if placeID <= 0 {
		return nil, nil, apperrors.NewValidationError("place id must be positive", nil)
	}

	rateLimitInfo := s.checkRateLimit(ctx, ipAddress)
	if !rateLimitInfo.IsAllowed {
		s.logger.WithFields(map[string]interface{}{
			"place_id":      placeID,
			"request_count": rateLimitInfo.RequestCount,
		}).Warn("View rate limit exceeded")
		return nil, rateLimitInfo, nil
	}

	count, err := s.counterRepo.IncrementView(ctx, placeID)
	if err != nil {
		s.logger.WithError(err).WithField("place_id", placeID).Error("Failed to increment view count")
		return nil, nil, apperrors.NewStorageError("failed to record view", err)
	}

	s.trigger.Trigger(domain.RankingKindViews)

	s.logger.WithFields(map[string]interface{}{
		"place_id":   placeID,
		"view_count": count,
	}).Debug("View recorded")

	return &domain.ViewResult{PlaceID: placeID, ViewCount: count}, rateLimitInfo, nil
}

// GetViewCounts returns every view counter keyed by place ID
func (s *viewService) GetViewCounts(ctx context.Context) (map[int64]int64, error) {
	counts, err := s.counterRepo.AllViewCounts(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read view counters")
		return nil, apperrors.NewStorageError("failed to read view counts", err)
	}
	return counts, nil
}

// checkRateLimit counts the caller's requests in the current window. Redis
// being down or absent degrades to allowing the request.
func (s *viewService) checkRateLimit(ctx context.Context, ipAddress string) *domain.RateLimitInfo {
	info := &domain.RateLimitInfo{
		Limit:     s.rateLimit,
		Window:    redis.TTLViewRateLimit,
		IsAllowed: true,
	}

	if s.redisClient == nil || ipAddress == "" {
		return info
	}

	key := s.redisClient.KeyBuilder.KeyViewRateLimit(hashIP(ipAddress))
	count, err := s.redisClient.Incr(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Rate limit check failed, allowing request")
		return info
	}

	// First request of the window starts the expiry clock
	if count == 1 {
		if err := s.redisClient.Expire(ctx, key, redis.TTLViewRateLimit); err != nil {
			s.logger.WithError(err).Warn("Failed to set rate limit key expiry")
		}
	}

	info.RequestCount = count
	info.IsAllowed = count <= s.rateLimit
	return info
}

// hashIP hashes an IP address so raw addresses never become Redis keys
func hashIP(ipAddress string) string {
	hash := sha256.Sum256([]byte(ipAddress))
	return fmt.Sprintf("%x", hash)[:16]
}
