package service

import (
	"context"

	"manchitra-be/internal/domain"
	"manchitra-be/internal/metrics"
	"manchitra-be/internal/repository"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"
)

// engagementService owns the like/visited/vote toggle state machines. All
// cross-request coordination happens through the store's atomic statements;
// nothing here holds in-process state.
type engagementService struct {
	engagementRepo repository.EngagementRepository
	pollRepo       repository.PollRepository
	trigger        RecomputeTrigger
	logger         *logger.Logger
}

// NewEngagementService creates a new engagement service
func NewEngagementService(engagementRepo repository.EngagementRepository, pollRepo repository.PollRepository, trigger RecomputeTrigger, logger *logger.Logger) EngagementService {
	return &engagementService{
		engagementRepo: engagementRepo,
		pollRepo:       pollRepo,
		trigger:        trigger,
		logger:         logger,
	}
}

// ToggleLike flips the like state for a (place, user) pair. Two sequential
// calls return to the original state and count.
func (s *engagementService) ToggleLike(ctx context.Context, placeID int64, userID string) (*domain.LikeInfo, error) {
	if placeID <= 0 {
		return nil, apperrors.NewValidationError("place id must be positive", nil)
	}
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required for like toggling", nil)
	}

	liked, count, err := s.engagementRepo.ToggleLike(ctx, placeID, userID)
	if err != nil {
		s.logger.WithError(err).WithField("place_id", placeID).Error("Failed to toggle like")
		metrics.IncEngagementOp("toggle_like", "error")
		return nil, apperrors.NewStorageError("failed to toggle like", err)
	}
	metrics.IncEngagementOp("toggle_like", "ok")

	s.logger.WithFields(map[string]interface{}{
		"place_id": placeID,
		"liked":    liked,
	}).Debug("Like toggled")

	return &domain.LikeInfo{PlaceID: placeID, Liked: liked, LikeCount: count}, nil
}

// AnonymousLike increments the like count for callers with no identity. There
// is no toggle and no undo on this path.
func (s *engagementService) AnonymousLike(ctx context.Context, placeID int64) (*domain.LikeInfo, error) {
	if placeID <= 0 {
		return nil, apperrors.NewValidationError("place id must be positive", nil)
	}

	count, err := s.engagementRepo.AnonymousLike(ctx, placeID)
	if err != nil {
		s.logger.WithError(err).WithField("place_id", placeID).Error("Failed to record anonymous like")
		metrics.IncEngagementOp("anonymous_like", "error")
		return nil, apperrors.NewStorageError("failed to record like", err)
	}
	metrics.IncEngagementOp("anonymous_like", "ok")

	return &domain.LikeInfo{PlaceID: placeID, Liked: true, LikeCount: count}, nil
}

// ToggleVisited flips the visited state for a (place, user) pair and triggers
// a visits-ranking recompute
func (s *engagementService) ToggleVisited(ctx context.Context, placeID int64, userID string) (bool, error) {
	if placeID <= 0 {
		return false, apperrors.NewValidationError("place id must be positive", nil)
	}
	if userID == "" {
		return false, apperrors.NewValidationError("user id is required for visited toggling", nil)
	}

	visited, err := s.engagementRepo.ToggleVisited(ctx, placeID, userID)
	if err != nil {
		s.logger.WithError(err).WithField("place_id", placeID).Error("Failed to toggle visited")
		return false, apperrors.NewStorageError("failed to toggle visited", err)
	}

	s.trigger.Trigger(domain.RankingKindVisits)

	return visited, nil
}

// VotePoll applies a poll vote. Multi-choice polls toggle each requested
// option independently; single-choice polls hold at most one option per voter,
// with a re-vote of the held option acting as an unvote.
func (s *engagementService) VotePoll(ctx context.Context, postID int64, optionIDs []string, voterID string, allowMultiple bool) (*domain.PollResult, error) {
	if postID <= 0 {
		return nil, apperrors.NewValidationError("post id must be positive", nil)
	}
	if len(optionIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one option id is required", nil)
	}
	if voterID == "" {
		return nil, apperrors.NewValidationError("voter id is required for poll voting", nil)
	}
	if !allowMultiple && len(optionIDs) != 1 {
		return nil, apperrors.NewValidationError("single-choice polls accept exactly one option", nil)
	}

	hasOptions, err := s.pollRepo.HasOptions(ctx, postID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load poll", err)
	}
	if !hasOptions {
		return nil, apperrors.NewNotFoundError("post has no poll")
	}

	if allowMultiple {
		err = s.pollRepo.ToggleVotes(ctx, postID, optionIDs, voterID)
	} else {
		err = s.pollRepo.CastSingleVote(ctx, postID, optionIDs[0], voterID)
	}
	if err != nil {
		s.logger.WithError(err).WithField("post_id", postID).Error("Failed to apply poll vote")
		metrics.IncEngagementOp("vote_poll", "error")
		return nil, apperrors.NewStorageError("failed to apply vote", err)
	}
	metrics.IncEngagementOp("vote_poll", "ok")

	options, err := s.pollRepo.Results(ctx, postID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load poll results", err)
	}

	result := &domain.PollResult{PostID: postID, Options: options}
	for _, option := range options {
		result.TotalVotes += option.Votes
	}

	return result, nil
}
