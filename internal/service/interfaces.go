package service

import (
	"context"

	"manchitra-be/internal/domain"
)

// ViewService records place views and exposes raw view counts
type ViewService interface {
	// IncrementView records one view for a place and triggers an async
	// ranking recompute. The rate-limit info reports the caller's window.
	IncrementView(ctx context.Context, placeID int64, ipAddress string) (*domain.ViewResult, *domain.RateLimitInfo, error)

	// GetViewCounts returns every view counter keyed by place ID
	GetViewCounts(ctx context.Context) (map[int64]int64, error)
}

// RankingService computes and serves top-N popularity rankings
type RankingService interface {
	// RecomputeTopN rebuilds the snapshot for a kind and size from raw
	// counters and persists it
	RecomputeTopN(ctx context.Context, kind domain.RankingKind, n int) (*domain.RankingSnapshot, error)

	// GetTopN serves the most recent snapshot without recomputing
	GetTopN(ctx context.Context, kind domain.RankingKind, n int) ([]domain.RankingEntry, error)
}

// EngagementService owns the like/visited/vote toggle state machines
type EngagementService interface {
	// ToggleLike flips the like state for a (place, user) pair
	ToggleLike(ctx context.Context, placeID int64, userID string) (*domain.LikeInfo, error)

	// AnonymousLike increments the like count without membership tracking
	AnonymousLike(ctx context.Context, placeID int64) (*domain.LikeInfo, error)

	// ToggleVisited flips the visited state for a (place, user) pair
	ToggleVisited(ctx context.Context, placeID int64, userID string) (bool, error)

	// VotePoll applies a poll vote and returns the resulting option counts
	VotePoll(ctx context.Context, postID int64, optionIDs []string, voterID string, allowMultiple bool) (*domain.PollResult, error)
}

// SuggestionService serves autocomplete place suggestions through the
// read-through cache
type SuggestionService interface {
	// Search returns suggestions for a query. Queries shorter than two
	// characters return an empty result without touching cache or store.
	Search(ctx context.Context, query string, limit int) (*domain.SuggestionResult, error)
}

// RecomputeTrigger accepts fire-and-forget ranking recompute requests
type RecomputeTrigger interface {
	// Trigger enqueues a recompute for the kind; it never blocks and never
	// fails the caller
	Trigger(kind domain.RankingKind)
}
