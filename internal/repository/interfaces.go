package repository

import (
	"context"

	"manchitra-be/internal/domain"
)

// CounterRepository defines durable view-counter operations. Increments are
// atomic at the storage layer; read-then-write is never used.
type CounterRepository interface {
	// IncrementView adds 1 to a place's view counter, creating it at 0 first
	// if absent, and returns the new count
	IncrementView(ctx context.Context, placeID int64) (int64, error)

	// GetViewCount returns the current view count, 0 when no counter exists
	GetViewCount(ctx context.Context, placeID int64) (int64, error)

	// AllViewCounts returns every view counter keyed by place ID
	AllViewCounts(ctx context.Context) (map[int64]int64, error)
}

// EngagementRepository defines like and visited-set operations. Toggles are
// single atomic statements so membership and counts cannot diverge, and the
// counts they return are computed with the mutation rather than read back.
type EngagementRepository interface {
	// ToggleLike flips the (place, user) like membership and returns the new
	// state plus the total like count including anonymous likes
	ToggleLike(ctx context.Context, placeID int64, userID string) (liked bool, likeCount int64, err error)

	// AnonymousLike increments the anonymous like counter with no membership
	// tracking and returns the total like count
	AnonymousLike(ctx context.Context, placeID int64) (int64, error)

	// ToggleVisited flips the (place, user) visited membership
	ToggleVisited(ctx context.Context, placeID int64, userID string) (visited bool, err error)

	// AllVisitCounts returns visit counts per place for ranking aggregation
	AllVisitCounts(ctx context.Context) (map[int64]int64, error)
}

// PollRepository defines poll vote operations
type PollRepository interface {
	// HasOptions reports whether a post carries a poll
	HasOptions(ctx context.Context, postID int64) (bool, error)

	// ToggleVotes toggles the voter's membership independently for each of
	// the given options. Unknown option IDs are ignored.
	ToggleVotes(ctx context.Context, postID int64, optionIDs []string, voterID string) error

	// CastSingleVote applies single-choice semantics: voting the held option
	// removes the vote, voting another moves it. At most one option holds the
	// voter afterwards.
	CastSingleVote(ctx context.Context, postID int64, optionID string, voterID string) error

	// Results returns the poll options with vote counts in option order
	Results(ctx context.Context, postID int64) ([]domain.PollOption, error)
}

// RankingRepository persists ranking snapshots, fully replaced per
// (kind, size bucket)
type RankingRepository interface {
	// SaveSnapshot replaces the snapshot for the snapshot's kind and bucket
	SaveSnapshot(ctx context.Context, snapshot *domain.RankingSnapshot) error

	// GetSnapshot returns the latest snapshot, nil when none was computed yet
	GetSnapshot(ctx context.Context, kind domain.RankingKind, sizeBucket int) (*domain.RankingSnapshot, error)
}

// PlaceRepository reads place catalog metadata. The catalog is owned by
// another service; nothing here mutates it.
type PlaceRepository interface {
	// GetByIDs returns catalog metadata for the given place IDs; missing IDs
	// are simply absent from the result
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Place, error)

	// SearchSuggestions returns up to limit places matching the query
	SearchSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Counter    CounterRepository
	Engagement EngagementRepository
	Poll       PollRepository
	Ranking    RankingRepository
	Place      PlaceRepository
}
