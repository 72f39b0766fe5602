package repository

import (
	"context"
	"fmt"

	"manchitra-be/pkg/database"
)

// engagementRepository handles like and visited sets with PostgreSQL
type engagementRepository struct {
	db *database.PostgresDB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *database.PostgresDB) EngagementRepository {
	return &engagementRepository{
		db: db,
	}
}

// toggleLikeQuery flips the caller's like membership and reports the total
// like count in the same statement. Both CTEs evaluate against the statement
// snapshot: when the row exists the DELETE removes it and the INSERT's NOT
// EXISTS guard skips, otherwise the INSERT fires. The count sub-selects see
// that same snapshot, so the removed/added adjustments yield the post-toggle
// total without a separate read that could land on a lagging replica.
const toggleLikeQuery = `
	WITH removed AS (
		DELETE FROM place_likes
		WHERE place_id = $1 AND user_id = $2
		RETURNING 1
	), added AS (
		INSERT INTO place_likes (place_id, user_id)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1 FROM place_likes WHERE place_id = $1 AND user_id = $2
		)
		ON CONFLICT (place_id, user_id) DO NOTHING
		RETURNING 1
	)
	SELECT EXISTS (SELECT 1 FROM added),
	       (SELECT count(*) FROM place_likes WHERE place_id = $1)
	     - (SELECT count(*) FROM removed)
	     + (SELECT count(*) FROM added)
	     + coalesce((SELECT anonymous_likes FROM engagement_counters WHERE place_id = $1), 0)
`

// ToggleLike flips like membership and returns the new state with the total
// like count. The count reflects the toggle it was computed with.
func (r *engagementRepository) ToggleLike(ctx context.Context, placeID int64, userID string) (bool, int64, error) {
	var liked bool
	var count int64
	if err := r.db.Pool.QueryRow(ctx, toggleLikeQuery, placeID, userID).Scan(&liked, &count); err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}

	return liked, count, nil
}

// AnonymousLike increments the anonymous like counter and returns the total
// like count. There is no membership and no way to undo.
func (r *engagementRepository) AnonymousLike(ctx context.Context, placeID int64) (int64, error) {
	query := `
		INSERT INTO engagement_counters (place_id, anonymous_likes)
		VALUES ($1, 1)
		ON CONFLICT (place_id) DO UPDATE SET
			anonymous_likes = engagement_counters.anonymous_likes + 1
		RETURNING anonymous_likes
		        + (SELECT count(*) FROM place_likes WHERE place_id = $1)
	`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, placeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to record anonymous like: %w", err)
	}

	return count, nil
}

// toggleVisitedQuery flips a (place, user) visited row the same way the like
// toggle does, minus the count
const toggleVisitedQuery = `
	WITH removed AS (
		DELETE FROM place_visits
		WHERE place_id = $1 AND user_id = $2
		RETURNING 1
	), added AS (
		INSERT INTO place_visits (place_id, user_id)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1 FROM place_visits WHERE place_id = $1 AND user_id = $2
		)
		ON CONFLICT (place_id, user_id) DO NOTHING
		RETURNING 1
	)
	SELECT EXISTS (SELECT 1 FROM added)
`

// ToggleVisited flips visited membership for a (place, user) pair
func (r *engagementRepository) ToggleVisited(ctx context.Context, placeID int64, userID string) (bool, error) {
	var visited bool
	if err := r.db.Pool.QueryRow(ctx, toggleVisitedQuery, placeID, userID).Scan(&visited); err != nil {
		return false, fmt.Errorf("failed to toggle visited: %w", err)
	}

	return visited, nil
}

// AllVisitCounts returns visit counts per place for the ranking aggregator
func (r *engagementRepository) AllVisitCounts(ctx context.Context) (map[int64]int64, error) {
	query := `SELECT place_id, count(*) FROM place_visits GROUP BY place_id`

	rows, err := r.db.GetReadPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var placeID, count int64
		if err := rows.Scan(&placeID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan visit count row: %w", err)
		}
		counts[placeID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading visit count rows: %w", err)
	}

	return counts, nil
}
