package repository

import (
	"context"
	"fmt"

	"manchitra-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

// counterRepository handles view counters with PostgreSQL
type counterRepository struct {
	db *database.PostgresDB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *database.PostgresDB) CounterRepository {
	return &counterRepository{
		db: db,
	}
}

// IncrementView atomically adds 1 to a place's view counter, creating the
// counter on first view
func (r *counterRepository) IncrementView(ctx context.Context, placeID int64) (int64, error) {
	query := `
		INSERT INTO place_view_counters (place_id, view_count, last_viewed_at)
		VALUES ($1, 1, now())
		ON CONFLICT (place_id) DO UPDATE SET
			view_count = place_view_counters.view_count + 1,
			last_viewed_at = now()
		RETURNING view_count
	`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, placeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment view count: %w", err)
	}

	return count, nil
}

// GetViewCount returns the current view count, 0 when the counter is absent
func (r *counterRepository) GetViewCount(ctx context.Context, placeID int64) (int64, error) {
	query := `SELECT view_count FROM place_view_counters WHERE place_id = $1`

	var count int64
	err := r.db.GetReadPool().QueryRow(ctx, query, placeID).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get view count: %w", err)
	}

	return count, nil
}

// AllViewCounts reads every view counter. The full scan is acceptable at the
// current catalog size; revisit with keyset pagination if counters grow past
// a few hundred thousand rows.
func (r *counterRepository) AllViewCounts(ctx context.Context) (map[int64]int64, error) {
	query := `SELECT place_id, view_count FROM place_view_counters`

	rows, err := r.db.GetReadPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query view counters: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var placeID, count int64
		if err := rows.Scan(&placeID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan view counter row: %w", err)
		}
		counts[placeID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading view counter rows: %w", err)
	}

	return counts, nil
}
