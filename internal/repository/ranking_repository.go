package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"manchitra-be/internal/domain"
	"manchitra-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

// rankingRepository persists ranking snapshots with PostgreSQL
type rankingRepository struct {
	db *database.PostgresDB
}

// NewRankingRepository creates a new ranking repository
func NewRankingRepository(db *database.PostgresDB) RankingRepository {
	return &rankingRepository{
		db: db,
	}
}

// SaveSnapshot fully replaces the snapshot for (kind, size bucket). Concurrent
// recomputations race with last write wins.
func (r *rankingRepository) SaveSnapshot(ctx context.Context, snapshot *domain.RankingSnapshot) error {
	entries, err := json.Marshal(snapshot.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking entries: %w", err)
	}

	query := `
		INSERT INTO ranking_snapshots (kind, size_bucket, entries, computed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, size_bucket) DO UPDATE SET
			entries = EXCLUDED.entries,
			computed_at = EXCLUDED.computed_at
	`

	_, err = r.db.Pool.Exec(ctx, query, string(snapshot.Kind), snapshot.SizeBucket, entries, snapshot.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to save ranking snapshot: %w", err)
	}

	return nil
}

// GetSnapshot returns the latest persisted snapshot, nil when none exists yet
func (r *rankingRepository) GetSnapshot(ctx context.Context, kind domain.RankingKind, sizeBucket int) (*domain.RankingSnapshot, error) {
	query := `
		SELECT entries, computed_at
		FROM ranking_snapshots
		WHERE kind = $1 AND size_bucket = $2
	`

	snapshot := &domain.RankingSnapshot{
		Kind:       kind,
		SizeBucket: sizeBucket,
	}

	var entries []byte
	err := r.db.GetReadPool().QueryRow(ctx, query, string(kind), sizeBucket).Scan(&entries, &snapshot.ComputedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ranking snapshot: %w", err)
	}

	if err := json.Unmarshal(entries, &snapshot.Entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ranking entries: %w", err)
	}

	return snapshot, nil
}
