package repository

import (
	"context"
	"fmt"

	"manchitra-be/internal/domain"
	"manchitra-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

// pollRepository handles poll votes with PostgreSQL
type pollRepository struct {
	db *database.PostgresDB
}

// NewPollRepository creates a new poll repository
func NewPollRepository(db *database.PostgresDB) PollRepository {
	return &pollRepository{
		db: db,
	}
}

// HasOptions reports whether a post carries a poll
func (r *pollRepository) HasOptions(ctx context.Context, postID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM poll_options WHERE post_id = $1)`

	var exists bool
	if err := r.db.GetReadPool().QueryRow(ctx, query, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check poll options: %w", err)
	}

	return exists, nil
}

// toggleVoteQuery flips the voter's membership for one option. The INSERT is
// additionally guarded by the option existing, so unknown option IDs fall
// through without touching state.
const toggleVoteQuery = `
	WITH removed AS (
		DELETE FROM poll_votes
		WHERE post_id = $1 AND option_id = $2 AND voter_id = $3
		RETURNING 1
	), added AS (
		INSERT INTO poll_votes (post_id, option_id, voter_id)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (
			SELECT 1 FROM poll_votes
			WHERE post_id = $1 AND option_id = $2 AND voter_id = $3
		)
		AND EXISTS (
			SELECT 1 FROM poll_options
			WHERE post_id = $1 AND option_id = $2
		)
		ON CONFLICT (post_id, option_id, voter_id) DO NOTHING
		RETURNING 1
	)
	SELECT EXISTS (SELECT 1 FROM added)
`

// ToggleVotes toggles the voter's membership independently for each option,
// all inside one transaction so a storage failure leaves state unchanged
func (r *pollRepository) ToggleVotes(ctx context.Context, postID int64, optionIDs []string, voterID string) error {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, optionID := range optionIDs {
		var added bool
		if err := tx.QueryRow(ctx, toggleVoteQuery, postID, optionID, voterID).Scan(&added); err != nil {
			return fmt.Errorf("failed to toggle vote for option %s: %w", optionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit vote transaction: %w", err)
	}

	return nil
}

// CastSingleVote applies single-choice semantics inside one transaction:
// re-voting the held option removes the vote, voting another moves it. An
// option ID the poll does not carry leaves the voter's existing vote alone.
func (r *pollRepository) CastSingleVote(ctx context.Context, postID int64, optionID string, voterID string) error {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM poll_options
			WHERE post_id = $1 AND option_id = $2
		)
	`, postID, optionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check poll option: %w", err)
	}
	if !exists {
		return nil
	}

	// Clear any previously held option first, remembering which one it was
	var previous string
	err = tx.QueryRow(ctx, `
		DELETE FROM poll_votes
		WHERE post_id = $1 AND voter_id = $2
		RETURNING option_id
	`, postID, voterID).Scan(&previous)
	if err != nil && err != pgx.ErrNoRows {
		return fmt.Errorf("failed to clear previous vote: %w", err)
	}

	// Voting the option already held means unvote; anything else is a vote
	// for the requested option
	if previous != optionID {
		_, err = tx.Exec(ctx, `
			INSERT INTO poll_votes (post_id, option_id, voter_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (post_id, option_id, voter_id) DO NOTHING
		`, postID, optionID, voterID)
		if err != nil {
			return fmt.Errorf("failed to cast vote: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit vote transaction: %w", err)
	}

	return nil
}

// Results returns poll options with vote counts in option order
func (r *pollRepository) Results(ctx context.Context, postID int64) ([]domain.PollOption, error) {
	query := `
		SELECT o.option_id, o.text, count(v.voter_id)
		FROM poll_options o
		LEFT JOIN poll_votes v
			ON v.post_id = o.post_id AND v.option_id = o.option_id
		WHERE o.post_id = $1
		GROUP BY o.option_id, o.text, o.position
		ORDER BY o.position ASC
	`

	rows, err := r.db.GetReadPool().Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll results: %w", err)
	}
	defer rows.Close()

	var options []domain.PollOption
	for rows.Next() {
		var option domain.PollOption
		if err := rows.Scan(&option.OptionID, &option.Text, &option.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan poll option row: %w", err)
		}
		options = append(options, option)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading poll option rows: %w", err)
	}

	return options, nil
}
