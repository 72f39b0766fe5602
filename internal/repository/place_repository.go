package repository

import (
	"context"
	"fmt"
	"strings"

	"manchitra-be/internal/domain"
	"manchitra-be/pkg/database"
)

// placeRepository reads place catalog metadata with PostgreSQL
type placeRepository struct {
	db *database.PostgresDB
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db *database.PostgresDB) PlaceRepository {
	return &placeRepository{
		db: db,
	}
}

// GetByIDs returns catalog metadata for the given place IDs. IDs with no
// matching place are absent from the result, never an error.
func (r *placeRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Place, error) {
	if len(ids) == 0 {
		return map[int64]domain.Place{}, nil
	}

	query := `
		SELECT id, name, area, latitude, longitude, created_at
		FROM places
		WHERE id = ANY($1)
	`

	rows, err := r.db.GetReadPool().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	places := make(map[int64]domain.Place, len(ids))
	for rows.Next() {
		var place domain.Place
		err := rows.Scan(
			&place.ID,
			&place.Name,
			&place.Area,
			&place.Latitude,
			&place.Longitude,
			&place.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		places[place.ID] = place
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading place rows: %w", err)
	}

	return places, nil
}

// likeEscaper neutralizes LIKE metacharacters so user queries match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchSuggestions returns up to limit places whose name or area matches the
// query, ordered by name for stable results
func (r *placeRepository) SearchSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	sql := `
		SELECT id, name, area
		FROM places
		WHERE name ILIKE '%' || $1 || '%' OR area ILIKE '%' || $1 || '%'
		ORDER BY name ASC, id ASC
		LIMIT $2
	`

	rows, err := r.db.GetReadPool().Query(ctx, sql, likeEscaper.Replace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}
	defer rows.Close()

	var suggestions []domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.PlaceID, &s.Name, &s.Area); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion row: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading suggestion rows: %w", err)
	}

	return suggestions, nil
}
