package domain

import "time"

// Place is catalog metadata for a place that can accrue engagement.
// The catalog is owned elsewhere; this service only reads it by ID.
type Place struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Area      string    `json:"area"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// Suggestion is a single autocomplete search result
type Suggestion struct {
	PlaceID int64  `json:"place_id"`
	Name    string `json:"name"`
	Area    string `json:"area"`
}

// SuggestionResult carries suggestions plus whether they came from cache
type SuggestionResult struct {
	Suggestions []Suggestion `json:"suggestions"`
	Cached      bool         `json:"cached"`
}
