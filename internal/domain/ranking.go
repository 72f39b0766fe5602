package domain

import (
	"fmt"
	"time"
)

// RankingKind identifies which counter a ranking is computed from
type RankingKind string

const (
	RankingKindViews  RankingKind = "views"
	RankingKindVisits RankingKind = "visits"
)

// ParseRankingKind validates a kind string from the request surface
func ParseRankingKind(s string) (RankingKind, error) {
	switch RankingKind(s) {
	case RankingKindViews, RankingKindVisits:
		return RankingKind(s), nil
	default:
		return "", fmt.Errorf("unknown ranking kind %q", s)
	}
}

// RankingEntry is one row of a top-N ranking. Rank 1 is the highest score.
type RankingEntry struct {
	Rank  int   `json:"rank"`
	Place Place `json:"place"`
	Score int64 `json:"score"`
}

// RankingSnapshot is a fully-replaced top-N result persisted per
// (kind, size bucket). Stale snapshots are served until the next
// recomputation completes.
type RankingSnapshot struct {
	Kind       RankingKind    `json:"kind"`
	SizeBucket int            `json:"size_bucket"`
	Entries    []RankingEntry `json:"entries"`
	ComputedAt time.Time      `json:"computed_at"`
}
