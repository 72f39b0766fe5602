package domain

import "time"

// ViewResult is returned after a successful view increment
type ViewResult struct {
	PlaceID   int64 `json:"place_id"`
	ViewCount int64 `json:"view_count"`
}

// RateLimitInfo describes the state of an IP's view-increment window
type RateLimitInfo struct {
	RequestCount int64         `json:"request_count"`
	Limit        int64         `json:"limit"`
	Window       time.Duration `json:"-"`
	IsAllowed    bool          `json:"is_allowed"`
}
