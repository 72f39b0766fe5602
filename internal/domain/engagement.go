package domain

// LikeInfo is the like state of a place after a toggle or anonymous like.
// LikeCount is the number of known likers plus the anonymous counter.
type LikeInfo struct {
	PlaceID   int64 `json:"place_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// PollOption is one choice of a poll. Votes always equals the number of
// voters recorded for the option.
type PollOption struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
	Votes    int64  `json:"votes"`
}

// PollResult is returned after a vote is applied
type PollResult struct {
	PostID     int64        `json:"post_id"`
	Options    []PollOption `json:"options"`
	TotalVotes int64        `json:"total_votes"`
}
