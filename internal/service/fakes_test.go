package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"manchitra-be/internal/domain"
)

// In-memory repositories mirroring the storage layer's atomic semantics, for
// exercising the services without PostgreSQL.

var errFakeStorage = errors.New("storage unavailable")

type fakeCounterRepo struct {
	mu     sync.Mutex
	counts map[int64]int64
	fail   bool
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counts: make(map[int64]int64)}
}

func (f *fakeCounterRepo) IncrementView(ctx context.Context, placeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errFakeStorage
	}
	f.counts[placeID]++
	return f.counts[placeID], nil
}

func (f *fakeCounterRepo) GetViewCount(ctx context.Context, placeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errFakeStorage
	}
	return f.counts[placeID], nil
}

func (f *fakeCounterRepo) AllViewCounts(ctx context.Context) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	out := make(map[int64]int64, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out, nil
}

type memberKey struct {
	placeID int64
	userID  string
}

type fakeEngagementRepo struct {
	mu        sync.Mutex
	likes     map[memberKey]bool
	visits    map[memberKey]bool
	anonymous map[int64]int64
	fail      bool
}

func newFakeEngagementRepo() *fakeEngagementRepo {
	return &fakeEngagementRepo{
		likes:     make(map[memberKey]bool),
		visits:    make(map[memberKey]bool),
		anonymous: make(map[int64]int64),
	}
}

func (f *fakeEngagementRepo) ToggleLike(ctx context.Context, placeID int64, userID string) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false, 0, errFakeStorage
	}
	key := memberKey{placeID, userID}
	liked := !f.likes[key]
	if liked {
		f.likes[key] = true
	} else {
		delete(f.likes, key)
	}
	return liked, f.likeCountLocked(placeID), nil
}

func (f *fakeEngagementRepo) AnonymousLike(ctx context.Context, placeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errFakeStorage
	}
	f.anonymous[placeID]++
	return f.likeCountLocked(placeID), nil
}

func (f *fakeEngagementRepo) likeCountLocked(placeID int64) int64 {
	count := f.anonymous[placeID]
	for key := range f.likes {
		if key.placeID == placeID {
			count++
		}
	}
	return count
}

// memberLikeCount returns tracked members only, for invariant checks
func (f *fakeEngagementRepo) memberLikeCount(placeID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for key := range f.likes {
		if key.placeID == placeID {
			count++
		}
	}
	return count
}

func (f *fakeEngagementRepo) ToggleVisited(ctx context.Context, placeID int64, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false, errFakeStorage
	}
	key := memberKey{placeID, userID}
	visited := !f.visits[key]
	if visited {
		f.visits[key] = true
	} else {
		delete(f.visits, key)
	}
	return visited, nil
}

func (f *fakeEngagementRepo) AllVisitCounts(ctx context.Context) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	counts := make(map[int64]int64)
	for key := range f.visits {
		counts[key.placeID]++
	}
	return counts, nil
}

type voteKey struct {
	postID   int64
	optionID string
	voterID  string
}

type fakePollRepo struct {
	mu      sync.Mutex
	options map[int64][]domain.PollOption // option order preserved, Votes ignored
	votes   map[voteKey]bool
	fail    bool
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{
		options: make(map[int64][]domain.PollOption),
		votes:   make(map[voteKey]bool),
	}
}

func (f *fakePollRepo) addPoll(postID int64, optionIDs ...string) {
	for _, id := range optionIDs {
		f.options[postID] = append(f.options[postID], domain.PollOption{OptionID: id, Text: id})
	}
}

func (f *fakePollRepo) hasOption(postID int64, optionID string) bool {
	for _, o := range f.options[postID] {
		if o.OptionID == optionID {
			return true
		}
	}
	return false
}

func (f *fakePollRepo) HasOptions(ctx context.Context, postID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false, errFakeStorage
	}
	return len(f.options[postID]) > 0, nil
}

func (f *fakePollRepo) ToggleVotes(ctx context.Context, postID int64, optionIDs []string, voterID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeStorage
	}
	for _, optionID := range optionIDs {
		if !f.hasOption(postID, optionID) {
			continue
		}
		key := voteKey{postID, optionID, voterID}
		if f.votes[key] {
			delete(f.votes, key)
		} else {
			f.votes[key] = true
		}
	}
	return nil
}

func (f *fakePollRepo) CastSingleVote(ctx context.Context, postID int64, optionID string, voterID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeStorage
	}
	if !f.hasOption(postID, optionID) {
		return nil
	}
	var previous string
	for key := range f.votes {
		if key.postID == postID && key.voterID == voterID {
			previous = key.optionID
			delete(f.votes, key)
		}
	}
	if previous != optionID {
		f.votes[voteKey{postID, optionID, voterID}] = true
	}
	return nil
}

func (f *fakePollRepo) Results(ctx context.Context, postID int64) ([]domain.PollOption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	var results []domain.PollOption
	for _, option := range f.options[postID] {
		option.Votes = 0
		for key := range f.votes {
			if key.postID == postID && key.optionID == option.OptionID {
				option.Votes++
			}
		}
		results = append(results, option)
	}
	return results, nil
}

// optionsHeldBy returns which options hold the voter, sorted for assertions
func (f *fakePollRepo) optionsHeldBy(postID int64, voterID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var held []string
	for key := range f.votes {
		if key.postID == postID && key.voterID == voterID {
			held = append(held, key.optionID)
		}
	}
	sort.Strings(held)
	return held
}

type fakeRankingRepo struct {
	mu        sync.Mutex
	snapshots map[string]*domain.RankingSnapshot
	fail      bool
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{snapshots: make(map[string]*domain.RankingSnapshot)}
}

func rankingKeyFor(kind domain.RankingKind, bucket int) string {
	return fmt.Sprintf("%s:%d", kind, bucket)
}

func (f *fakeRankingRepo) SaveSnapshot(ctx context.Context, snapshot *domain.RankingSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeStorage
	}
	copied := *snapshot
	copied.Entries = append([]domain.RankingEntry(nil), snapshot.Entries...)
	f.snapshots[rankingKeyFor(snapshot.Kind, snapshot.SizeBucket)] = &copied
	return nil
}

func (f *fakeRankingRepo) GetSnapshot(ctx context.Context, kind domain.RankingKind, sizeBucket int) (*domain.RankingSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	snapshot, ok := f.snapshots[rankingKeyFor(kind, sizeBucket)]
	if !ok {
		return nil, nil
	}
	return snapshot, nil
}

type fakePlaceRepo struct {
	mu     sync.Mutex
	places map[int64]domain.Place
	calls  int
	fail   bool
}

func newFakePlaceRepo(places ...domain.Place) *fakePlaceRepo {
	repo := &fakePlaceRepo{places: make(map[int64]domain.Place)}
	for _, place := range places {
		repo.places[place.ID] = place
	}
	return repo
}

func (f *fakePlaceRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	out := make(map[int64]domain.Place)
	for _, id := range ids {
		if place, ok := f.places[id]; ok {
			out[id] = place
		}
	}
	return out, nil
}

func (f *fakePlaceRepo) SearchSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	f.calls++

	ids := make([]int64, 0, len(f.places))
	for id := range f.places {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var suggestions []domain.Suggestion
	for _, id := range ids {
		if len(suggestions) >= limit {
			break
		}
		place := f.places[id]
		suggestions = append(suggestions, domain.Suggestion{PlaceID: place.ID, Name: place.Name, Area: place.Area})
	}
	return suggestions, nil
}

func (f *fakePlaceRepo) searchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeTrigger records fire-and-forget recompute requests
type fakeTrigger struct {
	mu    sync.Mutex
	kinds []domain.RankingKind
}

func (f *fakeTrigger) Trigger(kind domain.RankingKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func (f *fakeTrigger) triggered() []domain.RankingKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RankingKind(nil), f.kinds...)
}
