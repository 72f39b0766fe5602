package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"manchitra-be/internal/domain"
	"manchitra-be/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRankingService records RecomputeTopN calls and signals each one
type recordingRankingService struct {
	mu     sync.Mutex
	calls  []recomputeCall
	err    error
	notify chan struct{}
}

type recomputeCall struct {
	kind domain.RankingKind
	n    int
}

func newRecordingRankingService() *recordingRankingService {
	return &recordingRankingService{notify: make(chan struct{}, 64)}
}

func (r *recordingRankingService) RecomputeTopN(ctx context.Context, kind domain.RankingKind, n int) (*domain.RankingSnapshot, error) {
	r.mu.Lock()
	r.calls = append(r.calls, recomputeCall{kind: kind, n: n})
	err := r.err
	r.mu.Unlock()
	r.notify <- struct{}{}
	if err != nil {
		return nil, err
	}
	return &domain.RankingSnapshot{Kind: kind, SizeBucket: BucketFor(n)}, nil
}

func (r *recordingRankingService) GetTopN(ctx context.Context, kind domain.RankingKind, n int) ([]domain.RankingEntry, error) {
	return []domain.RankingEntry{}, nil
}

func (r *recordingRankingService) recorded() []recomputeCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recomputeCall(nil), r.calls...)
}

func waitForCalls(t *testing.T, ranking *recordingRankingService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ranking.notify:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for recompute call %d of %d", i+1, n)
		}
	}
}

func TestRecomputeWorker_RecomputesBothBuckets(t *testing.T) {
	ranking := newRecordingRankingService()
	worker := NewRecomputeWorker(ranking, logger.NewNop())

	ctx := context.Background()
	require.NoError(t, worker.Start(ctx))
	defer worker.Stop(ctx)

	worker.Trigger(domain.RankingKindViews)
	waitForCalls(t, ranking, 2)

	calls := ranking.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, recomputeCall{kind: domain.RankingKindViews, n: RankingBucketSmall}, calls[0])
	assert.Equal(t, recomputeCall{kind: domain.RankingKindViews, n: RankingBucketLarge}, calls[1])
}

func TestRecomputeWorker_AbsorbsFailures(t *testing.T) {
	ranking := newRecordingRankingService()
	ranking.err = errFakeStorage
	worker := NewRecomputeWorker(ranking, logger.NewNop())

	ctx := context.Background()
	require.NoError(t, worker.Start(ctx))

	worker.Trigger(domain.RankingKindViews)
	waitForCalls(t, ranking, 2)

	// A failed recompute leaves the worker alive for the next trigger
	ranking.mu.Lock()
	ranking.err = nil
	ranking.mu.Unlock()

	worker.Trigger(domain.RankingKindVisits)
	waitForCalls(t, ranking, 2)

	calls := ranking.recorded()
	require.Len(t, calls, 4)
	assert.Equal(t, domain.RankingKindVisits, calls[2].kind)

	require.NoError(t, worker.Stop(ctx))
}

func TestRecomputeWorker_TriggerNeverBlocks(t *testing.T) {
	ranking := newRecordingRankingService()
	worker := NewRecomputeWorker(ranking, logger.NewNop())

	// Worker not started: the buffer fills and further triggers are dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			worker.Trigger(domain.RankingKindViews)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Trigger blocked on a full queue")
	}
}

func TestRecomputeWorker_StartStopIdempotent(t *testing.T) {
	ranking := newRecordingRankingService()
	worker := NewRecomputeWorker(ranking, logger.NewNop())

	ctx := context.Background()
	require.NoError(t, worker.Start(ctx))
	require.NoError(t, worker.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, worker.Stop(stopCtx))
	require.NoError(t, worker.Stop(stopCtx))
}
