package service

import (
	"context"
	"sync"
	"time"

	"manchitra-be/internal/domain"
	"manchitra-be/pkg/logger"
)

// recomputeTimeout bounds a single snapshot rebuild
const recomputeTimeout = 15 * time.Second

// RecomputeWorker drains fire-and-forget recompute requests on a background
// goroutine. Enqueueing never blocks: when the buffer is full the request is
// dropped, because a recompute already queued for the kind will pick up the
// same counters.
type RecomputeWorker struct {
	ranking   RankingService
	logger    *logger.Logger
	jobs      chan domain.RankingKind
	stop      chan struct{}
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
}

// NewRecomputeWorker creates a new recompute worker
func NewRecomputeWorker(ranking RankingService, logger *logger.Logger) *RecomputeWorker {
	return &RecomputeWorker{
		ranking: ranking,
		logger:  logger,
		jobs:    make(chan domain.RankingKind, 16),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine
func (w *RecomputeWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return nil
	}

	go w.run(ctx)

	w.isRunning = true
	w.logger.Info("Recompute worker started")
	return nil
}

// Stop shuts the worker down, waiting for an in-flight recompute to finish
func (w *RecomputeWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return nil
	}

	close(w.stop)

	select {
	case <-w.done:
	case <-ctx.Done():
		w.logger.Warn("Recompute worker did not drain before shutdown deadline")
	}

	w.isRunning = false
	w.logger.Info("Recompute worker stopped")
	return nil
}

// Trigger enqueues a recompute for a kind. It never blocks and never reports
// failure to the caller.
func (w *RecomputeWorker) Trigger(kind domain.RankingKind) {
	select {
	case w.jobs <- kind:
	default:
		w.logger.WithField("kind", string(kind)).Debug("Recompute queue full, request coalesced")
	}
}

func (w *RecomputeWorker) run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case kind := <-w.jobs:
			w.recompute(kind)
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// recompute rebuilds both snapshot buckets for a kind. Failures are logged
// and absorbed; the increment that triggered this already succeeded.
func (w *RecomputeWorker) recompute(kind domain.RankingKind) {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	for _, n := range []int{RankingBucketSmall, RankingBucketLarge} {
		if _, err := w.ranking.RecomputeTopN(ctx, kind, n); err != nil {
			w.logger.WithError(err).WithFields(map[string]interface{}{
				"kind": string(kind),
				"n":    n,
			}).Error("Background ranking recompute failed")
		}
	}
}
