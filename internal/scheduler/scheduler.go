package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/hotlist/hotlist/internal/fetcher"
	"github.com/hotlist/hotlist/internal/metrics"
	"github.com/hotlist/hotlist/internal/ranking"
	"github.com/hotlist/hotlist/internal/store"
	"github.com/hotlist/hotlist/pkg/types"
)

// LevelCritical is logged when a cycle fails in an unexpected way.
const LevelCritical = slog.LevelError + 4

// Cycle statuses.
const (
	StatusPublished = metrics.OutcomePublished
	StatusSkipped   = metrics.OutcomeSkipped
)

// Fetcher returns the upstream event list.
type Fetcher interface {
	Fetch(ctx context.Context) fetcher.Result
}

// Ranker scores, sorts and truncates a batch.
type Ranker interface {
	Rank(events []types.RawEvent) ([]types.ScoredEvent, ranking.Stats)
}

// Publisher replaces the current snapshot.
type Publisher interface {
	Publish(id string, items []types.ScoredEvent) *store.Snapshot
}

// Outcome describes one finished cycle.
type Outcome struct {
	ID       string
	Status   string // StatusPublished | StatusSkipped
	Items    int    // snapshot size when published
	Err      error  // cause when skipped
	Duration time.Duration
}

// Scheduler runs the refresh loop. It is the only writer of the snapshot store.
type Scheduler struct {
	fetcher   Fetcher
	ranker    Ranker
	publisher Publisher
	metrics   *metrics.Metrics
	interval  time.Duration

	// onCycle, when set, is called after every cycle. Used by tests.
	onCycle func(Outcome)
}

// New returns a Scheduler. m may be nil.
func New(f Fetcher, r Ranker, p Publisher, m *metrics.Metrics, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:   f,
		ranker:    r,
		publisher: p,
		metrics:   m,
		interval:  interval,
	}
}

// Run executes a cycle immediately, then sleeps interval between cycles.
// Run blocks until ctx is cancelled. A cycle already in progress is allowed
// to finish; only its fetch observes the cancellation.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler: started", "interval", s.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler: stopped")
			return
		case <-timer.C:
		}

		out := s.RunCycle(ctx)
		if s.onCycle != nil {
			s.onCycle(out)
		}
		timer.Reset(s.interval)
	}
}

// RunCycle performs one fetch → rank → publish pass and reports what
// happened. It never panics.
func (s *Scheduler) RunCycle(ctx context.Context) (out Outcome) {
	start := time.Now()
	out.ID = uuid.NewString()
	log := slog.With("cycle", out.ID)

	defer func() {
		if r := recover(); r != nil {
			if out.Status != StatusPublished {
				out.Status = StatusSkipped
				out.Items = 0
			}
			out.Err = fmt.Errorf("cycle panic: %v", r)
			log.Log(context.Background(), LevelCritical, "scheduler: cycle failed unexpectedly",
				"err", out.Err, "stack", string(debug.Stack()))
		}
		out.Duration = time.Since(start)
		s.metrics.Cycle(out.Status)
	}()

	res := s.fetcher.Fetch(ctx)
	s.metrics.ObserveFetch(res.Duration, res.OK())
	s.metrics.EventsSkipped(res.Dropped)
	if !res.OK() {
		out.Status = StatusSkipped
		out.Err = res.Err
		log.Warn("scheduler: fetch failed, keeping previous snapshot", "err", res.Err)
		return out
	}

	if len(res.Events) == 0 {
		out.Status = StatusSkipped
		log.Info("scheduler: upstream returned no events, keeping previous snapshot",
			"dropped", res.Dropped)
		return out
	}

	items, stats := s.ranker.Rank(res.Events)
	s.metrics.EventsSkipped(stats.Skipped)

	snap := s.publisher.Publish(out.ID, items)
	out.Status = StatusPublished
	out.Items = snap.Len()
	s.metrics.Published(snap.Len(), snap.PublishedAt)

	log.Info("scheduler: snapshot published",
		"items", out.Items,
		"fetched", stats.Input,
		"skipped", stats.Skipped+res.Dropped,
	)
	return out
}
